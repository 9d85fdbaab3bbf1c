// Copyright 2026 The Prometheus Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package report renders a run summary and ships it to its destinations.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"text/template"
	"time"

	"github.com/spacecraft-cdh/japi-loadtest/pkg/loadgen"
)

// WriteText writes the summary as aligned console tables.
func WriteText(w io.Writer, s *loadgen.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Type\tName\t# reqs\t# fails\tAvg\tMin\tMax\tMed\tp95\tp99\treq/s\tfailures/s\t\n")
	for _, e := range s.Endpoints {
		writeTextRow(tw, e)
	}
	writeTextRow(tw, s.Aggregated)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nResponse time percentiles and rates over %v\n", s.Duration.Round(time.Millisecond))
	if len(s.Errors) == 0 {
		return nil
	}

	fmt.Fprintln(w, "\nError report")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "# occurrences\tError\t\n")
	for _, e := range s.Errors {
		fmt.Fprintf(tw, "%d\t%s %s: %s\t\n", e.Occurrences, e.Method, e.Name, e.Error)
	}
	return tw.Flush()
}

func writeTextRow(w io.Writer, e loadgen.EndpointSummary) {
	fmt.Fprintf(w, "%s\t%s\t%d\t%d(%.2f%%)\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\t%.2f\t%.2f\t\n",
		e.Method, e.Name, e.Requests, e.Failures, failRatio(e)*100,
		e.AvgMs, e.MinMs, e.MaxMs, e.MedianMs, e.P95Ms, e.P99Ms,
		e.RPS, e.FailuresPerSec,
	)
}

func failRatio(e loadgen.EndpointSummary) float64 {
	if e.Requests == 0 {
		return 0
	}
	return float64(e.Failures) / float64(e.Requests)
}

var markdownTemplate = template.Must(template.New("summary").Funcs(template.FuncMap{
	"ms":      func(v float64) string { return fmt.Sprintf("%.0fms", v) },
	"pct":     func(e loadgen.EndpointSummary) string { return fmt.Sprintf("%.2f%%", failRatio(e)*100) },
	"escape":  func(s string) string { return strings.ReplaceAll(s, "|", `\|`) },
	"rounded": func(d time.Duration) time.Duration { return d.Round(time.Second) },
}).Parse(`
{{- define "row" -}}
{{ .Method }}|` + "`{{ escape .Name }}`" + `|{{ .Requests }}|{{ .Failures }} ({{ pct . }})|{{ ms .MedianMs }}|{{ ms .AvgMs }}|{{ ms .P95Ms }}|{{ ms .P99Ms }}|{{ ms .MaxMs }}|{{ printf "%.2f" .RPS }}
{{- end -}}
Load test summary over {{ rounded .Duration }}.

Type|Name|# reqs|# fails|Median|Avg|p95|p99|Max|req/s
-|-|-|-|-|-|-|-|-|-
{{- range .Endpoints }}
{{ template "row" . }}
{{- end }}
{{ with .Aggregated }}|**{{ .Name }}**|{{ .Requests }}|{{ .Failures }} ({{ pct . }})|{{ ms .MedianMs }}|{{ ms .AvgMs }}|{{ ms .P95Ms }}|{{ ms .P99Ms }}|{{ ms .MaxMs }}|{{ printf "%.2f" .RPS }}{{ end }}
{{- if .Errors }}

# occurrences|Error
-|-
{{- range .Errors }}
{{ .Occurrences }}|{{ .Method }} ` + "`{{ escape .Name }}`" + `: {{ escape .Error }}
{{- end }}
{{- end }}
`))

// WriteMarkdown writes the summary as GitHub flavoured markdown tables.
func WriteMarkdown(w io.Writer, s *loadgen.Summary) error {
	return markdownTemplate.Execute(w, s)
}

// WriteJSON writes the summary as indented JSON.
func WriteJSON(w io.Writer, s *loadgen.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
