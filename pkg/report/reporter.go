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

package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spacecraft-cdh/japi-loadtest/pkg/loadgen"
)

// Reporter ships a finished run summary somewhere.
type Reporter interface {
	Report(ctx context.Context, s *loadgen.Summary) error
}

type multi []Reporter

// Multi reports to every reporter, even when some of them fail, and joins
// their errors.
func Multi(reporters ...Reporter) Reporter {
	return multi(reporters)
}

func (m multi) Report(ctx context.Context, s *loadgen.Summary) error {
	var errs []error
	for _, r := range m {
		if err := r.Report(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type writerReporter struct {
	w io.Writer
}

// NewWriterReporter prints the text tables to w.
func NewWriterReporter(w io.Writer) Reporter {
	return writerReporter{w: w}
}

func (r writerReporter) Report(_ context.Context, s *loadgen.Summary) error {
	return WriteText(r.w, s)
}

type fileReporter struct {
	path string
}

// NewFileReporter writes the JSON summary to path, replacing any previous
// content.
func NewFileReporter(path string) Reporter {
	return fileReporter{path: path}
}

func (r fileReporter) Report(_ context.Context, s *loadgen.Summary) (err error) {
	f, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report file: %w", cerr)
		}
	}()
	if err := WriteJSON(f, s); err != nil {
		return fmt.Errorf("write report file %s: %w", r.path, err)
	}
	return nil
}
