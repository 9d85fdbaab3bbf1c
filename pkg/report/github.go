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
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v29/github"
	"golang.org/x/oauth2"

	"github.com/spacecraft-cdh/japi-loadtest/pkg/loadgen"
)

// GitHubReporter posts the markdown summary as a comment on an issue or
// pull request.
type GitHubReporter struct {
	clt   *github.Client
	owner string
	repo  string
	pr    int
}

func NewGitHubReporter(ctx context.Context, token, owner, repo string, pr int) (*GitHubReporter, error) {
	if token == "" {
		return nil, errors.New("GitHub token missing")
	}
	if owner == "" || repo == "" || pr <= 0 {
		return nil, fmt.Errorf("incomplete GitHub target %s/%s#%d", owner, repo, pr)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &GitHubReporter{
		clt:   github.NewClient(tc),
		owner: owner,
		repo:  repo,
		pr:    pr,
	}, nil
}

func (r *GitHubReporter) Report(ctx context.Context, s *loadgen.Summary) error {
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, s); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	issueComment := &github.IssueComment{Body: github.String(buf.String())}
	if _, _, err := r.clt.Issues.CreateComment(ctx, r.owner, r.repo, r.pr, issueComment); err != nil {
		return fmt.Errorf("CreateComment(%q,%q,%d): %w", r.owner, r.repo, r.pr, err)
	}
	return nil
}
