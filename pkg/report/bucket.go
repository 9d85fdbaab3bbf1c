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
	"log/slog"
	"os"

	"github.com/go-kit/log"
	"github.com/thanos-io/objstore"
	"github.com/thanos-io/objstore/client"

	"github.com/spacecraft-cdh/japi-loadtest/pkg/loadgen"
)

// NewBucketFromConfig creates an object storage bucket from an objstore
// YAML config file, e.g.
//
//	type: FILESYSTEM
//	config:
//	  directory: /tmp/reports
func NewBucketFromConfig(configFile string, logger log.Logger) (objstore.Bucket, error) {
	configBytes, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read objstore config file: %w", err)
	}
	if len(bytes.TrimSpace(configBytes)) == 0 {
		return nil, errors.New("objstore config file is empty")
	}
	bucket, err := client.NewBucket(logger, configBytes, "japi-loadgen")
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	return bucket, nil
}

type bucketReporter struct {
	bucket objstore.Bucket
	key    string
	logger *slog.Logger
}

// NewBucketReporter uploads the JSON summary to key in bucket.
func NewBucketReporter(bucket objstore.Bucket, key string, logger *slog.Logger) Reporter {
	return &bucketReporter{bucket: bucket, key: key, logger: logger}
}

func (r *bucketReporter) Report(ctx context.Context, s *loadgen.Summary) error {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, s); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	exists, err := r.bucket.Exists(ctx, r.key)
	if err != nil {
		return fmt.Errorf("failed to check bucket for %s: %w", r.key, err)
	}
	if exists {
		r.logger.Warn("overwriting existing summary", "bucket", r.bucket.Name(), "key", r.key)
	}

	if err := r.bucket.Upload(ctx, r.key, &buf); err != nil {
		r.logger.Error("Failed to upload summary", "key", r.key, "error", err)
		return fmt.Errorf("failed to upload summary to %s: %w", r.key, err)
	}
	r.logger.Info("Successfully uploaded summary", "key", r.key, "bucket", r.bucket.Name())
	return nil
}
