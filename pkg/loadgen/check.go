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

package loadgen

import (
	"log/slog"
	"net/http"
)

// CheckStatus reports whether code is 200. Otherwise it logs one warning
// naming the endpoint and the code, and nothing else happens.
func CheckStatus(logger *slog.Logger, endpoint string, code int) bool {
	if code == http.StatusOK {
		return true
	}
	logger.Warn("request failed", "endpoint", endpoint, "status", code)
	return false
}
