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
	"fmt"
	"math/rand/v2"
	"time"
)

// WaitTime yields the pause a user takes after each task.
type WaitTime interface {
	Next() time.Duration
}

type between struct {
	min, max time.Duration
}

// Between returns a WaitTime drawn uniformly from [min, max].
func Between(min, max time.Duration) (WaitTime, error) {
	if min < 0 || max < min {
		return nil, fmt.Errorf("invalid wait range [%v, %v]", min, max)
	}
	return between{min: min, max: max}, nil
}

func (b between) Next() time.Duration {
	return b.min + time.Duration(rand.Float64()*float64(b.max-b.min))
}

func (b between) String() string {
	return fmt.Sprintf("between(%v, %v)", b.min, b.max)
}

// Constant is a WaitTime that always returns itself.
type Constant time.Duration

func (c Constant) Next() time.Duration { return time.Duration(c) }
