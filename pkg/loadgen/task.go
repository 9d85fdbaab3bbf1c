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
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
)

// TaskFunc is one unit of user behaviour. An error is logged by the user
// loop and otherwise ignored.
type TaskFunc func(ctx context.Context, u *User) error

// Task is a named, weighted TaskFunc.
type Task struct {
	Name   string
	Weight int
	Fn     TaskFunc
}

// TaskSet picks tasks at random, proportionally to their weight.
type TaskSet struct {
	tasks []Task
	// cumulative[i] is the sum of weights of tasks[0..i].
	cumulative []int
	total      int
}

// NewTaskSet builds a TaskSet. Tasks with weight 0 are dropped.
func NewTaskSet(tasks []Task) (*TaskSet, error) {
	ts := &TaskSet{}
	for _, t := range tasks {
		if t.Weight < 0 {
			return nil, fmt.Errorf("task %q: negative weight %d", t.Name, t.Weight)
		}
		if t.Fn == nil {
			return nil, fmt.Errorf("task %q: nil func", t.Name)
		}
		if t.Weight == 0 {
			continue
		}
		ts.total += t.Weight
		ts.tasks = append(ts.tasks, t)
		ts.cumulative = append(ts.cumulative, ts.total)
	}
	if len(ts.tasks) == 0 {
		return nil, errors.New("no task with a positive weight")
	}
	return ts, nil
}

// Pick returns a random task.
func (ts *TaskSet) Pick() Task {
	n := rand.IntN(ts.total)
	i := sort.SearchInts(ts.cumulative, n+1)
	return ts.tasks[i]
}

// Names returns the names of the selectable tasks in declaration order.
func (ts *TaskSet) Names() []string {
	names := make([]string, 0, len(ts.tasks))
	for _, t := range ts.tasks {
		names = append(names, t.Name)
	}
	return names
}
