/* Copyright 2025, the ovirt-apply authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package reconcile

import (
	"context"
	"time"
)

// Condition is a named predicate over an entity, evaluated on each poll.
// Test receives nil when the entity no longer exists. The name shows up in
// logs and timeout errors, so conditions stay diagnosable without capturing
// ambient state.
type Condition[E Entity] struct {
	Name string
	Test func(entity *E) bool
}

// Absent is satisfied once the entity can no longer be fetched.
func Absent[E Entity]() Condition[E] {
	return Condition[E]{
		Name: "absent",
		Test: func(entity *E) bool { return entity == nil },
	}
}

// Present is satisfied once the entity can be fetched.
func Present[E Entity]() Condition[E] {
	return Condition[E]{
		Name: "present",
		Test: func(entity *E) bool { return entity != nil },
	}
}

// WaitFor polls fetch at a fixed interval until the condition holds or the
// timeout elapses. Every poll fetches fresh remote state; nothing is cached.
// Timeout is an error, never a silent return, and the preceding mutation is
// left as-is.
func WaitFor[E Entity](
	ctx context.Context,
	kind string,
	fetch func(ctx context.Context) (*E, error),
	cond Condition[E],
	timeout time.Duration,
	interval time.Duration,
) (*E, error) {
	deadline := time.Now().Add(timeout)

	for {
		entity, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if cond.Test(entity) {
			return entity, nil
		}
		if !time.Now().Before(deadline) {
			return nil, &TimeoutError{Kind: kind, Condition: cond.Name, Timeout: timeout}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}
