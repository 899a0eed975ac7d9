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
	"fmt"
	"time"
)

// NotFoundError means an operation required an existing entity and
// resolution found none.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// AmbiguousError means a search matched more than one entity and the
// supplied parameters could not reduce the candidates to one. The engine
// never picks among ambiguous matches.
type AmbiguousError struct {
	Kind    string
	Query   string
	Matches int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%s search %q matched %d entities, need exactly one", e.Kind, e.Query, e.Matches)
}

// TimeoutError means a wait condition never became true within its budget.
// The mutation that preceded the wait is not rolled back.
type TimeoutError struct {
	Kind      string
	Condition string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s did not reach %q within %s", e.Kind, e.Condition, e.Timeout)
}
