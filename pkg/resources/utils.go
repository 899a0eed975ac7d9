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

// Package resources registers the resource kinds the apply surface knows and
// provides the shared comparator helpers their update checks build on.
package resources

import (
	"cmp"
	"slices"
)

// Equal reports whether a desired value matches the actual one. A nil
// desired value means "don't care" and always matches: this is the
// idempotence contract every update check relies on.
func Equal[T comparable](desired *T, actual T) bool {
	if desired == nil {
		return true
	}
	return *desired == actual
}

// EqualPtr is Equal for actual values that are themselves optional. A set
// desired value never matches a missing actual one.
func EqualPtr[T comparable](desired, actual *T) bool {
	if desired == nil {
		return true
	}
	if actual == nil {
		return false
	}
	return *desired == *actual
}

// EqualSlice reports whether a desired value set matches the actual one,
// ignoring order. A nil desired slice means "don't care".
func EqualSlice[T cmp.Ordered](desired, actual []T) bool {
	if desired == nil {
		return true
	}
	if len(desired) != len(actual) {
		return false
	}
	d := slices.Clone(desired)
	a := slices.Clone(actual)
	slices.Sort(d)
	slices.Sort(a)
	return slices.Equal(d, a)
}
