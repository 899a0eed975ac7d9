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

package resources

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v3"

	"github.com/virtops/ovirt-apply/pkg/client"
	"github.com/virtops/ovirt-apply/pkg/reconcile"
)

// ApplyFunc applies one desired resource document of a given kind. The spec
// node is decoded strictly by the kind itself so unknown fields fail at load
// time, not silently.
type ApplyFunc func(
	ctx context.Context,
	cl *client.Client,
	spec *yaml.Node,
	state string,
	opts reconcile.Options,
) (reconcile.Outcome, error)

var registry = map[string]ApplyFunc{}

// Register binds a kind name to its applier. Called from kind package init
// functions; registering a kind twice is a programming error.
func Register(kind string, apply ApplyFunc) {
	if _, dup := registry[kind]; dup {
		panic("resources: duplicate kind " + kind)
	}
	registry[kind] = apply
}

// Apply dispatches one resource document to its registered kind.
func Apply(
	ctx context.Context,
	cl *client.Client,
	kind string,
	spec *yaml.Node,
	state string,
	opts reconcile.Options,
) (reconcile.Outcome, error) {
	apply, ok := registry[kind]
	if !ok {
		return reconcile.Outcome{}, fmt.Errorf("unknown resource kind %q (known: %v)", kind, Kinds())
	}
	return apply(ctx, cl, spec, state, opts)
}

// Kinds lists the registered kind names, sorted.
func Kinds() []string {
	kinds := maps.Keys(registry)
	slices.Sort(kinds)
	return kinds
}

// DecodeStrict decodes a spec node into a typed spec struct, rejecting any
// field the struct does not declare.
func DecodeStrict(node *yaml.Node, out any) error {
	if node == nil || node.IsZero() {
		return fmt.Errorf("spec is required")
	}
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	return unmarshalKnown(raw, out)
}

func unmarshalKnown(raw []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	return decoder.Decode(out)
}
