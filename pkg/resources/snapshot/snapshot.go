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

// Package snapshot manages VM snapshots. Snapshots live in a sub-collection
// of their VM and have no searchable name: they are listed and matched by
// description (or explicit id) client-side.
package snapshot

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/virtops/ovirt-apply/pkg/client"
	"github.com/virtops/ovirt-apply/pkg/ovirt"
	"github.com/virtops/ovirt-apply/pkg/reconcile"
	"github.com/virtops/ovirt-apply/pkg/resources"
)

func init() {
	resources.Register("snapshot", Apply)
}

// Spec is the desired state of one snapshot.
type Spec struct {
	VM            string  `yaml:"vm"`
	Description   string  `yaml:"description"`
	SnapshotID    *string `yaml:"snapshot_id"`
	PersistMemory *bool   `yaml:"persist_memory"`
}

func (s *Spec) build() (*ovirt.Snapshot, error) {
	return &ovirt.Snapshot{
		Description:   s.Description,
		PersistMemory: s.PersistMemory,
	}, nil
}

func statusIs(status ovirt.SnapshotStatus) reconcile.Condition[ovirt.Snapshot] {
	return reconcile.Condition[ovirt.Snapshot]{
		Name: "snapshot_status==" + string(status),
		Test: func(snap *ovirt.Snapshot) bool { return snap != nil && snap.SnapshotStatus == status },
	}
}

// Apply reconciles one snapshot document. States: present, absent,
// restored.
func Apply(
	ctx context.Context,
	cl *client.Client,
	specNode *yaml.Node,
	state string,
	opts reconcile.Options,
) (reconcile.Outcome, error) {
	var spec Spec
	if err := resources.DecodeStrict(specNode, &spec); err != nil {
		return reconcile.Outcome{}, fmt.Errorf("snapshot spec: %w", err)
	}
	if spec.VM == "" {
		return reconcile.Outcome{}, fmt.Errorf("snapshot: vm is required")
	}

	log := zerolog.Ctx(ctx)

	// Snapshots are scoped to their VM, which must exist for every state.
	vmRec := &reconcile.Reconciler[ovirt.VM]{
		Kind:    "vm",
		Service: ovirt.NewVMService(cl),
		Name:    spec.VM,
		Opts:    opts,
		Log:     *log,
	}
	vm, err := vmRec.Resolve(ctx)
	if err != nil {
		return reconcile.Outcome{}, err
	}
	if vm == nil {
		return reconcile.Outcome{}, &reconcile.NotFoundError{Kind: "vm", Name: spec.VM}
	}

	// The snapshots sub-collection has no search support: list everything
	// and match the description client-side.
	rec := &reconcile.Reconciler[ovirt.Snapshot]{
		Kind:    "snapshot",
		Service: ovirt.NewSnapshotService(cl, vm.ID),
		Name:    spec.Description,
		ListAll: true,
		Build:   spec.build,
		Opts:    opts,
		Log:     *log,
	}
	if spec.SnapshotID != nil {
		rec.ID = *spec.SnapshotID
	} else {
		rec.Match = func(snap *ovirt.Snapshot) bool {
			return snap.Description == spec.Description
		}
	}

	switch state {
	case "present":
		ok := statusIs(ovirt.SnapshotStatusOK)
		result, err := rec.Create(ctx, &ok)
		return result.Outcome(), err
	case "absent":
		result, err := rec.Remove(ctx)
		return result.Outcome(), err
	case "restored":
		ok := statusIs(ovirt.SnapshotStatusOK)
		result, err := rec.Action(ctx, "restore", reconcile.ActionOptions[ovirt.Snapshot]{
			WaitFor: &ok,
			Post: func(ctx context.Context, snap *ovirt.Snapshot) error {
				log.Debug().Str("vm", spec.VM).Str("snapshot", snap.ID).Msg("Restore issued, following snapshot status")
				return nil
			},
		})
		return result.Outcome(), err
	default:
		return reconcile.Outcome{}, fmt.Errorf("snapshot: unsupported state %q", state)
	}
}
