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

// Package storagedomain manages storage domains. Activation state lives on
// the attached view under a data center, so maintenance and removal go
// through that sub-collection.
package storagedomain

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
	resources.Register("storagedomain", Apply)
}

// LogicalUnit identifies one iSCSI LUN in a spec.
type LogicalUnit struct {
	ID      string `yaml:"id"`
	Address string `yaml:"address"`
	Port    *int   `yaml:"port"`
	Target  string `yaml:"target"`
}

// Spec is the desired state of one storage domain.
type Spec struct {
	Name         string        `yaml:"name"`
	Comment      *string       `yaml:"comment"`
	Description  *string       `yaml:"description"`
	DataCenter   string        `yaml:"datacenter"`
	DomainType   *string       `yaml:"domain_type"`
	Host         *string       `yaml:"host"`
	StorageType  *string       `yaml:"storage_type"`
	Address      *string       `yaml:"address"`
	Path         *string       `yaml:"path"`
	LogicalUnits []LogicalUnit `yaml:"logical_units"`
}

func (s *Spec) build() (*ovirt.StorageDomain, error) {
	entity := &ovirt.StorageDomain{
		Name:        s.Name,
		Comment:     s.Comment,
		Description: s.Description,
		Type:        s.DomainType,
	}
	if s.Host != nil {
		entity.Host = &ovirt.Link{Name: *s.Host}
	}
	if s.StorageType != nil || s.Address != nil || s.Path != nil || len(s.LogicalUnits) > 0 {
		storage := &ovirt.HostStorage{
			Type:    s.StorageType,
			Address: s.Address,
			Path:    s.Path,
		}
		for _, lun := range s.LogicalUnits {
			storage.LogicalUnits = append(storage.LogicalUnits, ovirt.LogicalUnit{
				ID:      lun.ID,
				Address: lun.Address,
				Port:    lun.Port,
				Target:  lun.Target,
			})
		}
		entity.Storage = storage
	}
	return entity, nil
}

// updateCheck only compares the mutable attributes: backing storage of an
// existing domain cannot be changed in place.
func (s *Spec) updateCheck(actual *ovirt.StorageDomain) bool {
	return resources.EqualPtr(s.Comment, actual.Comment) &&
		resources.EqualPtr(s.Description, actual.Description)
}

func statusIs(status ovirt.StorageDomainStatus) reconcile.Condition[ovirt.StorageDomain] {
	return reconcile.Condition[ovirt.StorageDomain]{
		Name: "status==" + string(status),
		Test: func(sd *ovirt.StorageDomain) bool { return sd != nil && sd.Status == status },
	}
}

func statusNot(status ovirt.StorageDomainStatus) reconcile.Condition[ovirt.StorageDomain] {
	return reconcile.Condition[ovirt.StorageDomain]{
		Name: "status!=" + string(status),
		Test: func(sd *ovirt.StorageDomain) bool { return sd != nil && sd.Status != status },
	}
}

// attachedReconciler builds a reconciler over the data-center-attached view
// of the domain, where activate/deactivate exist.
func attachedReconciler(
	ctx context.Context,
	cl *client.Client,
	spec *Spec,
	opts reconcile.Options,
) (*reconcile.Reconciler[ovirt.StorageDomain], error) {
	if spec.DataCenter == "" {
		return nil, fmt.Errorf("storagedomain: datacenter is required for this state")
	}
	dcRec := &reconcile.Reconciler[ovirt.DataCenter]{
		Kind:    "datacenter",
		Service: ovirt.NewDataCenterService(cl),
		Name:    spec.DataCenter,
		Opts:    opts,
		Log:     *zerolog.Ctx(ctx),
	}
	dc, err := dcRec.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, &reconcile.NotFoundError{Kind: "datacenter", Name: spec.DataCenter}
	}

	return &reconcile.Reconciler[ovirt.StorageDomain]{
		Kind:    "storagedomain",
		Service: ovirt.NewAttachedStorageDomainService(cl, dc.ID),
		Name:    spec.Name,
		Opts:    opts,
		Log:     *zerolog.Ctx(ctx),
	}, nil
}

// Apply reconciles one storage domain document. States: present, absent,
// maintenance.
func Apply(
	ctx context.Context,
	cl *client.Client,
	specNode *yaml.Node,
	state string,
	opts reconcile.Options,
) (reconcile.Outcome, error) {
	var spec Spec
	if err := resources.DecodeStrict(specNode, &spec); err != nil {
		return reconcile.Outcome{}, fmt.Errorf("storagedomain spec: %w", err)
	}

	rec := &reconcile.Reconciler[ovirt.StorageDomain]{
		Kind:        "storagedomain",
		Service:     ovirt.NewStorageDomainService(cl),
		Name:        spec.Name,
		Build:       spec.build,
		UpdateCheck: spec.updateCheck,
		Opts:        opts,
		Log:         *zerolog.Ctx(ctx),
	}

	// Removal is only accepted once the attached domain sits in maintenance.
	rec.PreRemove = func(ctx context.Context, actual *ovirt.StorageDomain) error {
		attached, err := attachedReconciler(ctx, cl, &spec, opts)
		if err != nil {
			return err
		}
		when := statusNot(ovirt.StorageDomainStatusMaintenance)
		waitFor := statusIs(ovirt.StorageDomainStatusMaintenance)
		_, err = attached.Action(ctx, "deactivate", reconcile.ActionOptions[ovirt.StorageDomain]{
			When:    &when,
			WaitFor: &waitFor,
		})
		return err
	}

	switch state {
	case "present":
		result, err := rec.Create(ctx, nil)
		return result.Outcome(), err
	case "absent":
		result, err := rec.Remove(ctx)
		return result.Outcome(), err
	case "maintenance":
		attached, err := attachedReconciler(ctx, cl, &spec, opts)
		if err != nil {
			return reconcile.Outcome{}, err
		}
		when := statusNot(ovirt.StorageDomainStatusMaintenance)
		waitFor := statusIs(ovirt.StorageDomainStatusMaintenance)
		result, err := attached.Action(ctx, "deactivate", reconcile.ActionOptions[ovirt.StorageDomain]{
			When:    &when,
			WaitFor: &waitFor,
		})
		return result.Outcome(), err
	default:
		return reconcile.Outcome{}, fmt.Errorf("storagedomain: unsupported state %q", state)
	}
}
