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

// Package host manages hypervisor hosts: enrollment, maintenance and
// upgrades. Hosts transition asynchronously, so most states carry a wait
// condition.
package host

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/virtops/ovirt-apply/pkg/client"
	"github.com/virtops/ovirt-apply/pkg/ovirt"
	"github.com/virtops/ovirt-apply/pkg/reconcile"
	"github.com/virtops/ovirt-apply/pkg/resources"
)

func init() {
	resources.Register("host", Apply)
}

// Host deployment regularly outlives the generic wait budget.
const defaultHostTimeout = 600 * time.Second

// Spec is the desired state of one host.
type Spec struct {
	Name             string  `yaml:"name"`
	Comment          *string `yaml:"comment"`
	Cluster          *string `yaml:"cluster"`
	Address          *string `yaml:"address"`
	Password         *string `yaml:"password"`
	PublicKey        *bool   `yaml:"public_key"`
	FetchHostKey     bool    `yaml:"fetch_host_key"`
	KdumpIntegration *string `yaml:"kdump_integration"`
	SPMPriority      *int    `yaml:"spm_priority"`
	OverrideIptables *bool   `yaml:"override_iptables"`
}

// build maps the spec to a host entity. The host-key fingerprint probe is
// the one impure step and runs only when explicitly requested.
func (s *Spec) build(ctx context.Context) (*ovirt.Host, error) {
	entity := &ovirt.Host{
		Name:             s.Name,
		Comment:          s.Comment,
		Address:          s.Address,
		RootPassword:     s.Password,
		KdumpStatus:      s.KdumpIntegration,
		OverrideIptables: s.OverrideIptables,
	}
	if s.Cluster != nil {
		entity.Cluster = &ovirt.Link{Name: *s.Cluster}
	}
	if s.PublicKey != nil && *s.PublicKey {
		method := "publickey"
		entity.SSH = &ovirt.SSH{AuthenticationMethod: &method}
		if s.FetchHostKey && s.Address != nil {
			fingerprint, err := client.FetchHostKey(ctx, *s.Address, 0)
			if err != nil {
				return nil, err
			}
			entity.SSH.Fingerprint = &fingerprint
		}
	}
	if s.SPMPriority != nil {
		entity.SPM = &ovirt.SPM{Priority: s.SPMPriority}
	}
	return entity, nil
}

func (s *Spec) updateCheck(actual *ovirt.Host) bool {
	equal := resources.EqualPtr(s.Comment, actual.Comment) &&
		resources.EqualPtr(s.KdumpIntegration, actual.KdumpStatus)
	if s.SPMPriority != nil {
		if actual.SPM == nil {
			return false
		}
		equal = equal && resources.EqualPtr(s.SPMPriority, actual.SPM.Priority)
	}
	return equal
}

// statusIs names the "host status equals" wait condition.
func statusIs(status ovirt.HostStatus) reconcile.Condition[ovirt.Host] {
	return reconcile.Condition[ovirt.Host]{
		Name: "status==" + string(status),
		Test: func(h *ovirt.Host) bool { return h != nil && h.Status == status },
	}
}

// statusNot names the "host status differs" action condition.
func statusNot(status ovirt.HostStatus) reconcile.Condition[ovirt.Host] {
	return reconcile.Condition[ovirt.Host]{
		Name: "status!=" + string(status),
		Test: func(h *ovirt.Host) bool { return h != nil && h.Status != status },
	}
}

// updateAvailable gates the upgrade action on the engine having found one.
func updateAvailable() reconcile.Condition[ovirt.Host] {
	return reconcile.Condition[ovirt.Host]{
		Name: "update_available",
		Test: func(h *ovirt.Host) bool {
			return h != nil && h.UpdateAvailable != nil && *h.UpdateAvailable
		},
	}
}

// Apply reconciles one host document. States: present, absent, maintenance,
// upgraded.
func Apply(
	ctx context.Context,
	cl *client.Client,
	specNode *yaml.Node,
	state string,
	opts reconcile.Options,
) (reconcile.Outcome, error) {
	var spec Spec
	if err := resources.DecodeStrict(specNode, &spec); err != nil {
		return reconcile.Outcome{}, fmt.Errorf("host spec: %w", err)
	}

	if opts.Timeout == 0 {
		opts.Timeout = defaultHostTimeout
	}

	rec := &reconcile.Reconciler[ovirt.Host]{
		Kind:        "host",
		Service:     ovirt.NewHostService(cl),
		Name:        spec.Name,
		Build:       func() (*ovirt.Host, error) { return spec.build(ctx) },
		UpdateCheck: spec.updateCheck,
		Opts:        opts,
		Log:         *zerolog.Ctx(ctx),
	}

	// The engine refuses to remove a host that is not in maintenance, so
	// removal deactivates first and waits for the transition.
	rec.PreRemove = func(ctx context.Context, actual *ovirt.Host) error {
		when := statusNot(ovirt.HostStatusMaintenance)
		waitFor := statusIs(ovirt.HostStatusMaintenance)
		_, err := rec.Action(ctx, "deactivate", reconcile.ActionOptions[ovirt.Host]{
			Entity:  actual,
			When:    &when,
			WaitFor: &waitFor,
		})
		return err
	}

	// A host whose attributes were updated while it sat in maintenance (or
	// any non-up status) is activated afterwards.
	rec.PostUpdate = func(ctx context.Context, actual *ovirt.Host) (bool, error) {
		if actual.Status == ovirt.HostStatusUp {
			return false, nil
		}
		result, err := rec.Action(ctx, "activate", reconcile.ActionOptions[ovirt.Host]{Entity: actual})
		return result.Changed, err
	}

	switch state {
	case "present":
		up := statusIs(ovirt.HostStatusUp)
		result, err := rec.Create(ctx, &up)
		return result.Outcome(), err
	case "absent":
		result, err := rec.Remove(ctx)
		return result.Outcome(), err
	case "maintenance":
		when := statusNot(ovirt.HostStatusMaintenance)
		waitFor := statusIs(ovirt.HostStatusMaintenance)
		result, err := rec.Action(ctx, "deactivate", reconcile.ActionOptions[ovirt.Host]{
			When:    &when,
			WaitFor: &waitFor,
		})
		return result.Outcome(), err
	case "upgraded":
		when := updateAvailable()
		waitFor := statusIs(ovirt.HostStatusUp)
		result, err := rec.Action(ctx, "upgrade", reconcile.ActionOptions[ovirt.Host]{
			When:    &when,
			WaitFor: &waitFor,
		})
		return result.Outcome(), err
	default:
		return reconcile.Outcome{}, fmt.Errorf("host: unsupported state %q", state)
	}
}
