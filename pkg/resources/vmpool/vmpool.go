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

// Package vmpool manages pools of stateless virtual machines.
package vmpool

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
	resources.Register("vmpool", Apply)
}

// Spec is the desired state of one VM pool.
type Spec struct {
	Name          string  `yaml:"name"`
	Comment       *string `yaml:"comment"`
	Description   *string `yaml:"description"`
	Cluster       *string `yaml:"cluster"`
	Template      *string `yaml:"template"`
	Size          *int    `yaml:"size"`
	PrestartedVMs *int    `yaml:"prestarted_vms"`
	VMsPerUser    *int    `yaml:"vms_per_user"`
}

func (s *Spec) build() (*ovirt.VMPool, error) {
	entity := &ovirt.VMPool{
		Name:          s.Name,
		Comment:       s.Comment,
		Description:   s.Description,
		Size:          s.Size,
		PrestartedVMs: s.PrestartedVMs,
		MaxUserVMs:    s.VMsPerUser,
	}
	if s.Cluster != nil {
		entity.Cluster = &ovirt.Link{Name: *s.Cluster}
	}
	if s.Template != nil {
		entity.Template = &ovirt.Link{Name: *s.Template}
	}
	return entity, nil
}

func (s *Spec) updateCheck(actual *ovirt.VMPool) bool {
	return resources.EqualPtr(s.Comment, actual.Comment) &&
		resources.EqualPtr(s.Description, actual.Description) &&
		resources.EqualPtr(s.Size, actual.Size) &&
		resources.EqualPtr(s.PrestartedVMs, actual.PrestartedVMs) &&
		resources.EqualPtr(s.VMsPerUser, actual.MaxUserVMs)
}

// Apply reconciles one VM pool document.
func Apply(
	ctx context.Context,
	cl *client.Client,
	specNode *yaml.Node,
	state string,
	opts reconcile.Options,
) (reconcile.Outcome, error) {
	var spec Spec
	if err := resources.DecodeStrict(specNode, &spec); err != nil {
		return reconcile.Outcome{}, fmt.Errorf("vmpool spec: %w", err)
	}

	rec := &reconcile.Reconciler[ovirt.VMPool]{
		Kind:        "vmpool",
		Service:     ovirt.NewVMPoolService(cl),
		Name:        spec.Name,
		Build:       spec.build,
		UpdateCheck: spec.updateCheck,
		Opts:        opts,
		Log:         *zerolog.Ctx(ctx),
	}

	switch state {
	case "present":
		result, err := rec.Create(ctx, nil)
		return result.Outcome(), err
	case "absent":
		result, err := rec.Remove(ctx)
		return result.Outcome(), err
	default:
		return reconcile.Outcome{}, fmt.Errorf("vmpool: unsupported state %q", state)
	}
}
