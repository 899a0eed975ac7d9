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

// Package network manages logical networks inside a data center.
package network

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
	resources.Register("network", Apply)
}

// Spec is the desired state of one logical network. Networks with the same
// name exist in several data centers, so the data center participates in
// resolution, not just in the desired attributes.
type Spec struct {
	Name        string   `yaml:"name"`
	DataCenter  string   `yaml:"datacenter"`
	Comment     *string  `yaml:"comment"`
	Description *string  `yaml:"description"`
	VLANTag     *int     `yaml:"vlan_tag"`
	STP         *bool    `yaml:"stp"`
	MTU         *int     `yaml:"mtu"`
	Usages      []string `yaml:"usages"`
}

func (s *Spec) build() (*ovirt.Network, error) {
	entity := &ovirt.Network{
		Name:        s.Name,
		Comment:     s.Comment,
		Description: s.Description,
		STP:         s.STP,
		MTU:         s.MTU,
	}
	if s.DataCenter != "" {
		entity.DataCenter = &ovirt.Link{Name: s.DataCenter}
	}
	if s.VLANTag != nil {
		entity.VLAN = &ovirt.VLAN{ID: s.VLANTag}
	}
	if s.Usages != nil {
		entity.Usages = &ovirt.Usage{Usages: s.Usages}
	}
	return entity, nil
}

func (s *Spec) updateCheck(actual *ovirt.Network) bool {
	equal := resources.EqualPtr(s.Comment, actual.Comment) &&
		resources.EqualPtr(s.Description, actual.Description) &&
		resources.EqualPtr(s.STP, actual.STP) &&
		resources.EqualPtr(s.MTU, actual.MTU)

	if s.VLANTag != nil {
		if actual.VLAN == nil {
			return false
		}
		equal = equal && resources.EqualPtr(s.VLANTag, actual.VLAN.ID)
	}
	if s.Usages != nil {
		var actualUsages []string
		if actual.Usages != nil {
			actualUsages = actual.Usages.Usages
		}
		equal = equal && resources.EqualSlice(s.Usages, actualUsages)
	}
	return equal
}

// Apply reconciles one network document.
func Apply(
	ctx context.Context,
	cl *client.Client,
	specNode *yaml.Node,
	state string,
	opts reconcile.Options,
) (reconcile.Outcome, error) {
	var spec Spec
	if err := resources.DecodeStrict(specNode, &spec); err != nil {
		return reconcile.Outcome{}, fmt.Errorf("network spec: %w", err)
	}

	rec := &reconcile.Reconciler[ovirt.Network]{
		Kind:        "network",
		Service:     ovirt.NewNetworkService(cl),
		Name:        spec.Name,
		Build:       spec.build,
		UpdateCheck: spec.updateCheck,
		Opts:        opts,
		Log:         *zerolog.Ctx(ctx),
	}
	if spec.DataCenter != "" {
		rec.SearchFilter = fmt.Sprintf("name=%s and datacenter=%s", spec.Name, spec.DataCenter)
	}

	switch state {
	case "present":
		result, err := rec.Create(ctx, nil)
		return result.Outcome(), err
	case "absent":
		result, err := rec.Remove(ctx)
		return result.Outcome(), err
	default:
		return reconcile.Outcome{}, fmt.Errorf("network: unsupported state %q", state)
	}
}
