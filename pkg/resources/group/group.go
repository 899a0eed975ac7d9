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

// Package group manages directory groups known to the engine. The same
// group name can exist in several directory namespaces; a spec without a
// namespace fails as ambiguous when more than one matches, it never picks
// one arbitrarily.
package group

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
	resources.Register("group", Apply)
}

// Spec is the desired state of one group registration.
type Spec struct {
	Name      string  `yaml:"name"`
	Domain    string  `yaml:"domain"`
	Namespace *string `yaml:"namespace"`
}

func (s *Spec) build() (*ovirt.Group, error) {
	entity := &ovirt.Group{
		Name:      s.Name,
		Namespace: s.Namespace,
	}
	if s.Domain != "" {
		entity.Domain = &ovirt.Link{Name: s.Domain}
	}
	return entity, nil
}

// Apply reconciles one group document.
func Apply(
	ctx context.Context,
	cl *client.Client,
	specNode *yaml.Node,
	state string,
	opts reconcile.Options,
) (reconcile.Outcome, error) {
	var spec Spec
	if err := resources.DecodeStrict(specNode, &spec); err != nil {
		return reconcile.Outcome{}, fmt.Errorf("group spec: %w", err)
	}

	rec := &reconcile.Reconciler[ovirt.Group]{
		Kind:    "group",
		Service: ovirt.NewGroupService(cl),
		Name:    spec.Name,
		Build:   spec.build,
		Opts:    opts,
		Log:     *zerolog.Ctx(ctx),
	}
	if spec.Namespace != nil {
		rec.Match = func(g *ovirt.Group) bool {
			return resources.EqualPtr(spec.Namespace, g.Namespace)
		}
	}

	switch state {
	case "present":
		result, err := rec.Create(ctx, nil)
		return result.Outcome(), err
	case "absent":
		result, err := rec.Remove(ctx)
		return result.Outcome(), err
	default:
		return reconcile.Outcome{}, fmt.Errorf("group: unsupported state %q", state)
	}
}
