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

// Package user manages directory users known to the engine. Users are
// created in the engine by reference: the directory owns them, the engine
// only registers them, so there is nothing to update in place.
package user

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
	resources.Register("user", Apply)
}

// Spec is the desired state of one user registration.
type Spec struct {
	Name      string  `yaml:"name"`
	Domain    string  `yaml:"domain"`
	Namespace *string `yaml:"namespace"`
}

func (s *Spec) build() (*ovirt.User, error) {
	entity := &ovirt.User{
		UserName:  s.Name + "@" + s.Domain,
		Namespace: s.Namespace,
	}
	principal := s.Name
	entity.Principal = &principal
	entity.Domain = &ovirt.Link{Name: s.Domain}
	return entity, nil
}

// Apply reconciles one user document.
func Apply(
	ctx context.Context,
	cl *client.Client,
	specNode *yaml.Node,
	state string,
	opts reconcile.Options,
) (reconcile.Outcome, error) {
	var spec Spec
	if err := resources.DecodeStrict(specNode, &spec); err != nil {
		return reconcile.Outcome{}, fmt.Errorf("user spec: %w", err)
	}
	if spec.Domain == "" {
		return reconcile.Outcome{}, fmt.Errorf("user: domain is required")
	}

	rec := &reconcile.Reconciler[ovirt.User]{
		Kind:         "user",
		Service:      ovirt.NewUserService(cl),
		Name:         spec.Name,
		SearchFilter: fmt.Sprintf("usrname=%s@%s", spec.Name, spec.Domain),
		Build:        spec.build,
		Opts:         opts,
		Log:          *zerolog.Ctx(ctx),
	}
	if spec.Namespace != nil {
		rec.Match = func(u *ovirt.User) bool {
			return resources.EqualPtr(spec.Namespace, u.Namespace)
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
		return reconcile.Outcome{}, fmt.Errorf("user: unsupported state %q", state)
	}
}
