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

// Package datacenter manages engine data centers.
package datacenter

import (
	"context"
	"fmt"

	"github.com/blang/semver"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/virtops/ovirt-apply/pkg/client"
	"github.com/virtops/ovirt-apply/pkg/ovirt"
	"github.com/virtops/ovirt-apply/pkg/reconcile"
	"github.com/virtops/ovirt-apply/pkg/resources"
)

func init() {
	resources.Register("datacenter", Apply)
}

// Spec is the desired state of one data center.
type Spec struct {
	Name                 string  `yaml:"name"`
	Comment              *string `yaml:"comment"`
	Description          *string `yaml:"description"`
	Local                *bool   `yaml:"local"`
	StorageFormat        *string `yaml:"storage_format"`
	CompatibilityVersion *string `yaml:"compatibility_version"`
}

func (s *Spec) build() (*ovirt.DataCenter, error) {
	entity := &ovirt.DataCenter{
		Name:          s.Name,
		Comment:       s.Comment,
		Description:   s.Description,
		Local:         s.Local,
		StorageFormat: s.StorageFormat,
	}
	if s.CompatibilityVersion != nil {
		parsed, err := semver.ParseTolerant(*s.CompatibilityVersion)
		if err != nil {
			return nil, fmt.Errorf("invalid compatibility version %q: %w", *s.CompatibilityVersion, err)
		}
		major, minor := int(parsed.Major), int(parsed.Minor)
		entity.Version = &ovirt.Version{Major: &major, Minor: &minor}
	}
	return entity, nil
}

func (s *Spec) updateCheck(actual *ovirt.DataCenter) bool {
	equal := resources.EqualPtr(s.Comment, actual.Comment) &&
		resources.EqualPtr(s.Description, actual.Description) &&
		resources.EqualPtr(s.Local, actual.Local) &&
		resources.EqualPtr(s.StorageFormat, actual.StorageFormat)

	if s.CompatibilityVersion != nil {
		parsed, err := semver.ParseTolerant(*s.CompatibilityVersion)
		if err != nil || actual.Version == nil {
			return false
		}
		major, minor := int(parsed.Major), int(parsed.Minor)
		equal = equal &&
			resources.EqualPtr(&major, actual.Version.Major) &&
			resources.EqualPtr(&minor, actual.Version.Minor)
	}
	return equal
}

// Apply reconciles one data center document.
func Apply(
	ctx context.Context,
	cl *client.Client,
	specNode *yaml.Node,
	state string,
	opts reconcile.Options,
) (reconcile.Outcome, error) {
	var spec Spec
	if err := resources.DecodeStrict(specNode, &spec); err != nil {
		return reconcile.Outcome{}, fmt.Errorf("datacenter spec: %w", err)
	}

	rec := &reconcile.Reconciler[ovirt.DataCenter]{
		Kind:        "datacenter",
		Service:     ovirt.NewDataCenterService(cl),
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
		return reconcile.Outcome{}, fmt.Errorf("datacenter: unsupported state %q", state)
	}
}
