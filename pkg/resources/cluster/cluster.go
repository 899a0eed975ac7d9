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

// Package cluster manages engine clusters.
package cluster

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
	resources.Register("cluster", Apply)
}

// Spec is the desired state of one cluster. Unset fields are left alone on
// an existing cluster.
type Spec struct {
	Name                 string  `yaml:"name"`
	Comment              *string `yaml:"comment"`
	Description          *string `yaml:"description"`
	DataCenter           *string `yaml:"datacenter"`
	ManagementNetwork    *string `yaml:"network"`
	CPUArch              *string `yaml:"cpu_arch"`
	CPUType              *string `yaml:"cpu_type"`
	SwitchType           *string `yaml:"switch_type"`
	CompatibilityVersion *string `yaml:"compatibility_version"`
}

func (s *Spec) build() (*ovirt.Cluster, error) {
	entity := &ovirt.Cluster{
		Name:        s.Name,
		Comment:     s.Comment,
		Description: s.Description,
		SwitchType:  s.SwitchType,
	}
	if s.DataCenter != nil {
		entity.DataCenter = &ovirt.Link{Name: *s.DataCenter}
	}
	if s.ManagementNetwork != nil {
		entity.ManagementNetwork = &ovirt.Link{Name: *s.ManagementNetwork}
	}
	if s.CPUArch != nil || s.CPUType != nil {
		entity.CPU = &ovirt.CPU{Architecture: s.CPUArch, Type: s.CPUType}
	}
	if s.CompatibilityVersion != nil {
		major, minor, err := parseCompatibilityVersion(*s.CompatibilityVersion)
		if err != nil {
			return nil, err
		}
		entity.Version = &ovirt.Version{Major: &major, Minor: &minor}
	}
	return entity, nil
}

func (s *Spec) updateCheck(actual *ovirt.Cluster) bool {
	equal := resources.EqualPtr(s.Comment, actual.Comment) &&
		resources.EqualPtr(s.Description, actual.Description) &&
		resources.EqualPtr(s.SwitchType, actual.SwitchType)

	if s.CPUArch != nil || s.CPUType != nil {
		if actual.CPU == nil {
			return false
		}
		equal = equal &&
			resources.EqualPtr(s.CPUArch, actual.CPU.Architecture) &&
			resources.EqualPtr(s.CPUType, actual.CPU.Type)
	}

	if s.CompatibilityVersion != nil {
		major, minor, err := parseCompatibilityVersion(*s.CompatibilityVersion)
		if err != nil || actual.Version == nil {
			return false
		}
		equal = equal &&
			resources.EqualPtr(&major, actual.Version.Major) &&
			resources.EqualPtr(&minor, actual.Version.Minor)
	}
	return equal
}

// parseCompatibilityVersion splits a "4.2"-style version into major and
// minor parts.
func parseCompatibilityVersion(version string) (int, int, error) {
	parsed, err := semver.ParseTolerant(version)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid compatibility version %q: %w", version, err)
	}
	return int(parsed.Major), int(parsed.Minor), nil
}

// Apply reconciles one cluster document.
func Apply(
	ctx context.Context,
	cl *client.Client,
	specNode *yaml.Node,
	state string,
	opts reconcile.Options,
) (reconcile.Outcome, error) {
	var spec Spec
	if err := resources.DecodeStrict(specNode, &spec); err != nil {
		return reconcile.Outcome{}, fmt.Errorf("cluster spec: %w", err)
	}

	rec := &reconcile.Reconciler[ovirt.Cluster]{
		Kind:        "cluster",
		Service:     ovirt.NewClusterService(cl),
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
		return reconcile.Outcome{}, fmt.Errorf("cluster: unsupported state %q", state)
	}
}
