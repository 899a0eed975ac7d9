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

package ovirt

import "github.com/virtops/ovirt-apply/pkg/client"

// Host is a hypervisor host managed by the engine.
type Host struct {
	ID               string     `json:"id,omitempty"`
	Name             string     `json:"name,omitempty"`
	Comment          *string    `json:"comment,omitempty"`
	Address          *string    `json:"address,omitempty"`
	Cluster          *Link      `json:"cluster,omitempty"`
	RootPassword     *string    `json:"root_password,omitempty"`
	SSH              *SSH       `json:"ssh,omitempty"`
	KdumpStatus      *string    `json:"kdump_status,omitempty"`
	SPM              *SPM       `json:"spm,omitempty"`
	OverrideIptables *bool      `json:"override_iptables,omitempty"`
	Status           HostStatus `json:"status,omitempty"`
	UpdateAvailable  *bool      `json:"update_available,omitempty"`
}

// EntityID implements Entity.
func (h Host) EntityID() string { return h.ID }

// EntityName implements Entity.
func (h Host) EntityName() string { return h.Name }

// NewHostService returns the /hosts service. Host state transitions go
// through Action with "activate", "deactivate" and "upgrade".
func NewHostService(c *client.Client) *Service[Host] {
	return NewService[Host](c, "hosts", "host")
}
