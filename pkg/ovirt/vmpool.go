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

// VMPool is a pool of stateless virtual machines cloned from one template.
type VMPool struct {
	ID            string  `json:"id,omitempty"`
	Name          string  `json:"name,omitempty"`
	Comment       *string `json:"comment,omitempty"`
	Description   *string `json:"description,omitempty"`
	Cluster       *Link   `json:"cluster,omitempty"`
	Template      *Link   `json:"template,omitempty"`
	Size          *int    `json:"size,omitempty"`
	PrestartedVMs *int    `json:"prestarted_vms,omitempty"`
	MaxUserVMs    *int    `json:"max_user_vms,omitempty"`
}

// EntityID implements Entity.
func (p VMPool) EntityID() string { return p.ID }

// EntityName implements Entity.
func (p VMPool) EntityName() string { return p.Name }

// NewVMPoolService returns the /vmpools service.
func NewVMPoolService(c *client.Client) *Service[VMPool] {
	return NewService[VMPool](c, "vmpools", "vm_pool")
}
