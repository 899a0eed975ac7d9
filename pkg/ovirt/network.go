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

// Network is a logical network scoped to a data center.
type Network struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name,omitempty"`
	Comment     *string `json:"comment,omitempty"`
	Description *string `json:"description,omitempty"`
	DataCenter  *Link   `json:"data_center,omitempty"`
	VLAN        *VLAN   `json:"vlan,omitempty"`
	STP         *bool   `json:"stp,omitempty"`
	MTU         *int    `json:"mtu,omitempty"`
	Usages      *Usage  `json:"usages,omitempty"`
}

// EntityID implements Entity.
func (n Network) EntityID() string { return n.ID }

// EntityName implements Entity.
func (n Network) EntityName() string { return n.Name }

// NewNetworkService returns the /networks service.
func NewNetworkService(c *client.Client) *Service[Network] {
	return NewService[Network](c, "networks", "network")
}
