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

// Cluster is an engine cluster.
type Cluster struct {
	ID                string   `json:"id,omitempty"`
	Name              string   `json:"name,omitempty"`
	Comment           *string  `json:"comment,omitempty"`
	Description       *string  `json:"description,omitempty"`
	DataCenter        *Link    `json:"data_center,omitempty"`
	ManagementNetwork *Link    `json:"management_network,omitempty"`
	CPU               *CPU     `json:"cpu,omitempty"`
	Version           *Version `json:"version,omitempty"`
	SwitchType        *string  `json:"switch_type,omitempty"`
}

// EntityID implements Entity.
func (c Cluster) EntityID() string { return c.ID }

// EntityName implements Entity.
func (c Cluster) EntityName() string { return c.Name }

// NewClusterService returns the /clusters service.
func NewClusterService(c *client.Client) *Service[Cluster] {
	return NewService[Cluster](c, "clusters", "cluster")
}
