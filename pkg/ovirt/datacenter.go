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

// DataCenter is an engine data center.
type DataCenter struct {
	ID            string           `json:"id,omitempty"`
	Name          string           `json:"name,omitempty"`
	Comment       *string          `json:"comment,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Local         *bool            `json:"local,omitempty"`
	StorageFormat *string          `json:"storage_format,omitempty"`
	Version       *Version         `json:"version,omitempty"`
	Status        DataCenterStatus `json:"status,omitempty"`
}

// EntityID implements Entity.
func (d DataCenter) EntityID() string { return d.ID }

// EntityName implements Entity.
func (d DataCenter) EntityName() string { return d.Name }

// NewDataCenterService returns the /datacenters service.
func NewDataCenterService(c *client.Client) *Service[DataCenter] {
	return NewService[DataCenter](c, "datacenters", "data_center")
}
