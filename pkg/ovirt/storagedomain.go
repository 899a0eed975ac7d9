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

// StorageDomain is an engine storage domain. Status is only meaningful on
// the attached view under a data center; the top-level collection reports
// ExternalStatus.
type StorageDomain struct {
	ID          string              `json:"id,omitempty"`
	Name        string              `json:"name,omitempty"`
	Comment     *string             `json:"comment,omitempty"`
	Description *string             `json:"description,omitempty"`
	Type        *string             `json:"type,omitempty"`
	Host        *Link               `json:"host,omitempty"`
	Storage     *HostStorage        `json:"storage,omitempty"`
	Status      StorageDomainStatus `json:"status,omitempty"`
}

// EntityID implements Entity.
func (s StorageDomain) EntityID() string { return s.ID }

// EntityName implements Entity.
func (s StorageDomain) EntityName() string { return s.Name }

// NewStorageDomainService returns the top-level /storagedomains service.
func NewStorageDomainService(c *client.Client) *Service[StorageDomain] {
	return NewService[StorageDomain](c, "storagedomains", "storage_domain")
}

// NewAttachedStorageDomainService returns the storage domain collection
// attached to one data center. Activate/deactivate actions only exist on
// this view.
func NewAttachedStorageDomainService(c *client.Client, dataCenterID string) *Service[StorageDomain] {
	return NewService[StorageDomain](c, "datacenters/"+dataCenterID+"/storagedomains", "storage_domain")
}
