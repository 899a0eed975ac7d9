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

// VM is a virtual machine. Only the attributes needed to scope snapshot
// operations are mapped.
type VM struct {
	ID     string   `json:"id,omitempty"`
	Name   string   `json:"name,omitempty"`
	Status VMStatus `json:"status,omitempty"`
}

// EntityID implements Entity.
func (v VM) EntityID() string { return v.ID }

// EntityName implements Entity.
func (v VM) EntityName() string { return v.Name }

// NewVMService returns the /vms service.
func NewVMService(c *client.Client) *Service[VM] {
	return NewService[VM](c, "vms", "vm")
}

// Snapshot is a point-in-time snapshot of one virtual machine. Snapshots
// have no name; the description identifies them to callers.
type Snapshot struct {
	ID             string         `json:"id,omitempty"`
	Description    string         `json:"description,omitempty"`
	SnapshotStatus SnapshotStatus `json:"snapshot_status,omitempty"`
	PersistMemory  *bool          `json:"persist_memorystate,omitempty"`
}

// EntityID implements Entity.
func (s Snapshot) EntityID() string { return s.ID }

// EntityName returns the description: snapshots are looked up by it.
func (s Snapshot) EntityName() string { return s.Description }

// NewSnapshotService returns the snapshot sub-collection of one VM.
func NewSnapshotService(c *client.Client, vmID string) *Service[Snapshot] {
	return NewService[Snapshot](c, "vms/"+vmID+"/snapshots", "snapshot")
}
