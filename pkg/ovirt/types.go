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

// Package ovirt provides entity representations and REST services for the
// oVirt engine API. Optional attributes are pointers: a nil field is never
// sent on the wire and never participates in equality checks.
package ovirt

// Entity is anything the engine owns and identifies by a stable id.
type Entity interface {
	EntityID() string
	EntityName() string
}

// Link references another entity by id or name, the way the engine accepts
// nested references in request bodies.
type Link struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Version is an engine compatibility version.
type Version struct {
	Major *int `json:"major,omitempty"`
	Minor *int `json:"minor,omitempty"`
}

// CPU describes a cluster CPU profile.
type CPU struct {
	Architecture *string `json:"architecture,omitempty"`
	Type         *string `json:"type,omitempty"`
}

// SSH carries host SSH enrollment parameters.
type SSH struct {
	AuthenticationMethod *string `json:"authentication_method,omitempty"`
	Fingerprint          *string `json:"fingerprint,omitempty"`
}

// SPM carries a host's storage pool manager settings.
type SPM struct {
	Priority *int `json:"priority,omitempty"`
}

// VLAN tags a network.
type VLAN struct {
	ID *int `json:"id,omitempty"`
}

// Usage flags a network role inside its data center.
type Usage struct {
	Usages []string `json:"usages,omitempty"`
}

// HostStorage describes the backing storage of a storage domain.
type HostStorage struct {
	Type         *string       `json:"type,omitempty"`
	Address      *string       `json:"address,omitempty"`
	Path         *string       `json:"path,omitempty"`
	LogicalUnits []LogicalUnit `json:"logical_units,omitempty"`
}

// LogicalUnit identifies one iSCSI LUN.
type LogicalUnit struct {
	ID      string `json:"id,omitempty"`
	Address string `json:"address,omitempty"`
	Port    *int   `json:"port,omitempty"`
	Target  string `json:"target,omitempty"`
}

// HostStatus is the engine-reported host lifecycle status.
type HostStatus string

// Host statuses the reconciler dispatches on. The engine reports more
// transitional values; only terminal ones are named here.
const (
	HostStatusUp             HostStatus = "up"
	HostStatusDown           HostStatus = "down"
	HostStatusMaintenance    HostStatus = "maintenance"
	HostStatusInstalling     HostStatus = "installing"
	HostStatusInstallFailed  HostStatus = "install_failed"
	HostStatusNonResponsive  HostStatus = "non_responsive"
	HostStatusNonOperational HostStatus = "non_operational"
)

// StorageDomainStatus is the engine-reported storage domain status within a
// data center.
type StorageDomainStatus string

const (
	StorageDomainStatusActive      StorageDomainStatus = "active"
	StorageDomainStatusInactive    StorageDomainStatus = "inactive"
	StorageDomainStatusLocked      StorageDomainStatus = "locked"
	StorageDomainStatusMaintenance StorageDomainStatus = "maintenance"
	StorageDomainStatusUnattached  StorageDomainStatus = "unattached"
)

// DataCenterStatus is the engine-reported data center status.
type DataCenterStatus string

const (
	DataCenterStatusUp             DataCenterStatus = "up"
	DataCenterStatusDown           DataCenterStatus = "down"
	DataCenterStatusMaintenance    DataCenterStatus = "maintenance"
	DataCenterStatusUninitialized  DataCenterStatus = "uninitialized"
	DataCenterStatusNotOperational DataCenterStatus = "not_operational"
)

// SnapshotStatus is the engine-reported snapshot status.
type SnapshotStatus string

const (
	SnapshotStatusOK        SnapshotStatus = "ok"
	SnapshotStatusLocked    SnapshotStatus = "locked"
	SnapshotStatusInPreview SnapshotStatus = "in_preview"
)

// VMStatus is the engine-reported virtual machine status.
type VMStatus string

const (
	VMStatusUp   VMStatus = "up"
	VMStatusDown VMStatus = "down"
)
