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

// User is a directory user known to the engine.
type User struct {
	ID        string  `json:"id,omitempty"`
	Name      string  `json:"name,omitempty"`
	UserName  string  `json:"user_name,omitempty"`
	Principal *string `json:"principal,omitempty"`
	Domain    *Link   `json:"domain,omitempty"`
	Namespace *string `json:"namespace,omitempty"`
}

// EntityID implements Entity.
func (u User) EntityID() string { return u.ID }

// EntityName implements Entity.
func (u User) EntityName() string { return u.Name }

// NewUserService returns the /users service.
func NewUserService(c *client.Client) *Service[User] {
	return NewService[User](c, "users", "user")
}

// Group is a directory group known to the engine. Groups with the same name
// can exist in several directory namespaces; the namespace disambiguates.
type Group struct {
	ID        string  `json:"id,omitempty"`
	Name      string  `json:"name,omitempty"`
	Domain    *Link   `json:"domain,omitempty"`
	Namespace *string `json:"namespace,omitempty"`
}

// EntityID implements Entity.
func (g Group) EntityID() string { return g.ID }

// EntityName implements Entity.
func (g Group) EntityName() string { return g.Name }

// NewGroupService returns the /groups service.
func NewGroupService(c *client.Client) *Service[Group] {
	return NewService[Group](c, "groups", "group")
}
