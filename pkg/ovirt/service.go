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

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/virtops/ovirt-apply/pkg/client"
)

// Service is a REST service over one engine collection, for example
// /clusters or /vms/<id>/snapshots. The envelope key is the singular entity
// name the engine uses to wrap list responses.
type Service[E Entity] struct {
	client   *client.Client
	path     string
	envelope string
}

// NewService binds a service to a collection path and list envelope key.
func NewService[E Entity](c *client.Client, path, envelope string) *Service[E] {
	return &Service[E]{client: c, path: path, envelope: envelope}
}

// Get fetches one entity by id. A missing entity is (nil, nil), not an
// error: absence is a regular answer during reconciliation.
func (s *Service[E]) Get(ctx context.Context, id string) (*E, error) {
	var entity E
	err := s.client.Get(ctx, "/"+s.path+"/"+id, &entity)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.IsNotFound() {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// List fetches the entities matching an engine search expression, e.g.
// "name=mycluster". An empty search lists the whole collection.
func (s *Service[E]) List(ctx context.Context, search string) ([]E, error) {
	path := "/" + s.path
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}

	var raw map[string]json.RawMessage
	if err := s.client.Get(ctx, path, &raw); err != nil {
		return nil, err
	}

	payload, ok := raw[s.envelope]
	if !ok {
		return nil, nil
	}
	var entities []E
	if err := json.Unmarshal(payload, &entities); err != nil {
		return nil, fmt.Errorf("decoding %s list: %w", s.envelope, err)
	}
	return entities, nil
}

// Add creates a new entity and returns the engine's view of it, including
// the assigned id.
func (s *Service[E]) Add(ctx context.Context, entity *E) (*E, error) {
	var created E
	if err := s.client.Post(ctx, "/"+s.path, entity, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update sends the desired attributes of an existing entity and returns the
// engine's updated view.
func (s *Service[E]) Update(ctx context.Context, id string, entity *E) (*E, error) {
	var updated E
	if err := s.client.Put(ctx, "/"+s.path+"/"+id, entity, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Remove deletes an entity. The engine processes removal asynchronously;
// callers poll Get until it reports absence.
func (s *Service[E]) Remove(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/"+s.path+"/"+id, nil)
}

// Action invokes a named asynchronous action, e.g. "deactivate". Args become
// the action body; the engine rejects unknown actions with a fault.
func (s *Service[E]) Action(ctx context.Context, id, name string, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	return s.client.Post(ctx, "/"+s.path+"/"+id+"/"+name, args, nil)
}
