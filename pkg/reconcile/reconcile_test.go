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

package reconcile_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtops/ovirt-apply/pkg/reconcile"
)

type testEntity struct {
	ID        string
	Name      string
	Namespace string
	Comment   string
	Status    string
}

func (e testEntity) EntityID() string   { return e.ID }
func (e testEntity) EntityName() string { return e.Name }

// fakeService is an in-memory collection with call counters. List supports
// the "name=<x>" search expression the engine-facing services use.
type fakeService struct {
	mu       sync.Mutex
	entities map[string]testEntity
	nextID   int

	addCalls    int
	updateCalls int
	removeCalls int
	actionCalls []string

	// onAction mutates the stored entity when an action is issued, standing
	// in for the asynchronous transitions a real collection performs.
	onAction func(e *testEntity, name string)
}

func newFakeService(seed ...testEntity) *fakeService {
	svc := &fakeService{entities: map[string]testEntity{}}
	for _, e := range seed {
		svc.entities[e.ID] = e
	}
	return svc
}

func (s *fakeService) Get(ctx context.Context, id string) (*testEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *fakeService) List(ctx context.Context, search string) ([]testEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []testEntity
	for _, e := range s.entities {
		if search == "" || e.Name == strings.TrimPrefix(search, "name=") {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeService) Add(ctx context.Context, entity *testEntity) (*testEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addCalls++
	s.nextID++
	created := *entity
	created.ID = fmt.Sprintf("id-%d", s.nextID)
	s.entities[created.ID] = created
	return &created, nil
}

func (s *fakeService) Update(ctx context.Context, id string, entity *testEntity) (*testEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	updated := *entity
	updated.ID = id
	s.entities[id] = updated
	return &updated, nil
}

func (s *fakeService) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeCalls++
	delete(s.entities, id)
	return nil
}

func (s *fakeService) Action(ctx context.Context, id, name string, args map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actionCalls = append(s.actionCalls, name)
	if s.onAction != nil {
		e := s.entities[id]
		s.onAction(&e, name)
		s.entities[id] = e
	}
	return nil
}

func (s *fakeService) mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCalls + s.updateCalls + s.removeCalls + len(s.actionCalls)
}

type desired struct {
	Name    string
	Comment string
}

func newReconciler(svc *fakeService, spec desired, opts reconcile.Options) *reconcile.Reconciler[testEntity] {
	return &reconcile.Reconciler[testEntity]{
		Kind:    "widget",
		Service: svc,
		Name:    spec.Name,
		Build: func() (*testEntity, error) {
			return &testEntity{Name: spec.Name, Comment: spec.Comment}, nil
		},
		UpdateCheck: func(actual *testEntity) bool {
			// Empty comment means don't-care.
			return spec.Comment == "" || spec.Comment == actual.Comment
		},
		Opts: opts,
		Log:  zerolog.Nop(),
	}
}

func TestCreateIsIdempotent(t *testing.T) {
	svc := newFakeService()
	spec := desired{Name: "w1", Comment: "hello"}

	first, err := newReconciler(svc, spec, reconcile.Options{}).Create(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 1, svc.addCalls)

	second, err := newReconciler(svc, spec, reconcile.Options{}).Create(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, svc.mutations(), "second run must not issue any mutating call")
}

func TestCreateUpdatesOnDrift(t *testing.T) {
	svc := newFakeService(testEntity{ID: "e1", Name: "w1", Comment: "old"})

	result, err := newReconciler(svc, desired{Name: "w1", Comment: "new"}, reconcile.Options{}).
		Create(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, 1, svc.updateCalls)
	assert.Equal(t, 0, svc.addCalls)
	assert.Equal(t, "new", svc.entities["e1"].Comment)
}

func TestUnsetFieldsAreDontCare(t *testing.T) {
	svc := newFakeService(testEntity{ID: "e1", Name: "w1", Comment: "whatever"})

	result, err := newReconciler(svc, desired{Name: "w1"}, reconcile.Options{}).
		Create(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, 0, svc.mutations())
	assert.Equal(t, "whatever", svc.entities["e1"].Comment)
}

func TestCheckModeNeverMutates(t *testing.T) {
	opts := reconcile.Options{CheckMode: true}

	t.Run("create", func(t *testing.T) {
		svc := newFakeService()
		result, err := newReconciler(svc, desired{Name: "w1", Comment: "c"}, opts).
			Create(context.Background(), nil)
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, 0, svc.mutations())
		require.NotNil(t, result.Entity)
		assert.Equal(t, "w1", result.Entity.Name)
	})

	t.Run("update", func(t *testing.T) {
		svc := newFakeService(testEntity{ID: "e1", Name: "w1", Comment: "old"})
		result, err := newReconciler(svc, desired{Name: "w1", Comment: "new"}, opts).
			Create(context.Background(), nil)
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, 0, svc.mutations())
		assert.Equal(t, "old", svc.entities["e1"].Comment)
	})

	t.Run("remove", func(t *testing.T) {
		svc := newFakeService(testEntity{ID: "e1", Name: "w1"})
		result, err := newReconciler(svc, desired{Name: "w1"}, opts).Remove(context.Background())
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, 0, svc.mutations())
		assert.Contains(t, svc.entities, "e1")
	})

	t.Run("action", func(t *testing.T) {
		svc := newFakeService(testEntity{ID: "e1", Name: "w1", Status: "up"})
		result, err := newReconciler(svc, desired{Name: "w1"}, opts).
			Action(context.Background(), "deactivate", reconcile.ActionOptions[testEntity]{})
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, 0, svc.mutations())
	})
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	svc := newFakeService()

	result, err := newReconciler(svc, desired{Name: "gone"}, reconcile.Options{}).
		Remove(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, 0, svc.mutations())
}

func TestRemoveRunsPreRemoveHook(t *testing.T) {
	svc := newFakeService(testEntity{ID: "e1", Name: "w1", Status: "up"})
	svc.onAction = func(e *testEntity, name string) {
		if name == "deactivate" {
			e.Status = "maintenance"
		}
	}

	rec := newReconciler(svc, desired{Name: "w1"}, reconcile.Options{})
	rec.PreRemove = func(ctx context.Context, actual *testEntity) error {
		return svc.Action(ctx, actual.ID, "deactivate", nil)
	}

	result, err := rec.Remove(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, []string{"deactivate"}, svc.actionCalls)
	assert.NotContains(t, svc.entities, "e1")
}

func TestResolveAmbiguousNameFails(t *testing.T) {
	// Same name in two directory namespaces; without a namespace the spec is
	// ambiguous and must not pick one arbitrarily.
	svc := newFakeService(
		testEntity{ID: "e1", Name: "admins", Namespace: "dc=a"},
		testEntity{ID: "e2", Name: "admins", Namespace: "dc=b"},
	)

	_, err := newReconciler(svc, desired{Name: "admins"}, reconcile.Options{}).
		Create(context.Background(), nil)
	require.Error(t, err)

	var ambiguous *reconcile.AmbiguousError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, 2, ambiguous.Matches)
	assert.Equal(t, 0, svc.mutations())
}

func TestResolveMatchDisambiguates(t *testing.T) {
	svc := newFakeService(
		testEntity{ID: "e1", Name: "admins", Namespace: "dc=a"},
		testEntity{ID: "e2", Name: "admins", Namespace: "dc=b"},
	)

	rec := newReconciler(svc, desired{Name: "admins"}, reconcile.Options{})
	rec.Match = func(e *testEntity) bool { return e.Namespace == "dc=b" }

	entity, err := rec.Resolve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, entity)
	assert.Equal(t, "e2", entity.ID)
}

func TestResolveByIDSkipsSearch(t *testing.T) {
	svc := newFakeService(testEntity{ID: "e7", Name: "w1"})

	rec := newReconciler(svc, desired{Name: "other-name"}, reconcile.Options{})
	rec.ID = "e7"

	entity, err := rec.Resolve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, entity)
	assert.Equal(t, "w1", entity.Name)
}

func TestActionGatedByCondition(t *testing.T) {
	svc := newFakeService(testEntity{ID: "e1", Name: "w1", Status: "maintenance"})

	notInMaintenance := reconcile.Condition[testEntity]{
		Name: "status!=maintenance",
		Test: func(e *testEntity) bool { return e != nil && e.Status != "maintenance" },
	}

	result, err := newReconciler(svc, desired{Name: "w1"}, reconcile.Options{}).
		Action(context.Background(), "deactivate", reconcile.ActionOptions[testEntity]{When: &notInMaintenance})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Empty(t, svc.actionCalls)
}

func TestActionOnMissingEntityFails(t *testing.T) {
	svc := newFakeService()

	_, err := newReconciler(svc, desired{Name: "ghost"}, reconcile.Options{}).
		Action(context.Background(), "activate", reconcile.ActionOptions[testEntity]{})
	require.Error(t, err)

	var notFound *reconcile.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.Name)
}

func TestActionWaitsForCondition(t *testing.T) {
	svc := newFakeService(testEntity{ID: "e1", Name: "w1", Status: "up"})
	svc.onAction = func(e *testEntity, name string) { e.Status = "maintenance" }

	inMaintenance := reconcile.Condition[testEntity]{
		Name: "status==maintenance",
		Test: func(e *testEntity) bool { return e != nil && e.Status == "maintenance" },
	}

	rec := newReconciler(svc, desired{Name: "w1"}, reconcile.Options{
		Wait:         true,
		Timeout:      time.Second,
		PollInterval: 10 * time.Millisecond,
	})
	result, err := rec.Action(context.Background(), "deactivate", reconcile.ActionOptions[testEntity]{
		WaitFor: &inMaintenance,
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	require.NotNil(t, result.Entity)
	assert.Equal(t, "maintenance", result.Entity.Status)
}

// Full lifecycle in one pass: create, converge, drift, correct, remove.
func TestLifecycleConvergence(t *testing.T) {
	svc := newFakeService()
	ctx := context.Background()

	created, err := newReconciler(svc, desired{Name: "prod", Comment: "v1"}, reconcile.Options{}).Create(ctx, nil)
	require.NoError(t, err)
	assert.True(t, created.Changed)

	unchanged, err := newReconciler(svc, desired{Name: "prod", Comment: "v1"}, reconcile.Options{}).Create(ctx, nil)
	require.NoError(t, err)
	assert.False(t, unchanged.Changed)

	drifted, err := newReconciler(svc, desired{Name: "prod", Comment: "v2"}, reconcile.Options{}).Create(ctx, nil)
	require.NoError(t, err)
	assert.True(t, drifted.Changed)
	assert.Equal(t, created.ID, drifted.ID)

	removed, err := newReconciler(svc, desired{Name: "prod"}, reconcile.Options{}).Remove(ctx)
	require.NoError(t, err)
	assert.True(t, removed.Changed)

	again, err := newReconciler(svc, desired{Name: "prod"}, reconcile.Options{}).Remove(ctx)
	require.NoError(t, err)
	assert.False(t, again.Changed)

	assert.Equal(t, 1, svc.addCalls)
	assert.Equal(t, 1, svc.updateCalls)
	assert.Equal(t, 1, svc.removeCalls)
}
