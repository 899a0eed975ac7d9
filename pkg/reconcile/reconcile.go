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

// Package reconcile implements the idempotent reconciliation engine: given a
// desired resource description and a remote CRUD+action service, it issues
// the minimal remote operation that converges remote state to the desired
// state, waits for asynchronous transitions, and reports whether anything
// changed.
//
// The engine holds no state between invocations. Each call re-derives the
// remote state fresh, issues at most one mutating call before handing off to
// the waiter, and never retries: the first remote failure propagates to the
// caller verbatim.
package reconcile

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Entity is the engine's view of a remote resource instance.
type Entity interface {
	EntityID() string
	EntityName() string
}

// Service is the remote capability surface the engine consumes. It is
// transport-agnostic; a missing entity is reported by Get as (nil, nil).
type Service[E Entity] interface {
	Get(ctx context.Context, id string) (*E, error)
	List(ctx context.Context, search string) ([]E, error)
	Add(ctx context.Context, entity *E) (*E, error)
	Update(ctx context.Context, id string, entity *E) (*E, error)
	Remove(ctx context.Context, id string) error
	Action(ctx context.Context, id, name string, args map[string]any) error
}

// Options are the caller-facing run parameters shared by every operation.
// Wait=false skips all polling: the mutating call is issued and convergence
// is left unobserved.
type Options struct {
	CheckMode    bool
	Wait         bool
	Timeout      time.Duration
	PollInterval time.Duration
}

const (
	defaultTimeout      = 180 * time.Second
	defaultPollInterval = 3 * time.Second
)

func (o Options) withDefaults() Options {
	if o.Timeout == 0 {
		o.Timeout = defaultTimeout
	}
	if o.PollInterval == 0 {
		o.PollInterval = defaultPollInterval
	}
	return o
}

// Result reports the outcome of one reconciliation operation. Changed=false
// means the remote already matched the desired state and no mutating call
// was issued.
type Result[E Entity] struct {
	Changed bool
	ID      string
	Entity  *E
}

// Outcome is the non-generic view of a Result handed to callers that do not
// know the entity type, such as the CLI.
type Outcome struct {
	Changed bool
	ID      string
	Entity  any
}

// Outcome converts the result for kind-agnostic callers.
func (r Result[E]) Outcome() Outcome {
	out := Outcome{Changed: r.Changed, ID: r.ID}
	if r.Entity != nil {
		out.Entity = *r.Entity
	}
	return out
}

// Reconciler drives one remote entity toward a desired state. Builder,
// comparator and hooks are injected per resource kind; the engine never
// inspects entity internals beyond the Entity interface.
type Reconciler[E Entity] struct {
	// Kind names the resource kind in logs and errors.
	Kind string

	// Service is the remote collection the entity lives in.
	Service Service[E]

	// Build maps the desired spec to an entity representation. It must be
	// pure: no remote calls, no side effects.
	Build func() (*E, error)

	// UpdateCheck reports whether the existing entity already satisfies the
	// desired spec. It must treat unset desired fields as don't-care so that
	// repeated runs converge to Changed=false. A nil UpdateCheck means any
	// existing entity is accepted as-is.
	UpdateCheck func(actual *E) bool

	// PreRemove runs before the remove call, e.g. to quiesce the entity.
	PreRemove func(ctx context.Context, actual *E) error

	// PostUpdate runs after a successful update call and may issue one
	// follow-up action; it reports whether it changed anything.
	PostUpdate func(ctx context.Context, actual *E) (bool, error)

	// ID short-circuits resolution when the caller already knows the
	// entity id. Otherwise SearchFilter (or "name=<Name>") locates it, and
	// Match filters candidates the search cannot distinguish.
	ID           string
	Name         string
	SearchFilter string
	Match        func(entity *E) bool

	// ListAll disables server-side search for collections that do not
	// support it; candidates are then filtered only through Match.
	ListAll bool

	Opts Options
	Log  zerolog.Logger
}

// ActionOptions parameterizes Reconciler.Action.
type ActionOptions[E Entity] struct {
	// Entity skips resolution when the caller already holds the entity.
	Entity *E

	// When gates the action: when it evaluates false the action is skipped
	// and Changed=false is reported. Nil means always run.
	When *Condition[E]

	// WaitFor gates completion of the asynchronous transition the action
	// starts. Nil means return right after the action call.
	WaitFor *Condition[E]

	// Post runs after the action call, before the wait.
	Post func(ctx context.Context, entity *E) error

	// Args become the action request body.
	Args map[string]any
}

// Resolve locates the existing remote entity, or reports (nil, nil) when it
// does not exist. More than one candidate after Match filtering is fatal:
// the engine never silently picks one.
func (r *Reconciler[E]) Resolve(ctx context.Context) (*E, error) {
	if r.ID != "" {
		return r.Service.Get(ctx, r.ID)
	}

	var filter string
	if !r.ListAll {
		filter = r.SearchFilter
		if filter == "" && r.Name != "" {
			filter = "name=" + r.Name
		}
	}

	entities, err := r.Service.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	candidates := entities[:0:0]
	for i := range entities {
		if r.Match == nil || r.Match(&entities[i]) {
			candidates = append(candidates, entities[i])
		}
	}

	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		return &candidates[0], nil
	default:
		return nil, &AmbiguousError{Kind: r.Kind, Query: filter, Matches: len(candidates)}
	}
}

// Create converges the remote entity to the desired spec: it adds the entity
// when absent, updates it when the comparator reports drift, and does
// nothing when it already matches. A non-nil resultCond is awaited after any
// mutation.
func (r *Reconciler[E]) Create(ctx context.Context, resultCond *Condition[E]) (Result[E], error) {
	opts := r.Opts.withDefaults()

	actual, err := r.Resolve(ctx)
	if err != nil {
		return Result[E]{}, err
	}

	result := Result[E]{Entity: actual}

	switch {
	case actual == nil:
		desired, err := r.Build()
		if err != nil {
			return result, err
		}
		result.Changed = true
		if opts.CheckMode {
			r.Log.Info().Str("kind", r.Kind).Str("name", r.Name).Msg("Would create (check mode)")
			result.Entity = desired
			break
		}
		created, err := r.Service.Add(ctx, desired)
		if err != nil {
			return result, err
		}
		r.Log.Info().Str("kind", r.Kind).Str("name", r.Name).Str("id", (*created).EntityID()).Msg("Created")
		result.Entity = created

	case r.UpdateCheck == nil || r.UpdateCheck(actual):
		r.Log.Debug().Str("kind", r.Kind).Str("id", (*actual).EntityID()).Msg("Already converged")

	default:
		desired, err := r.Build()
		if err != nil {
			return result, err
		}
		result.Changed = true
		if opts.CheckMode {
			r.Log.Info().Str("kind", r.Kind).Str("id", (*actual).EntityID()).Msg("Would update (check mode)")
			break
		}
		updated, err := r.Service.Update(ctx, (*actual).EntityID(), desired)
		if err != nil {
			return result, err
		}
		r.Log.Info().Str("kind", r.Kind).Str("id", (*updated).EntityID()).Msg("Updated")
		result.Entity = updated
		if r.PostUpdate != nil {
			hookChanged, err := r.PostUpdate(ctx, updated)
			if err != nil {
				return result, err
			}
			result.Changed = result.Changed || hookChanged
		}
	}

	if result.Entity != nil {
		result.ID = (*result.Entity).EntityID()
	}

	if result.Changed && !opts.CheckMode && opts.Wait && resultCond != nil && result.ID != "" {
		final, err := WaitFor(ctx, r.Kind, r.fetchByID(result.ID), *resultCond, opts.Timeout, opts.PollInterval)
		if err != nil {
			return result, err
		}
		result.Entity = final
	}

	return result, nil
}

// Remove deletes the remote entity. An absent entity is already converged:
// Changed=false, no error, no remote mutation.
func (r *Reconciler[E]) Remove(ctx context.Context) (Result[E], error) {
	opts := r.Opts.withDefaults()

	actual, err := r.Resolve(ctx)
	if err != nil {
		return Result[E]{}, err
	}
	if actual == nil {
		r.Log.Debug().Str("kind", r.Kind).Str("name", r.Name).Msg("Already absent")
		return Result[E]{}, nil
	}

	result := Result[E]{Changed: true, ID: (*actual).EntityID(), Entity: actual}
	if opts.CheckMode {
		r.Log.Info().Str("kind", r.Kind).Str("id", result.ID).Msg("Would remove (check mode)")
		return result, nil
	}

	if r.PreRemove != nil {
		if err := r.PreRemove(ctx, actual); err != nil {
			return result, err
		}
	}

	if err := r.Service.Remove(ctx, result.ID); err != nil {
		return result, err
	}
	r.Log.Info().Str("kind", r.Kind).Str("id", result.ID).Msg("Removed")

	if opts.Wait {
		if _, err := WaitFor(ctx, r.Kind, r.fetchByID(result.ID), Absent[E](), opts.Timeout, opts.PollInterval); err != nil {
			return result, err
		}
	}
	return result, nil
}

// Action invokes a named asynchronous action on the entity. The entity must
// exist; the When condition decides whether the action is needed at all,
// which keeps action states idempotent (e.g. deactivating a host already in
// maintenance is a no-op).
func (r *Reconciler[E]) Action(ctx context.Context, name string, actionOpts ActionOptions[E]) (Result[E], error) {
	opts := r.Opts.withDefaults()

	actual := actionOpts.Entity
	if actual == nil {
		var err error
		if actual, err = r.Resolve(ctx); err != nil {
			return Result[E]{}, err
		}
		if actual == nil {
			return Result[E]{}, &NotFoundError{Kind: r.Kind, Name: r.Name}
		}
	}

	result := Result[E]{ID: (*actual).EntityID(), Entity: actual}

	if actionOpts.When != nil && !actionOpts.When.Test(actual) {
		r.Log.Debug().Str("kind", r.Kind).Str("id", result.ID).Str("action", name).
			Str("condition", actionOpts.When.Name).Msg("Action not needed")
		return result, nil
	}

	result.Changed = true
	if opts.CheckMode {
		r.Log.Info().Str("kind", r.Kind).Str("id", result.ID).Str("action", name).Msg("Would run action (check mode)")
		return result, nil
	}

	if err := r.Service.Action(ctx, result.ID, name, actionOpts.Args); err != nil {
		return result, err
	}
	r.Log.Info().Str("kind", r.Kind).Str("id", result.ID).Str("action", name).Msg("Action issued")

	if actionOpts.Post != nil {
		if err := actionOpts.Post(ctx, actual); err != nil {
			return result, err
		}
	}

	if opts.Wait && actionOpts.WaitFor != nil {
		final, err := WaitFor(ctx, r.Kind, r.fetchByID(result.ID), *actionOpts.WaitFor, opts.Timeout, opts.PollInterval)
		if err != nil {
			return result, err
		}
		result.Entity = final
	}
	return result, nil
}

func (r *Reconciler[E]) fetchByID(id string) func(ctx context.Context) (*E, error) {
	return func(ctx context.Context) (*E, error) {
		return r.Service.Get(ctx, id)
	}
}
