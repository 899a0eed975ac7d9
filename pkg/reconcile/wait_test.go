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
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtops/ovirt-apply/pkg/reconcile"
)

func TestWaitForReturnsOnceConditionHolds(t *testing.T) {
	var polls atomic.Int32
	fetch := func(ctx context.Context) (*testEntity, error) {
		n := polls.Add(1)
		status := "locked"
		if n >= 3 {
			status = "ok"
		}
		return &testEntity{ID: "e1", Status: status}, nil
	}

	ok := reconcile.Condition[testEntity]{
		Name: "status==ok",
		Test: func(e *testEntity) bool { return e != nil && e.Status == "ok" },
	}

	entity, err := reconcile.WaitFor(context.Background(), "widget", fetch, ok, time.Second, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "ok", entity.Status)
	assert.EqualValues(t, 3, polls.Load())
}

// A condition that never holds must fail shortly after the timeout: with a
// 2s timeout and 1s polls the call returns between 2s and roughly 3s, never
// earlier and never unbounded.
func TestWaitForTimeoutIsBounded(t *testing.T) {
	fetch := func(ctx context.Context) (*testEntity, error) {
		return &testEntity{ID: "e1", Status: "locked"}, nil
	}
	never := reconcile.Condition[testEntity]{
		Name: "status==ok",
		Test: func(e *testEntity) bool { return false },
	}

	start := time.Now()
	_, err := reconcile.WaitFor(context.Background(), "widget", fetch, never, 2*time.Second, time.Second)
	elapsed := time.Since(start)

	var timeoutErr *reconcile.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "status==ok", timeoutErr.Condition)
	assert.Equal(t, 2*time.Second, timeoutErr.Timeout)

	assert.GreaterOrEqual(t, elapsed, 2*time.Second)
	assert.Less(t, elapsed, 3500*time.Millisecond)
}

func TestWaitForAbsent(t *testing.T) {
	var polls atomic.Int32
	fetch := func(ctx context.Context) (*testEntity, error) {
		if polls.Add(1) >= 2 {
			return nil, nil
		}
		return &testEntity{ID: "e1"}, nil
	}

	entity, err := reconcile.WaitFor(context.Background(), "widget", fetch,
		reconcile.Absent[testEntity](), time.Second, time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, entity)
}

func TestWaitForPropagatesFetchError(t *testing.T) {
	boom := errors.New("transport down")
	fetch := func(ctx context.Context) (*testEntity, error) { return nil, boom }

	_, err := reconcile.WaitFor(context.Background(), "widget", fetch,
		reconcile.Present[testEntity](), time.Second, time.Millisecond)
	require.ErrorIs(t, err, boom)
}

func TestWaitForStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(ctx context.Context) (*testEntity, error) {
		return &testEntity{ID: "e1", Status: "locked"}, nil
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := reconcile.WaitFor(ctx, "widget", fetch,
		reconcile.Condition[testEntity]{Name: "never", Test: func(*testEntity) bool { return false }},
		time.Minute, 10*time.Millisecond)
	require.ErrorIs(t, err, context.Canceled)
}
