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

package host_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitorsalgado/mocha/v3"
	"github.com/vitorsalgado/mocha/v3/expect"
	"github.com/vitorsalgado/mocha/v3/reply"
	"gopkg.in/yaml.v3"

	"github.com/virtops/ovirt-apply/pkg/client"
	"github.com/virtops/ovirt-apply/pkg/reconcile"
	"github.com/virtops/ovirt-apply/pkg/resources/host"
)

func newTestClient(t *testing.T, mockServer *mocha.Mocha) *client.Client {
	t.Helper()
	cl, err := client.New(client.Options{URL: mockServer.URL(), Token: "tok"})
	require.NoError(t, err)
	return cl
}

func hostSpec(t *testing.T, body string) *yaml.Node {
	t.Helper()
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(body), &node))
	return &node
}

func TestMaintenanceDeactivatesRunningHost(t *testing.T) {
	mockServer := mocha.New(t)
	mockServer.Start()
	defer func() { _ = mockServer.Close() }()

	mockServer.AddMocks(
		mocha.Get(expect.URLPath("/api/hosts")).
			Reply(reply.OK().BodyString(`{"host": [{"id": "h1", "name": "node01", "status": "up"}]}`)),
	).Enable()
	deactivate := mockServer.AddMocks(
		mocha.Post(expect.URLPath("/api/hosts/h1/deactivate")).
			Reply(reply.OK().BodyString(`{}`)),
	)
	deactivate.Enable()

	outcome, err := host.Apply(context.Background(), newTestClient(t, mockServer),
		hostSpec(t, "name: node01\n"), "maintenance", reconcile.Options{})
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.True(t, deactivate.Called())
}

func TestMaintenanceIsIdempotent(t *testing.T) {
	mockServer := mocha.New(t)
	mockServer.Start()
	defer func() { _ = mockServer.Close() }()

	// Already in maintenance: the deactivate route is not mocked, so issuing
	// it would fail the apply.
	mockServer.AddMocks(
		mocha.Get(expect.URLPath("/api/hosts")).
			Reply(reply.OK().BodyString(`{"host": [{"id": "h1", "name": "node01", "status": "maintenance"}]}`)),
	).Enable()

	outcome, err := host.Apply(context.Background(), newTestClient(t, mockServer),
		hostSpec(t, "name: node01\n"), "maintenance", reconcile.Options{})
	require.NoError(t, err)
	assert.False(t, outcome.Changed)
}

func TestUpgradedSkipsHostWithoutPendingUpdate(t *testing.T) {
	mockServer := mocha.New(t)
	mockServer.Start()
	defer func() { _ = mockServer.Close() }()

	mockServer.AddMocks(
		mocha.Get(expect.URLPath("/api/hosts")).
			Reply(reply.OK().BodyString(`{"host": [{
				"id": "h1", "name": "node01", "status": "up", "update_available": false
			}]}`)),
	).Enable()

	outcome, err := host.Apply(context.Background(), newTestClient(t, mockServer),
		hostSpec(t, "name: node01\n"), "upgraded", reconcile.Options{})
	require.NoError(t, err)
	assert.False(t, outcome.Changed)
}

func TestUpgradedIssuesUpgrade(t *testing.T) {
	mockServer := mocha.New(t)
	mockServer.Start()
	defer func() { _ = mockServer.Close() }()

	mockServer.AddMocks(
		mocha.Get(expect.URLPath("/api/hosts")).
			Reply(reply.OK().BodyString(`{"host": [{
				"id": "h1", "name": "node01", "status": "up", "update_available": true
			}]}`)),
	).Enable()
	upgrade := mockServer.AddMocks(
		mocha.Post(expect.URLPath("/api/hosts/h1/upgrade")).
			Reply(reply.OK().BodyString(`{}`)),
	)
	upgrade.Enable()

	outcome, err := host.Apply(context.Background(), newTestClient(t, mockServer),
		hostSpec(t, "name: node01\n"), "upgraded", reconcile.Options{})
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.True(t, upgrade.Called())
}

func TestAbsentDeactivatesBeforeRemoval(t *testing.T) {
	mockServer := mocha.New(t)
	mockServer.Start()
	defer func() { _ = mockServer.Close() }()

	mockServer.AddMocks(
		mocha.Get(expect.URLPath("/api/hosts")).
			Reply(reply.OK().BodyString(`{"host": [{"id": "h1", "name": "node01", "status": "up"}]}`)),
	).Enable()
	deactivate := mockServer.AddMocks(
		mocha.Post(expect.URLPath("/api/hosts/h1/deactivate")).
			Reply(reply.OK().BodyString(`{}`)),
	)
	deactivate.Enable()
	remove := mockServer.AddMocks(
		mocha.Delete(expect.URLPath("/api/hosts/h1")).Reply(reply.OK()),
	)
	remove.Enable()

	outcome, err := host.Apply(context.Background(), newTestClient(t, mockServer),
		hostSpec(t, "name: node01\n"), "absent", reconcile.Options{})
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.True(t, deactivate.Called())
	assert.True(t, remove.Called())
}

func TestAbsentMissingHostIsNoop(t *testing.T) {
	mockServer := mocha.New(t)
	mockServer.Start()
	defer func() { _ = mockServer.Close() }()

	mockServer.AddMocks(
		mocha.Get(expect.URLPath("/api/hosts")).
			Reply(reply.OK().BodyString(`{"host": []}`)),
	).Enable()

	outcome, err := host.Apply(context.Background(), newTestClient(t, mockServer),
		hostSpec(t, "name: gone\n"), "absent", reconcile.Options{})
	require.NoError(t, err)
	assert.False(t, outcome.Changed)
}

func TestPresentEnrollsHostWithPublicKey(t *testing.T) {
	mockServer := mocha.New(t)
	mockServer.Start()
	defer func() { _ = mockServer.Close() }()

	mockServer.AddMocks(
		mocha.Get(expect.URLPath("/api/hosts")).
			Reply(reply.OK().BodyString(`{"host": []}`)),
	).Enable()
	enroll := mockServer.AddMocks(
		mocha.Post(expect.URLPath("/api/hosts")).
			Reply(reply.Created().BodyString(`{
				"id": "h2", "name": "node02", "status": "installing"
			}`)),
	)
	enroll.Enable()

	outcome, err := host.Apply(context.Background(), newTestClient(t, mockServer),
		hostSpec(t, `
name: node02
address: 10.0.0.12
cluster: prod
public_key: true
`), "present", reconcile.Options{})
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.Equal(t, "h2", outcome.ID)
	assert.True(t, enroll.Called())
}
