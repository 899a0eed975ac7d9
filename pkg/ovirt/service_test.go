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

package ovirt_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitorsalgado/mocha/v3"
	"github.com/vitorsalgado/mocha/v3/expect"
	"github.com/vitorsalgado/mocha/v3/params"
	"github.com/vitorsalgado/mocha/v3/reply"

	"github.com/virtops/ovirt-apply/pkg/client"
	"github.com/virtops/ovirt-apply/pkg/ovirt"
)

func newTestClient(t *testing.T, mockServer *mocha.Mocha) *client.Client {
	t.Helper()
	cl, err := client.New(client.Options{URL: mockServer.URL(), Token: "tok"})
	require.NoError(t, err)
	return cl
}

func TestGetMissingEntityIsNil(t *testing.T) {
	mockServer := mocha.New(t)
	mockServer.Start()
	defer func() { _ = mockServer.Close() }()

	mockServer.AddMocks(
		mocha.Get(expect.URLPath("/api/clusters/nope")).
			ReplyFunction(func(r *http.Request, m reply.M, p params.P) (*reply.Response, error) {
				return &reply.Response{Status: http.StatusNotFound}, nil
			}),
	).Enable()

	svc := ovirt.NewClusterService(newTestClient(t, mockServer))
	cluster, err := svc.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, cluster)
}

func TestGetDecodesEntity(t *testing.T) {
	mockServer := mocha.New(t)
	mockServer.Start()
	defer func() { _ = mockServer.Close() }()

	mockServer.AddMocks(
		mocha.Get(expect.URLPath("/api/clusters/123")).
			Reply(reply.OK().BodyString(`{
				"id": "123",
				"name": "production",
				"cpu": {"type": "Intel Cascadelake Server Family", "architecture": "x86_64"}
			}`)),
	).Enable()

	svc := ovirt.NewClusterService(newTestClient(t, mockServer))
	cluster, err := svc.Get(context.Background(), "123")
	require.NoError(t, err)
	require.NotNil(t, cluster)
	assert.Equal(t, "123", cluster.EntityID())
	assert.Equal(t, "production", cluster.EntityName())
	require.NotNil(t, cluster.CPU)
	assert.Equal(t, "x86_64", *cluster.CPU.Architecture)
}

func TestListUnwrapsEnvelope(t *testing.T) {
	mockServer := mocha.New(t)
	mockServer.Start()
	defer func() { _ = mockServer.Close() }()

	mockServer.AddMocks(
		mocha.Get(expect.URLPath("/api/hosts")).
			Query("search", expect.ToEqual("name=node01")).
			Reply(reply.OK().BodyString(`{
				"host": [
					{"id": "h1", "name": "node01", "status": "up"}
				]
			}`)),
	).Enable()

	svc := ovirt.NewHostService(newTestClient(t, mockServer))
	hosts, err := svc.List(context.Background(), "name=node01")
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, "h1", hosts[0].ID)
	assert.Equal(t, ovirt.HostStatusUp, hosts[0].Status)
}

func TestListEmptyEnvelopeIsEmpty(t *testing.T) {
	mockServer := mocha.New(t)
	mockServer.Start()
	defer func() { _ = mockServer.Close() }()

	mockServer.AddMocks(
		mocha.Get(expect.URLPath("/api/datacenters")).
			Reply(reply.OK().BodyString(`{}`)),
	).Enable()

	svc := ovirt.NewDataCenterService(newTestClient(t, mockServer))
	dcs, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, dcs)
}

func TestAddReturnsAssignedID(t *testing.T) {
	mockServer := mocha.New(t)
	mockServer.Start()
	defer func() { _ = mockServer.Close() }()

	mockServer.AddMocks(
		mocha.Post(expect.URLPath("/api/clusters")).
			Reply(reply.Created().BodyString(`{"id": "new-1", "name": "edge"}`)),
	).Enable()

	svc := ovirt.NewClusterService(newTestClient(t, mockServer))
	created, err := svc.Add(context.Background(), &ovirt.Cluster{Name: "edge"})
	require.NoError(t, err)
	assert.Equal(t, "new-1", created.ID)
}

func TestActionPostsToActionPath(t *testing.T) {
	mockServer := mocha.New(t)
	mockServer.Start()
	defer func() { _ = mockServer.Close() }()

	deactivate := mockServer.AddMocks(
		mocha.Post(expect.URLPath("/api/hosts/h1/deactivate")).
			Reply(reply.OK().BodyString(`{}`)),
	)
	deactivate.Enable()

	svc := ovirt.NewHostService(newTestClient(t, mockServer))
	require.NoError(t, svc.Action(context.Background(), "h1", "deactivate", nil))
	assert.True(t, deactivate.Called())
}

func TestSnapshotServiceScopedToVM(t *testing.T) {
	mockServer := mocha.New(t)
	mockServer.Start()
	defer func() { _ = mockServer.Close() }()

	mockServer.AddMocks(
		mocha.Get(expect.URLPath("/api/vms/vm-9/snapshots")).
			Reply(reply.OK().BodyString(`{
				"snapshot": [
					{"id": "s1", "description": "before upgrade", "snapshot_status": "ok"}
				]
			}`)),
	).Enable()

	svc := ovirt.NewSnapshotService(newTestClient(t, mockServer), "vm-9")
	snaps, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "before upgrade", snaps[0].EntityName())
	assert.Equal(t, ovirt.SnapshotStatusOK, snaps[0].SnapshotStatus)
}

func TestRemoveFaultPassesThrough(t *testing.T) {
	mockServer := mocha.New(t)
	mockServer.Start()
	defer func() { _ = mockServer.Close() }()

	mockServer.AddMocks(
		mocha.Delete(expect.URLPath("/api/storagedomains/sd1")).
			ReplyFunction(func(r *http.Request, m reply.M, p params.P) (*reply.Response, error) {
				return &reply.Response{Status: http.StatusConflict}, nil
			}),
	).Enable()

	svc := ovirt.NewStorageDomainService(newTestClient(t, mockServer))
	err := svc.Remove(context.Background(), "sd1")
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}
