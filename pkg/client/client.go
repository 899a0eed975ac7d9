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

// Package client provides the HTTP session to the oVirt engine REST API.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options configures a Client. URL points at the engine root, e.g.
// https://engine.example.com/ovirt-engine. Either Token or Username/Password
// must be set; a pre-issued token is used as-is and never exchanged.
type Options struct {
	URL      string
	Username string
	Password string
	Token    string
	Insecure bool
	CAFile   string
	Timeout  time.Duration
	Log      zerolog.Logger
}

// Client is an authenticated session against one oVirt engine. It is safe to
// share across reconciliations; Close must be called on every exit path.
type Client struct {
	opts       Options
	httpClient *http.Client
	token      string
	log        zerolog.Logger
}

// New builds a client from the given options. No network traffic happens
// until Authenticate or the first request.
func New(opts Options) (*Client, error) {
	if opts.URL == "" {
		return nil, &ConnError{Op: "configure", Err: fmt.Errorf("engine URL is required")}
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	tlsConfig := &tls.Config{InsecureSkipVerify: opts.Insecure}
	if opts.CAFile != "" {
		pem, err := os.ReadFile(opts.CAFile)
		if err != nil {
			return nil, &ConnError{Op: "read CA file", Err: err}
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, &ConnError{Op: "read CA file", Err: fmt.Errorf("no certificates found in %s", opts.CAFile)}
		}
		tlsConfig.RootCAs = pool
	}

	httpClient := &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: tlsConfig,
		},
	}

	return &Client{
		opts:       opts,
		httpClient: httpClient,
		token:      opts.Token,
		log:        opts.Log,
	}, nil
}

// Authenticate acquires an access token from the engine SSO endpoint using
// the configured username and password. It is a no-op when a token was
// supplied up front.
func (client *Client) Authenticate(ctx context.Context) error {
	if client.token != "" {
		return nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("scope", "ovirt-app-api")
	form.Set("username", client.opts.Username)
	form.Set("password", client.opts.Password)

	ssoURL := client.opts.URL + "/sso/oauth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ssoURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &ConnError{Op: "authenticate", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return &ConnError{Op: "authenticate", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnError{Op: "authenticate", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp.StatusCode, body)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return &ConnError{Op: "authenticate", Err: err}
	}
	if tokenResp.AccessToken == "" {
		return &ConnError{Op: "authenticate", Err: fmt.Errorf("engine returned no access token")}
	}

	client.token = tokenResp.AccessToken
	client.log.Debug().Str("url", client.opts.URL).Msg("Acquired engine access token")
	return nil
}

// Close releases the session. With revoke=false the token stays valid on the
// engine side; callers pass revoke=false by default so reconciliation runs
// never invalidate tokens shared with other tooling.
func (client *Client) Close(ctx context.Context, revoke bool) error {
	defer client.httpClient.CloseIdleConnections()

	if !revoke || client.token == "" {
		return nil
	}

	form := url.Values{}
	form.Set("token", client.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		client.opts.URL+"/services/sso-logout", strings.NewReader(form.Encode()))
	if err != nil {
		return &ConnError{Op: "logout", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return &ConnError{Op: "logout", Err: err}
	}
	_ = resp.Body.Close()
	client.token = ""
	return nil
}

// Get performs a GET request against the engine API.
func (client *Client) Get(ctx context.Context, path string, result any) error {
	return client.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request against the engine API.
func (client *Client) Post(ctx context.Context, path string, body any, result any) error {
	return client.do(ctx, http.MethodPost, path, body, result)
}

// Put performs a PUT request against the engine API.
func (client *Client) Put(ctx context.Context, path string, body any, result any) error {
	return client.do(ctx, http.MethodPut, path, body, result)
}

// Delete performs a DELETE request against the engine API.
func (client *Client) Delete(ctx context.Context, path string, result any) error {
	return client.do(ctx, http.MethodDelete, path, nil, result)
}

func (client *Client) do(ctx context.Context, method, path string, body any, result any) error {
	if err := client.Authenticate(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &ConnError{Op: "encode request", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	apiURL := client.opts.URL + "/api" + path
	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return &ConnError{Op: method + " " + path, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+client.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Version", "4")
	req.Header.Set("Correlation-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client.log.Debug().Str("method", method).Str("path", path).Msg("Engine API request")

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return &ConnError{Op: method + " " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnError{Op: method + " " + path, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, respBody)
	}
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &ConnError{Op: method + " " + path, Err: err}
		}
	}
	return nil
}

// EngineVersion returns the engine product version reported by the API root.
func (client *Client) EngineVersion(ctx context.Context) (semver.Version, error) {
	var root struct {
		ProductInfo struct {
			Version struct {
				FullVersion string `json:"full_version"`
			} `json:"version"`
		} `json:"product_info"`
	}
	if err := client.Get(ctx, "", &root); err != nil {
		return semver.Version{}, err
	}

	full := root.ProductInfo.Version.FullVersion
	// full_version carries a release suffix like 4.5.3.2-1.el8; semver wants
	// at most three dotted components.
	if i := strings.IndexByte(full, '-'); i >= 0 {
		full = full[:i]
	}
	if parts := strings.Split(full, "."); len(parts) > 3 {
		full = strings.Join(parts[:3], ".")
	}

	version, err := semver.ParseTolerant(full)
	if err != nil {
		return semver.Version{}, &ConnError{Op: "parse engine version", Err: err}
	}
	return version, nil
}

// CheckMinimum fails when the engine is older than the given version, which
// gates features not present on earlier engines.
func (client *Client) CheckMinimum(ctx context.Context, minimum string) error {
	want, err := semver.ParseTolerant(minimum)
	if err != nil {
		return &ConnError{Op: "parse minimum version", Err: err}
	}
	have, err := client.EngineVersion(ctx)
	if err != nil {
		return err
	}
	if have.LT(want) {
		return fmt.Errorf("engine version %s is older than required %s", have, want)
	}
	return nil
}
