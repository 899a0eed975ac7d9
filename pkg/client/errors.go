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

package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a request the engine refused. Reason and Detail carry the
// engine's fault text verbatim; nothing here reinterprets it.
type APIError struct {
	Status int
	Reason string
	Detail string
}

func (e *APIError) Error() string {
	msg := e.Reason
	if e.Detail != "" {
		if msg != "" {
			msg += ": "
		}
		msg += e.Detail
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("engine rejected request (status %d): %s", e.Status, msg)
}

// IsNotFound reports whether the engine answered 404 for the request.
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// ConnError is a transport or session failure: the request may never have
// reached the engine.
type ConnError struct {
	Op  string
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("engine connection failed: %s: %v", e.Op, e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// newAPIError decodes an engine fault body into an APIError. The engine
// answers either {"fault": {...}} or a bare fault object depending on the
// endpoint; unparseable bodies are kept as raw detail.
func newAPIError(status int, body []byte) *APIError {
	type fault struct {
		Reason string `json:"reason"`
		Detail string `json:"detail"`
	}
	var wrapped struct {
		Fault fault `json:"fault"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Fault != (fault{}) {
		return &APIError{Status: status, Reason: wrapped.Fault.Reason, Detail: wrapped.Fault.Detail}
	}
	var bare fault
	if err := json.Unmarshal(body, &bare); err == nil && bare != (fault{}) {
		return &APIError{Status: status, Reason: bare.Reason, Detail: bare.Detail}
	}
	return &APIError{Status: status, Detail: strings.TrimSpace(string(body))}
}
