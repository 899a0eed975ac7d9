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
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

// FetchHostKey connects to a host's SSH port and returns the SHA256
// fingerprint of its host key. Used when enrolling hosts with public-key
// authentication so the engine can verify the host it deploys to.
//
// No authentication is attempted: the handshake is abandoned once the host
// key callback has run.
func FetchHostKey(ctx context.Context, address string, timeout time.Duration) (string, error) {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if !strings.Contains(address, ":") {
		address = net.JoinHostPort(address, "22")
	}

	var captured ssh.PublicKey
	sshConfig := &ssh.ClientConfig{
		User: "ovirt-apply",
		HostKeyCallback: func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			captured = key
			return nil
		},
		Timeout: timeout,
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return "", &ConnError{Op: "fetch host key from " + address, Err: err}
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, sshConfig)
	if err == nil {
		_ = ssh.NewClient(sshConn, chans, reqs).Close()
	} else {
		// The handshake fails at authentication, which is after the host key
		// callback. Only a missing key means the handshake never got that far.
		_ = conn.Close()
		if captured == nil {
			return "", &ConnError{Op: "fetch host key from " + address, Err: err}
		}
	}

	if captured == nil {
		return "", &ConnError{Op: "fetch host key from " + address, Err: fmt.Errorf("no host key presented")}
	}
	return ssh.FingerprintSHA256(captured), nil
}
