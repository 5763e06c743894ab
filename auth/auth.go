/*
Licensed to the Apache Software Foundation (ASF) under one
or more contributor license agreements.  See the NOTICE file
distributed with this work for additional information
regarding copyright ownership.  The ASF licenses this file
to you under the Apache License, Version 2.0 (the
"License"); you may not use this file except in compliance
with the License.  You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing,
software distributed under the License is distributed on an
"AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
KIND, either express or implied.  See the License for the
specific language governing permissions and limitations
under the License.
*/

/*
Package auth provides proton.AuthHandle implementations.

Anonymous and Plain authenticate with SASL only. CBS returns a handle that
authenticates by putting tokens to the peer's claims-based-security node;
the tokens come from a proton.TokenProvider such as SASProvider or
JWTProvider.
*/
package auth

import (
	"qpid.apache.org/linkengine/proton"
)

// SASL mechanism names.
const (
	MechAnonymous = "ANONYMOUS"
	MechPlain     = "PLAIN"
	MechCBS       = "MSSBCBS"
)

type handle struct {
	mech     string
	audience string
	provider proton.TokenProvider
	user     string
	password string
}

func (h *handle) Mechanism() string                   { return h.mech }
func (h *handle) SupportsCBS() bool                   { return h.provider != nil }
func (h *handle) Audience() string                    { return h.audience }
func (h *handle) TokenProvider() proton.TokenProvider { return h.provider }

// Anonymous returns a handle for SASL ANONYMOUS.
func Anonymous() proton.AuthHandle { return &handle{mech: MechAnonymous} }

// Plain returns a handle for SASL PLAIN with user and password.
func Plain(user, password string) proton.AuthHandle {
	return &handle{mech: MechPlain, user: user, password: password}
}

// Credentials returns the user and password of a Plain handle, ok is false
// for other handles.
func Credentials(h proton.AuthHandle) (user, password string, ok bool) {
	if x, is := h.(*handle); is && x.mech == MechPlain {
		return x.user, x.password, true
	}
	return "", "", false
}

// CBS returns a handle that puts tokens from p for audience.
func CBS(audience string, p proton.TokenProvider) proton.AuthHandle {
	return &handle{mech: MechCBS, audience: audience, provider: p}
}
