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

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issued = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestHandles(t *testing.T) {
	a := Anonymous()
	assert.Equal(t, MechAnonymous, a.Mechanism())
	assert.False(t, a.SupportsCBS())
	assert.Nil(t, a.TokenProvider())

	p := Plain("user", "pass")
	assert.Equal(t, MechPlain, p.Mechanism())
	assert.False(t, p.SupportsCBS())
	u, pw, ok := Credentials(p)
	assert.True(t, ok)
	assert.Equal(t, "user", u)
	assert.Equal(t, "pass", pw)
	_, _, ok = Credentials(a)
	assert.False(t, ok)

	sas := NewSASProvider("root", []byte("k"), time.Hour)
	c := CBS("amqp://host/q", sas)
	assert.Equal(t, MechCBS, c.Mechanism())
	assert.True(t, c.SupportsCBS())
	assert.Equal(t, "amqp://host/q", c.Audience())
	assert.Same(t, sas, c.TokenProvider())
}

func TestSAS(t *testing.T) {
	key := []byte("secret")
	p := NewSASProvider("root", key, time.Hour)
	p.now = func() time.Time { return issued }

	tok, err := p.Token(context.Background(), "amqp://Host/Queue")
	require.NoError(t, err)
	assert.Equal(t, SASTokenType, tok.Type)
	assert.Equal(t, issued.Add(time.Hour), tok.Expires)

	assert.NoError(t, VerifySAS(tok.Value, "amqp://host/queue", "root", key, issued))

	for name, err := range map[string]error{
		"expired":      VerifySAS(tok.Value, "amqp://host/queue", "root", key, issued.Add(2*time.Hour)),
		"wrong key":    VerifySAS(tok.Value, "amqp://host/queue", "root", []byte("other"), issued),
		"wrong name":   VerifySAS(tok.Value, "amqp://host/queue", "admin", key, issued),
		"wrong target": VerifySAS(tok.Value, "amqp://host/other", "root", key, issued),
		"no prefix":    VerifySAS("sr=x", "amqp://host/queue", "root", key, issued),
	} {
		assert.ErrorIs(t, err, ErrInvalidSignature, name)
	}
}

func TestSASRequiresKey(t *testing.T) {
	_, err := NewSASProvider("", nil, time.Hour).Token(context.Background(), "a")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewSASProvider("root", []byte("k"), time.Hour).Token(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJWT(t *testing.T) {
	key := []byte("secret-key")
	p := NewJWTProvider("linkdemo", "client-1", key, time.Hour)

	tok, err := p.Token(context.Background(), "amqp://host/q")
	require.NoError(t, err)
	assert.Equal(t, JWTTokenType, tok.Type)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Expires, time.Minute)

	claims, err := VerifyJWT(tok.Value, "amqp://host/q", "linkdemo", key)
	require.NoError(t, err)
	assert.Equal(t, "client-1", claims.Subject)

	_, err = VerifyJWT(tok.Value, "amqp://host/other", "linkdemo", key)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidAudience)
	_, err = VerifyJWT(tok.Value, "amqp://host/q", "linkdemo", []byte("wrong"))
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTExpired(t *testing.T) {
	key := []byte("secret-key")
	p := NewJWTProvider("linkdemo", "client-1", key, time.Minute)
	p.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, err := p.Token(context.Background(), "aud")
	require.NoError(t, err)

	_, err = VerifyJWT(tok.Value, "aud", "linkdemo", key)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		p    *JWTProvider
	}{
		{"empty issuer", NewJWTProvider("", "s", []byte("k"), time.Hour)},
		{"zero ttl", NewJWTProvider("iss", "s", []byte("k"), 0)},
		{"empty key", NewJWTProvider("iss", "s", nil, time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.p.Token(context.Background(), "aud")
			assert.Error(t, err)
		})
	}
}
