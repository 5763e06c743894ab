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
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"qpid.apache.org/linkengine/proton"
)

// SASTokenType is the CBS token type of shared access signatures.
const SASTokenType = "servicebus.windows.net:sastoken"

// ErrInvalidSignature is returned by VerifySAS for a token that is malformed,
// expired or signed with another key.
var ErrInvalidSignature = errors.New("invalid shared access signature")

// SASProvider creates shared access signature tokens signed with a named key.
type SASProvider struct {
	KeyName string
	Key     []byte
	// TTL is the lifetime of each token.
	TTL time.Duration

	now func() time.Time
}

// NewSASProvider returns a provider for key, tokens live for ttl.
func NewSASProvider(keyName string, key []byte, ttl time.Duration) *SASProvider {
	return &SASProvider{KeyName: keyName, Key: key, TTL: ttl, now: time.Now}
}

// Token signs a token for audience.
func (p *SASProvider) Token(ctx context.Context, audience string) (proton.Token, error) {
	if err := ctx.Err(); err != nil {
		return proton.Token{}, err
	}
	if p.KeyName == "" || len(p.Key) == 0 {
		return proton.Token{}, errors.New("sas: key name and key are required")
	}
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	expires := now().Add(p.TTL).Truncate(time.Second)
	se := strconv.FormatInt(expires.Unix(), 10)
	sr := url.QueryEscape(strings.ToLower(audience))
	v := url.Values{}
	v.Set("sr", sr)
	v.Set("sig", sign(p.Key, sr, se))
	v.Set("se", se)
	v.Set("skn", p.KeyName)
	return proton.Token{Type: SASTokenType, Value: "SharedAccessSignature " + v.Encode(), Expires: expires}, nil
}

func sign(key []byte, sr, se string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(sr + "\n" + se))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySAS checks that token was signed for audience with the key named
// keyName and has not expired at now.
func VerifySAS(token, audience, keyName string, key []byte, now time.Time) error {
	raw, ok := strings.CutPrefix(token, "SharedAccessSignature ")
	if !ok {
		return fmt.Errorf("%w: missing prefix", ErrInvalidSignature)
	}
	v, err := url.ParseQuery(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	sr, sig, se := v.Get("sr"), v.Get("sig"), v.Get("se")
	if v.Get("skn") != keyName {
		return fmt.Errorf("%w: unknown key %q", ErrInvalidSignature, v.Get("skn"))
	}
	if sr != url.QueryEscape(strings.ToLower(audience)) {
		return fmt.Errorf("%w: wrong audience", ErrInvalidSignature)
	}
	if !hmac.Equal([]byte(sig), []byte(sign(key, sr, se))) {
		return fmt.Errorf("%w: bad signature", ErrInvalidSignature)
	}
	expiry, err := strconv.ParseInt(se, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad expiry: %w", ErrInvalidSignature, err)
	}
	if !now.Before(time.Unix(expiry, 0)) {
		return fmt.Errorf("%w: expired", ErrInvalidSignature)
	}
	return nil
}
