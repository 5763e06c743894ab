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
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"qpid.apache.org/linkengine/proton"
)

// JWTTokenType is the CBS token type of JSON web tokens.
const JWTTokenType = "jwt"

// JWTProvider issues HMAC-SHA256 signed JSON web tokens.
type JWTProvider struct {
	Issuer  string
	Subject string
	Key     []byte
	TTL     time.Duration

	now func() time.Time
}

// NewJWTProvider returns a provider that signs tokens with key.
func NewJWTProvider(issuer, subject string, key []byte, ttl time.Duration) *JWTProvider {
	return &JWTProvider{Issuer: issuer, Subject: subject, Key: key, TTL: ttl, now: time.Now}
}

// Token issues a token for audience.
func (p *JWTProvider) Token(ctx context.Context, audience string) (proton.Token, error) {
	if err := ctx.Err(); err != nil {
		return proton.Token{}, err
	}
	if p.Issuer == "" || p.TTL <= 0 || len(p.Key) == 0 {
		return proton.Token{}, errors.New("invalid params for generating JWT token")
	}
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	issued := now()
	claims := &jwt.RegisteredClaims{
		Issuer:    p.Issuer,
		Subject:   p.Subject,
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(issued.Add(p.TTL)),
		IssuedAt:  jwt.NewNumericDate(issued),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.Key)
	if err != nil {
		return proton.Token{}, fmt.Errorf("error occurred during signing JWT token: %w", err)
	}
	return proton.Token{Type: JWTTokenType, Value: signed, Expires: claims.ExpiresAt.Time}, nil
}

// VerifyJWT validates the signature, audience, issuer and expiry of a token
// and returns its claims.
func VerifyJWT(token, audience, issuer string, key []byte) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithAudience(audience), jwt.WithIssuer(issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("error occurred validating token: %w", err)
	}
	return claims, nil
}
