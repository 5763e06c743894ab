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

// Package config loads messaging.Config from environment variables.
//
// Variables are named after the env tags of messaging.Config with a
// prefix, e.g. LINKDEMO_PREFETCH. Unset variables take the values of
// messaging.DefaultConfig.
package config

import (
	"errors"
	"fmt"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"

	"qpid.apache.org/linkengine/messaging"
)

// ErrInvalidLinkConfig wraps every error returned by Load.
var ErrInvalidLinkConfig = errors.New("invalid link configuration")

// Load reads the configuration from the process environment.
func Load(prefix string) (messaging.Config, error) {
	return LoadFrom(prefix, nil)
}

// LoadFrom is like Load but reads variables from environ, the process
// environment if environ is nil.
func LoadFrom(prefix string, environ map[string]string) (messaging.Config, error) {
	var cfg messaging.Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix, Environment: environ}); err != nil {
		return messaging.Config{}, fmt.Errorf("%w: error getting env configs: %w", ErrInvalidLinkConfig, err)
	}
	if err := mergo.Merge(&cfg, messaging.DefaultConfig()); err != nil {
		return messaging.Config{}, fmt.Errorf("%w: error merging defaults: %w", ErrInvalidLinkConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return messaging.Config{}, fmt.Errorf("%w: %w", ErrInvalidLinkConfig, err)
	}
	return cfg, nil
}
