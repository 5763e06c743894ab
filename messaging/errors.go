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

package messaging

import (
	"errors"
	"fmt"
	"io"

	"qpid.apache.org/linkengine/proton"
)

// ErrClosed is an alias for io.EOF. It is returned when the client is closed,
// and is the Outcome error of messages that were still pending at close.
var ErrClosed = io.EOF

var (
	// ErrAuthTimeout is returned by DoWork when CBS token negotiation does
	// not complete in time. It is fatal, the client must be closed.
	ErrAuthTimeout = errors.New("cbs token negotiation timed out")

	// ErrDeliveryAbandoned is returned when settling a received message that
	// was abandoned because it was not consumed in time.
	ErrDeliveryAbandoned = errors.New("delivery abandoned")

	// ErrIteratorConsumed is yielded by a message sequence that is ranged
	// over more than once.
	ErrIteratorConsumed = errors.New("message iterator already consumed")

	// ErrInvalidConfig is wrapped by configuration validation errors.
	ErrInvalidConfig = errors.New("invalid link configuration")
)

// LinkError is returned by DoWork when the sender or receiver link is in
// the proton.LinkError state.
type LinkError struct {
	Link  string
	State proton.LinkState
	Cause error
}

func (e *LinkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("link %s: invalid link state %s: %v", e.Link, e.State, e.Cause)
	}
	return fmt.Sprintf("link %s: invalid link state %s", e.Link, e.State)
}

func (e *LinkError) Unwrap() error { return e.Cause }
