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

//go:generate mockgen -source=proton.go -destination=../internal/mock/proton_mock.go -package=mock -copyright_file=../internal/mock/copyright.txt

package proton

import (
	"context"
	"fmt"
	"time"

	"qpid.apache.org/linkengine/amqp"
)

// Dialer creates new connections.
type Dialer interface {
	Dial(ctx context.Context, settings ConnectionSettings, auth AuthHandle) (Connection, error)
}

// Connection is an AMQP connection. A Connection may be shared by several
// clients, each with its own link.
type Connection interface {
	// ContainerID of the local container.
	ContainerID() string

	// Auth is the authentication handle the connection was dialed with.
	Auth() AuthHandle

	// Advance does one unit of protocol work: it may change link states,
	// invoke SettleFunc callbacks and call DeliveryHandlers.
	Advance(ctx context.Context) error

	// CBS returns the connection's CBS authenticator, nil if none was created.
	CBS() CBSAuthenticator

	// CreateCBSAuthenticator creates the CBS authenticator for the
	// connection. It is an error to call it when CBS() is not nil.
	CreateCBSAuthenticator(ctx context.Context) (CBSAuthenticator, error)

	// ResetCBS forgets the CBS authenticator, CBS() returns nil afterwards.
	ResetCBS()

	// NewSession begins a new session.
	NewSession(ctx context.Context, settings SessionSettings) (Session, error)

	// Destroy releases the connection and every session and link on it.
	Destroy() error
}

// Session hosts links.
type Session interface {
	NewSender(settings LinkSettings) (Sender, error)
	NewReceiver(settings LinkSettings, handler DeliveryHandler) (Receiver, error)
	Destroy() error
}

// Link is the common part of Sender and Receiver.
type Link interface {
	// Name of the link.
	Name() string

	// Open sends the attach, the link moves to LinkOpening.
	Open() error

	// State is the current attach state, updated by Connection.Advance.
	State() LinkState

	// Error is the condition that moved the link to LinkError, nil otherwise.
	Error() error

	// Destroy detaches the link. Unsettled deliveries on a Receiver are
	// returned to the remote sender.
	Destroy() error
}

// SettleFunc is called exactly once with the remote outcome of a sent
// message: nil if it was accepted, an error otherwise.
type SettleFunc func(err error)

// Sender is a Link that sends messages.
type Sender interface {
	Link

	// Send hands a message to the link. It does not wait for the remote
	// outcome; settled is called from Connection.Advance when it is known.
	// A positive timeout is the remaining time msg may wait to be
	// transferred, after which settled is called with a timeout error.
	// If Send returns an error, settled is never called.
	Send(msg amqp.Message, timeout time.Duration, settled SettleFunc) error
}

// Receiver is a Link that receives messages, they are passed to the
// DeliveryHandler given when the Receiver was created.
type Receiver interface {
	Link
}

// DeliveryHandler is called from Connection.Advance for each message that
// arrives on a Receiver. It may block, ctx is the context passed to Advance.
type DeliveryHandler func(ctx context.Context, d Delivery)

// DeliveryOutcome is the terminal state a receiver assigns to a delivery.
type DeliveryOutcome int

const (
	// Accepted: the message was processed.
	Accepted DeliveryOutcome = iota
	// Rejected: the message is invalid and must not be redelivered.
	Rejected
	// Released: the message was not processed and may be delivered again.
	Released
	// Modified: the delivery was abandoned, the message is redelivered with
	// an incremented delivery count.
	Modified
)

func (o DeliveryOutcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Released:
		return "released"
	case Modified:
		return "modified"
	default:
		return fmt.Sprintf("invalid(%d)", int(o))
	}
}

// Delivery is a message arriving on a Receiver.
type Delivery interface {
	// Message is the decoded message.
	Message() amqp.Message

	// Settle assigns the final outcome. A delivery can be settled only once.
	Settle(outcome DeliveryOutcome) error
}

// CBSAuthenticator performs claims-based-security token negotiation on a
// connection. It owns a session that links on the connection may reuse.
type CBSAuthenticator interface {
	// HandleToken does one step of token negotiation. timedOut reports that
	// negotiation did not complete in time, inProgress that it is not finished.
	HandleToken(ctx context.Context) (timedOut bool, inProgress bool, err error)

	// Session is the session the authenticator uses to put tokens.
	Session() Session

	// Close stops the authenticator and destroys its session.
	Close() error
}

// AuthHandle describes how a connection authenticates.
type AuthHandle interface {
	// Mechanism is the SASL mechanism name.
	Mechanism() string

	// SupportsCBS is true if the handle authenticates with CBS tokens.
	SupportsCBS() bool

	// Audience is the resource a CBS token is requested for.
	Audience() string

	// TokenProvider returns tokens for CBS, nil if SupportsCBS is false.
	TokenProvider() TokenProvider
}

// TokenProvider creates CBS tokens.
type TokenProvider interface {
	Token(ctx context.Context, audience string) (Token, error)
}

// Token is a CBS security token.
type Token struct {
	// Type is the token type put to the CBS node, e.g. "jwt".
	Type    string
	Value   string
	Expires time.Time
}
