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
Package broker is an in-memory AMQP peer that implements the proton
contracts over named queues.

Messages sent to an address are appended to the queue of that name,
receivers with the address as source get them in order, bounded by the
receiver's credit. Released and modified messages go back to the front of
their queue. Connections that authenticate with CBS have their tokens
validated with the broker's JWT or SAS keys.

A Broker is its own proton.Dialer:

	b := broker.New()
	c, err := messaging.NewSendClient(b, auth.Anonymous(), "queue")

*/
package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"github.com/google/uuid"

	"qpid.apache.org/linkengine/amqp"
	"qpid.apache.org/linkengine/auth"
	"qpid.apache.org/linkengine/internal/logger"
	"qpid.apache.org/linkengine/proton"
)

// DefaultCredit is the credit of receivers that do not ask for a prefetch.
const DefaultCredit = 100

// DefaultAuthTimeout bounds CBS negotiation.
const DefaultAuthTimeout = 30 * time.Second

// Broker holds the queues and the connections dialed to it.
type Broker struct {
	id  string
	log *logger.Logger

	credit      uint32
	authTimeout time.Duration
	users       map[string]string
	jwtIssuer   string
	jwtKey      []byte
	sasKeyName  string
	sasKey      []byte
	now         func() time.Time

	lock       sync.Mutex
	queues     map[string]*queue
	failSends  error
	linkErrors map[string]error
	codec      *codec

	transfers   atomix.Uint32
	deliveries  atomix.Uint32
	settlements atomix.Uint32
}

// Option configures a Broker.
type Option func(*Broker)

// WithLogger sets the broker logger.
func WithLogger(l *logger.Logger) Option { return func(b *Broker) { b.log = l } }

// WithCredit sets the credit of receivers that do not ask for a prefetch.
func WithCredit(n uint32) Option { return func(b *Broker) { b.credit = n } }

// WithAuthTimeout bounds CBS negotiation on each connection.
func WithAuthTimeout(d time.Duration) Option { return func(b *Broker) { b.authTimeout = d } }

// WithUser adds a user accepted by SASL PLAIN. Without users any PLAIN
// credentials are accepted.
func WithUser(name, password string) Option {
	return func(b *Broker) { b.users[name] = password }
}

// WithJWTKey accepts CBS JSON web tokens from issuer signed with key.
func WithJWTKey(issuer string, key []byte) Option {
	return func(b *Broker) { b.jwtIssuer, b.jwtKey = issuer, key }
}

// WithSASKey accepts CBS shared access signatures signed with the named key.
func WithSASKey(name string, key []byte) Option {
	return func(b *Broker) { b.sasKeyName, b.sasKey = name, key }
}

// WithClock sets the time source for token expiry and the auth timeout.
func WithClock(now func() time.Time) Option { return func(b *Broker) { b.now = now } }

// New returns an empty broker.
func New(opts ...Option) *Broker {
	b := &Broker{
		id:          "broker-" + uuid.NewString(),
		log:         logger.Nop(),
		credit:      DefaultCredit,
		authTimeout: DefaultAuthTimeout,
		users:       make(map[string]string),
		now:         time.Now,
		queues:      make(map[string]*queue),
		linkErrors:  make(map[string]error),
		codec:       newCodec(),
	}
	for _, set := range opts {
		set(b)
	}
	return b
}

// ID is the container id of the broker.
func (b *Broker) ID() string { return b.id }

// Dial opens a connection to the broker.
func (b *Broker) Dial(ctx context.Context, settings proton.ConnectionSettings, h proton.AuthHandle) (proton.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.saslAuth(h); err != nil {
		return nil, err
	}
	if settings.ContainerID == "" {
		settings.ContainerID = uuid.NewString()
	}
	c := &connection{broker: b, settings: settings, auth: h, authorized: h == nil || !h.SupportsCBS()}
	c.log = &logger.Logger{Logger: b.log.With().Str("container", settings.ContainerID).Logger()}
	c.log.Debug().Str("mechanism", mechanism(h)).Str("hostname", settings.Hostname).Msg("connection opened")
	return c, nil
}

func mechanism(h proton.AuthHandle) string {
	if h == nil {
		return auth.MechAnonymous
	}
	return h.Mechanism()
}

func (b *Broker) saslAuth(h proton.AuthHandle) error {
	user, password, ok := auth.Credentials(h)
	if !ok || len(b.users) == 0 {
		return nil
	}
	if want, found := b.users[user]; !found || want != password {
		return amqp.Errorf(amqp.UnauthorizedAccess, "sasl plain: bad credentials for %q", user)
	}
	return nil
}

// verifyToken checks a CBS token put for audience.
func (b *Broker) verifyToken(t proton.Token, audience string) error {
	switch t.Type {
	case auth.JWTTokenType:
		if len(b.jwtKey) == 0 {
			return amqp.Errorf(amqp.UnauthorizedAccess, "jwt tokens are not accepted")
		}
		if _, err := auth.VerifyJWT(t.Value, audience, b.jwtIssuer, b.jwtKey); err != nil {
			return amqp.Errorf(amqp.UnauthorizedAccess, "%v", err)
		}
	case auth.SASTokenType:
		if len(b.sasKey) == 0 {
			return amqp.Errorf(amqp.UnauthorizedAccess, "sas tokens are not accepted")
		}
		if err := auth.VerifySAS(t.Value, audience, b.sasKeyName, b.sasKey, b.now()); err != nil {
			return amqp.Errorf(amqp.UnauthorizedAccess, "%v", err)
		}
	default:
		return amqp.Errorf(amqp.UnauthorizedAccess, "unknown token type %q", t.Type)
	}
	return nil
}

// FailSends makes the broker refuse every transfer with err, nil accepts
// transfers again.
func (b *Broker) FailSends(err error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.failSends = err
}

// LinkErrorOn makes links attached to address fail with err, nil removes the fault.
func (b *Broker) LinkErrorOn(address string, err error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if err == nil {
		delete(b.linkErrors, address)
	} else {
		b.linkErrors[address] = err
	}
}

func (b *Broker) faults(address string) (send, attach error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.failSends, b.linkErrors[address]
}

// queue returns the named queue, creating it if needed.
func (b *Broker) queue(name string) *queue {
	b.lock.Lock()
	defer b.lock.Unlock()
	q := b.queues[name]
	if q == nil {
		q = newQueue(name)
		b.queues[name] = q
		b.log.Debug().Str("queue", name).Msg("queue created")
	}
	return q
}

// Depth is the number of messages waiting on the named queue.
func (b *Broker) Depth(name string) int {
	b.lock.Lock()
	q := b.queues[name]
	b.lock.Unlock()
	if q == nil {
		return 0
	}
	return q.Len()
}

// Push appends messages to the named queue as if they were sent to it.
func (b *Broker) Push(name string, ms ...amqp.Message) error {
	q := b.queue(name)
	for _, m := range ms {
		data, err := b.codec.encode(m, 0)
		if err != nil {
			return err
		}
		q.Push(data)
	}
	return nil
}

// Stats are counters of broker activity.
type Stats struct {
	// Transfers is the number of messages accepted from senders.
	Transfers uint32
	// Deliveries is the number of messages handed to receivers, redeliveries included.
	Deliveries uint32
	// Settlements is the number of deliveries settled by receivers.
	Settlements uint32
}

// Stats returns the current counters.
func (b *Broker) Stats() Stats {
	return Stats{Transfers: b.transfers.Load(), Deliveries: b.deliveries.Load(), Settlements: b.settlements.Load()}
}

func (s Stats) String() string {
	return fmt.Sprintf("transfers=%d deliveries=%d settlements=%d", s.Transfers, s.Deliveries, s.Settlements)
}
