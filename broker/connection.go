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

package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"qpid.apache.org/linkengine/amqp"
	"qpid.apache.org/linkengine/internal/logger"
	"qpid.apache.org/linkengine/proton"
)

// connection is a proton.Connection to the broker.
type connection struct {
	broker   *Broker
	settings proton.ConnectionSettings
	auth     proton.AuthHandle
	log      *logger.Logger

	// advancing serializes Advance, links on the connection are driven by
	// one goroutine at a time.
	advancing sync.Mutex

	lock       sync.Mutex
	sessions   []*session
	cbs        *cbs
	authorized bool
	destroyed  bool
}

func (c *connection) ContainerID() string { return c.settings.ContainerID }

func (c *connection) Auth() proton.AuthHandle { return c.auth }

// Advance attaches opening links, moves transfers to their queues, delivers
// queued messages within each receiver's credit and applies settlements.
func (c *connection) Advance(ctx context.Context) error {
	c.advancing.Lock()
	defer c.advancing.Unlock()
	c.lock.Lock()
	if c.destroyed {
		c.lock.Unlock()
		return errors.New("connection destroyed")
	}
	sessions := append([]*session(nil), c.sessions...)
	authorized := c.authorized
	c.lock.Unlock()
	for _, s := range sessions {
		for _, l := range s.snapshot() {
			l.advance(ctx, authorized)
		}
	}
	return nil
}

func (c *connection) CBS() proton.CBSAuthenticator {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.cbs == nil {
		return nil
	}
	return c.cbs
}

func (c *connection) CreateCBSAuthenticator(ctx context.Context) (proton.CBSAuthenticator, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.destroyed {
		return nil, errors.New("connection destroyed")
	}
	if c.cbs != nil {
		return nil, amqp.Errorf(amqp.IllegalState, "cbs authenticator already exists")
	}
	if c.auth == nil || !c.auth.SupportsCBS() {
		return nil, amqp.Errorf(amqp.NotAllowed, "connection does not authenticate with cbs")
	}
	s := &session{conn: c, settings: proton.SessionSettings{}}
	c.sessions = append(c.sessions, s)
	c.cbs = &cbs{conn: c, session: s, started: c.broker.now()}
	c.log.Debug().Str("audience", c.auth.Audience()).Msg("cbs authenticator created")
	return c.cbs, nil
}

func (c *connection) ResetCBS() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.cbs = nil
}

func (c *connection) NewSession(ctx context.Context, settings proton.SessionSettings) (proton.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.destroyed {
		return nil, errors.New("connection destroyed")
	}
	s := &session{conn: c, settings: settings}
	c.sessions = append(c.sessions, s)
	return s, nil
}

// Destroy detaches every link, unsettled deliveries go back to their queues.
func (c *connection) Destroy() error {
	c.lock.Lock()
	if c.destroyed {
		c.lock.Unlock()
		return nil
	}
	c.destroyed = true
	sessions := c.sessions
	c.sessions = nil
	c.cbs = nil
	c.lock.Unlock()
	for _, s := range sessions {
		_ = s.Destroy()
	}
	c.log.Debug().Msg("connection closed")
	return nil
}

func (c *connection) authorize() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.authorized = true
}

func (c *connection) removeSession(s *session) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for i, x := range c.sessions {
		if x == s {
			c.sessions = append(c.sessions[:i], c.sessions[i+1:]...)
			return
		}
	}
}

// endpoint is a sender or receiver link of the broker.
type endpoint interface {
	proton.Link
	advance(ctx context.Context, authorized bool)
	detach()
}

// session is a proton.Session on a connection.
type session struct {
	conn     *connection
	settings proton.SessionSettings

	lock      sync.Mutex
	links     []endpoint
	destroyed bool
}

func (s *session) NewSender(settings proton.LinkSettings) (proton.Sender, error) {
	if settings.Target == "" {
		return nil, amqp.Errorf(amqp.InvalidField, "sender %q has no target", settings.Name)
	}
	l := &sender{link: s.newLink(settings, settings.Target, "sender")}
	return l, s.add(l)
}

func (s *session) NewReceiver(settings proton.LinkSettings, h proton.DeliveryHandler) (proton.Receiver, error) {
	if settings.Source == "" {
		return nil, amqp.Errorf(amqp.InvalidField, "receiver %q has no source", settings.Name)
	}
	if h == nil {
		return nil, errors.New("receiver needs a delivery handler")
	}
	credit := settings.Prefetch
	if credit == 0 {
		credit = s.conn.broker.credit
	}
	l := &receiver{link: s.newLink(settings, settings.Source, "receiver"), handler: h, credit: credit}
	l.ring.Init(max(2, int(credit)))
	return l, s.add(l)
}

func (s *session) newLink(settings proton.LinkSettings, address, role string) link {
	log := &logger.Logger{Logger: s.conn.log.With().Str("link", settings.Name).Str("address", address).Logger()}
	return link{session: s, settings: settings, address: address, queue: s.conn.broker.queue(address), log: log}
}

func (s *session) add(l endpoint) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.destroyed {
		return errors.New("session destroyed")
	}
	s.links = append(s.links, l)
	return nil
}

func (s *session) snapshot() []endpoint {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]endpoint(nil), s.links...)
}

func (s *session) remove(l endpoint) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for i, x := range s.links {
		if x == l {
			s.links = append(s.links[:i], s.links[i+1:]...)
			return
		}
	}
}

// Destroy detaches the links of the session.
func (s *session) Destroy() error {
	s.lock.Lock()
	if s.destroyed {
		s.lock.Unlock()
		return nil
	}
	s.destroyed = true
	links := s.links
	s.links = nil
	s.lock.Unlock()
	for _, l := range links {
		l.detach()
	}
	s.conn.removeSession(s)
	return nil
}

// cbs validates the token of the connection's auth handle. The first step
// fetches a token, the next one validates it.
type cbs struct {
	conn    *connection
	session *session
	started time.Time

	lock   sync.Mutex
	token  *proton.Token
	done   bool
	closed bool
}

func (a *cbs) HandleToken(ctx context.Context) (timedOut bool, inProgress bool, err error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	switch {
	case a.closed:
		return false, false, errors.New("cbs authenticator closed")
	case a.done:
		return false, false, nil
	case a.conn.broker.authTimeout > 0 && a.conn.broker.now().Sub(a.started) > a.conn.broker.authTimeout:
		return true, false, nil
	}
	h := a.conn.auth
	if a.token == nil {
		p := h.TokenProvider()
		if p == nil {
			return false, false, errors.New("auth handle has no token provider")
		}
		t, err := p.Token(ctx, h.Audience())
		if err != nil {
			return false, false, fmt.Errorf("get cbs token: %w", err)
		}
		a.token = &t
		a.conn.log.Debug().Str("type", t.Type).Time("expires", t.Expires).Msg("cbs token put")
		return false, true, nil
	}
	if err := a.conn.broker.verifyToken(*a.token, h.Audience()); err != nil {
		a.conn.log.Warn().Err(err).Msg("cbs token refused")
		return false, false, err
	}
	a.done = true
	a.conn.authorize()
	a.conn.log.Debug().Msg("cbs authorized")
	return false, false, nil
}

func (a *cbs) Session() proton.Session { return a.session }

// Close destroys the authenticator session.
func (a *cbs) Close() error {
	a.lock.Lock()
	a.closed = true
	a.lock.Unlock()
	return a.session.Destroy()
}
