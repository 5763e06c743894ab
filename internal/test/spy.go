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

// Package test provides scripted spy implementations of the proton
// contracts, with call counters, for unit tests of the link engine.
package test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"qpid.apache.org/linkengine/amqp"
	"qpid.apache.org/linkengine/proton"
)

// Auth is a proton.AuthHandle.
type Auth struct {
	CBS      bool
	Provider proton.TokenProvider
}

func (a Auth) Mechanism() string {
	if a.CBS {
		return "MSCBS"
	}
	return "ANONYMOUS"
}
func (a Auth) SupportsCBS() bool                   { return a.CBS }
func (a Auth) Audience() string                    { return "amqp://spy" }
func (a Auth) TokenProvider() proton.TokenProvider { return a.Provider }

// Dialer returns Conn from every Dial.
type Dialer struct {
	mu       sync.Mutex
	Conn     *Connection
	Err      error
	dials    int
	settings proton.ConnectionSettings
}

func (d *Dialer) Dial(ctx context.Context, s proton.ConnectionSettings, auth proton.AuthHandle) (proton.Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	d.settings = s
	if d.Err != nil {
		return nil, d.Err
	}
	if d.Conn == nil {
		d.Conn = NewConnection(auth)
	}
	d.Conn.mu.Lock()
	d.Conn.auth = auth
	d.Conn.container = s.ContainerID
	d.Conn.mu.Unlock()
	return d.Conn, nil
}

// Dials is the number of Dial calls.
func (d *Dialer) Dials() int { d.mu.Lock(); defer d.mu.Unlock(); return d.dials }

// Settings are the settings of the last Dial.
func (d *Dialer) Settings() proton.ConnectionSettings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settings
}

// Connection is a spy proton.Connection. Advance moves opening links to
// open, settles sent messages and delivers messages to receivers.
type Connection struct {
	mu        sync.Mutex
	container string
	auth      proton.AuthHandle
	cbs       *CBS
	sessions  []*Session

	// CBSSteps scripts the authenticator created by CreateCBSAuthenticator.
	CBSSteps []CBSStep
	// AdvanceErr is returned by Advance when set.
	AdvanceErr error
	// SessionErr is returned by NewSession when set.
	SessionErr error
	// Configure is passed on to every session of the connection.
	Configure func(l any)

	advances int
	destroys int
	cbsMade  int
}

// NewConnection returns a connection with no CBS authenticator.
func NewConnection(auth proton.AuthHandle) *Connection {
	return &Connection{container: "spy-container", auth: auth}
}

func (c *Connection) ContainerID() string { c.mu.Lock(); defer c.mu.Unlock(); return c.container }

func (c *Connection) Auth() proton.AuthHandle { c.mu.Lock(); defer c.mu.Unlock(); return c.auth }

func (c *Connection) Advance(ctx context.Context) error {
	c.mu.Lock()
	c.advances++
	err := c.AdvanceErr
	sessions := append([]*Session(nil), c.sessions...)
	if c.cbs != nil {
		sessions = append(sessions, c.cbs.session)
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}
	for _, s := range sessions {
		s.advance(ctx)
	}
	return nil
}

func (c *Connection) CBS() proton.CBSAuthenticator {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cbs == nil {
		return nil
	}
	return c.cbs
}

// CBSSpy returns the authenticator as a *CBS, nil if there is none.
func (c *Connection) CBSSpy() *CBS { c.mu.Lock(); defer c.mu.Unlock(); return c.cbs }

func (c *Connection) CreateCBSAuthenticator(ctx context.Context) (proton.CBSAuthenticator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cbs != nil {
		return nil, errors.New("cbs authenticator already exists")
	}
	c.cbsMade++
	c.cbs = &CBS{steps: append([]CBSStep(nil), c.CBSSteps...), session: &Session{Configure: c.Configure}}
	return c.cbs, nil
}

func (c *Connection) ResetCBS() { c.mu.Lock(); defer c.mu.Unlock(); c.cbs = nil }

func (c *Connection) NewSession(ctx context.Context, s proton.SessionSettings) (proton.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SessionErr != nil {
		return nil, c.SessionErr
	}
	sn := &Session{Settings: s, Configure: c.Configure}
	c.sessions = append(c.sessions, sn)
	return sn, nil
}

func (c *Connection) Destroy() error { c.mu.Lock(); defer c.mu.Unlock(); c.destroys++; return nil }

// Advances is the number of Advance calls.
func (c *Connection) Advances() int { c.mu.Lock(); defer c.mu.Unlock(); return c.advances }

// Destroys is the number of Destroy calls.
func (c *Connection) Destroys() int { c.mu.Lock(); defer c.mu.Unlock(); return c.destroys }

// CBSCreated is the number of authenticators created.
func (c *Connection) CBSCreated() int { c.mu.Lock(); defer c.mu.Unlock(); return c.cbsMade }

// Sessions returns the sessions begun on the connection.
func (c *Connection) Sessions() []*Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Session(nil), c.sessions...)
}

// LastSender returns the most recently created sender on any session, nil if none.
func (c *Connection) LastSender() *Sender {
	for _, s := range c.allSessions() {
		if l := s.LastSender(); l != nil {
			return l
		}
	}
	return nil
}

// LastReceiver returns the most recently created receiver on any session, nil if none.
func (c *Connection) LastReceiver() *Receiver {
	for _, s := range c.allSessions() {
		if l := s.LastReceiver(); l != nil {
			return l
		}
	}
	return nil
}

func (c *Connection) allSessions() []*Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	all := make([]*Session, 0, len(c.sessions)+1)
	if c.cbs != nil {
		all = append(all, c.cbs.session)
	}
	for i := len(c.sessions) - 1; i >= 0; i-- {
		all = append(all, c.sessions[i])
	}
	return all
}

// CBSStep is one scripted result of CBS.HandleToken.
type CBSStep struct {
	TimedOut, InProgress bool
	Err                  error
}

// CBS is a spy proton.CBSAuthenticator. HandleToken returns the scripted
// steps in order, then reports negotiation complete.
type CBS struct {
	mu      sync.Mutex
	steps   []CBSStep
	session *Session
	calls   int
	closes  int
}

func (a *CBS) HandleToken(ctx context.Context) (bool, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if len(a.steps) == 0 {
		return false, false, nil
	}
	s := a.steps[0]
	a.steps = a.steps[1:]
	return s.TimedOut, s.InProgress, s.Err
}

func (a *CBS) Session() proton.Session { return a.session }

// SessionSpy returns the authenticator session.
func (a *CBS) SessionSpy() *Session { return a.session }

func (a *CBS) Close() error { a.mu.Lock(); defer a.mu.Unlock(); a.closes++; return nil }

// Calls is the number of HandleToken calls.
func (a *CBS) Calls() int { a.mu.Lock(); defer a.mu.Unlock(); return a.calls }

// Closes is the number of Close calls.
func (a *CBS) Closes() int { a.mu.Lock(); defer a.mu.Unlock(); return a.closes }

// Session is a spy proton.Session.
type Session struct {
	mu        sync.Mutex
	Settings  proton.SessionSettings
	senders   []*Sender
	receivers []*Receiver
	destroys  int

	// Configure is called with every new link before it is returned.
	Configure func(l any)
}

func (s *Session) NewSender(ls proton.LinkSettings) (proton.Sender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := &Sender{link: link{settings: ls, OpenAfter: 1}}
	if s.Configure != nil {
		s.Configure(l)
	}
	s.senders = append(s.senders, l)
	return l, nil
}

func (s *Session) NewReceiver(ls proton.LinkSettings, h proton.DeliveryHandler) (proton.Receiver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := &Receiver{link: link{settings: ls, OpenAfter: 1}, handler: h}
	if s.Configure != nil {
		s.Configure(l)
	}
	s.receivers = append(s.receivers, l)
	return l, nil
}

func (s *Session) Destroy() error { s.mu.Lock(); defer s.mu.Unlock(); s.destroys++; return nil }

// Destroys is the number of Destroy calls.
func (s *Session) Destroys() int { s.mu.Lock(); defer s.mu.Unlock(); return s.destroys }

// Links is the number of links created on the session.
func (s *Session) Links() int { s.mu.Lock(); defer s.mu.Unlock(); return len(s.senders) + len(s.receivers) }

// LastSender returns the most recently created sender, nil if none.
func (s *Session) LastSender() *Sender {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.senders) == 0 {
		return nil
	}
	return s.senders[len(s.senders)-1]
}

// LastReceiver returns the most recently created receiver, nil if none.
func (s *Session) LastReceiver() *Receiver {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.receivers) == 0 {
		return nil
	}
	return s.receivers[len(s.receivers)-1]
}

func (s *Session) advance(ctx context.Context) {
	s.mu.Lock()
	senders := append([]*Sender(nil), s.senders...)
	receivers := append([]*Receiver(nil), s.receivers...)
	s.mu.Unlock()
	for _, l := range senders {
		l.advance()
	}
	for _, l := range receivers {
		l.advance(ctx)
	}
}

type link struct {
	mu       sync.Mutex
	settings proton.LinkSettings
	state    proton.LinkState
	err      error
	opened   int
	destroys int

	// OpenAfter is the number of advances after Open before the link is open.
	OpenAfter int
	// FailWith moves the link to LinkError with this condition instead of opening.
	FailWith error
}

func (l *link) Name() string { return l.settings.Name }

func (l *link) Open() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = proton.LinkOpening
	return nil
}

func (l *link) State() proton.LinkState { l.mu.Lock(); defer l.mu.Unlock(); return l.state }

func (l *link) Error() error { l.mu.Lock(); defer l.mu.Unlock(); return l.err }

func (l *link) Destroy() error { l.mu.Lock(); defer l.mu.Unlock(); l.destroys++; return nil }

// Settings are the settings the link was created with.
func (l *link) Settings() proton.LinkSettings { l.mu.Lock(); defer l.mu.Unlock(); return l.settings }

// Destroys is the number of Destroy calls.
func (l *link) Destroys() int { l.mu.Lock(); defer l.mu.Unlock(); return l.destroys }

// SetState forces the link state.
func (l *link) SetState(s proton.LinkState, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state, l.err = s, err
}

// attach progresses an opening link, call with l.mu held.
func (l *link) attach() {
	if l.state != proton.LinkOpening {
		return
	}
	if l.FailWith != nil {
		l.state, l.err = proton.LinkError, l.FailWith
		return
	}
	l.opened++
	if l.opened >= l.OpenAfter {
		l.state = proton.LinkOpen
	}
}

type sent struct {
	m       amqp.Message
	timeout time.Duration
	settled proton.SettleFunc
}

// Sender is a spy proton.Sender. Messages are settled on the Advance after Send.
type Sender struct {
	link
	// SendErr, if set, is called by Send and its error returned.
	SendErr func(m amqp.Message) error
	// Outcome, if set, gives the settlement error of a sent message.
	Outcome func(m amqp.Message) error
	// Hold keeps sent messages unsettled.
	Hold bool

	unsettled  []sent
	sent       []amqp.Message
	timeouts   []time.Duration
	sendCalls  int
	notOpenSnd int
}

func (l *Sender) Send(m amqp.Message, timeout time.Duration, settled proton.SettleFunc) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sendCalls++
	if l.state != proton.LinkOpen {
		l.notOpenSnd++
		return fmt.Errorf("send on %s link", l.state)
	}
	if l.SendErr != nil {
		if err := l.SendErr(m); err != nil {
			return err
		}
	}
	l.sent = append(l.sent, m)
	l.timeouts = append(l.timeouts, timeout)
	l.unsettled = append(l.unsettled, sent{m, timeout, settled})
	return nil
}

func (l *Sender) advance() {
	l.mu.Lock()
	l.attach()
	var settle []sent
	if !l.Hold {
		settle, l.unsettled = l.unsettled, nil
	}
	outcome := l.Outcome
	l.mu.Unlock()
	for _, s := range settle {
		var err error
		if outcome != nil {
			err = outcome(s.m)
		}
		s.settled(err)
	}
}

// Sent returns the messages accepted by Send, in order.
func (l *Sender) Sent() []amqp.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]amqp.Message(nil), l.sent...)
}

// Timeouts returns the timeouts passed to Send, in order.
func (l *Sender) Timeouts() []time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]time.Duration(nil), l.timeouts...)
}

// SendCalls is the number of Send calls.
func (l *Sender) SendCalls() int { l.mu.Lock(); defer l.mu.Unlock(); return l.sendCalls }

// SendsWhileNotOpen is the number of Send calls made while the link was not open.
func (l *Sender) SendsWhileNotOpen() int { l.mu.Lock(); defer l.mu.Unlock(); return l.notOpenSnd }

// Receiver is a spy proton.Receiver. Messages passed to Deliver are handed
// to the delivery handler on the next Advance after the link is open, up
// to PerAdvance at a time.
type Receiver struct {
	link
	handler  proton.DeliveryHandler
	arrivals []amqp.Message
	all      []*Delivery

	// PerAdvance limits deliveries per Advance, 0 means no limit.
	PerAdvance int
}

// Deliver queues messages to arrive on later advances.
func (l *Receiver) Deliver(ms ...amqp.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.arrivals = append(l.arrivals, ms...)
}

func (l *Receiver) advance(ctx context.Context) {
	l.mu.Lock()
	l.attach()
	if l.state != proton.LinkOpen || l.destroys > 0 {
		l.mu.Unlock()
		return
	}
	n := len(l.arrivals)
	if l.PerAdvance > 0 && n > l.PerAdvance {
		n = l.PerAdvance
	}
	batch := l.arrivals[:n]
	l.arrivals = l.arrivals[n:]
	ds := make([]*Delivery, 0, n)
	for _, m := range batch {
		d := &Delivery{m: m}
		ds = append(ds, d)
		l.all = append(l.all, d)
	}
	h := l.handler
	l.mu.Unlock()
	for _, d := range ds {
		h(ctx, d)
	}
}

// Deliveries returns every delivery handed to the handler, in order.
func (l *Receiver) Deliveries() []*Delivery {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Delivery(nil), l.all...)
}

// Delivery is a spy proton.Delivery that records its settlement.
type Delivery struct {
	mu      sync.Mutex
	m       amqp.Message
	outcome proton.DeliveryOutcome
	settles int
}

func (d *Delivery) Message() amqp.Message { return d.m }

func (d *Delivery) Settle(o proton.DeliveryOutcome) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settles++
	if d.settles > 1 {
		return errors.New("delivery already settled")
	}
	d.outcome = o
	return nil
}

// Outcome returns the settlement and whether the delivery was settled.
func (d *Delivery) Outcome() (proton.DeliveryOutcome, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.outcome, d.settles > 0
}

// Settles is the number of Settle calls.
func (d *Delivery) Settles() int { d.mu.Lock(); defer d.mu.Unlock(); return d.settles }
