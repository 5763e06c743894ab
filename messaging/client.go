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
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"qpid.apache.org/linkengine/internal/logger"
	"qpid.apache.org/linkengine/proton"
)

// linkOps are the link specific steps of closing a client.
type linkOps interface {
	// cancel resolves everything still waiting on the link.
	cancel()
	destroyLink() error
	// reset clears the transient state of the link.
	reset()
}

// Client is the state shared by SendClient and ReceiveClient: configuration,
// the connection and session the link lives on and who owns them.
type Client struct {
	cfg      Config
	role     string
	dialer   proton.Dialer
	auth     proton.AuthHandle
	external proton.Connection
	log      *logger.Logger
	clock    Clock
	linkName string
	ops      linkOps

	// mu serializes DoWork, open and close.
	mu        sync.Mutex
	conn      connectionRef
	session   sessionRef
	linkState proton.LinkState

	injector
	err      proton.ErrorHolder
	done     chan struct{}
	doneOnce sync.Once
	// events counts observable progress, pump loops back off while it is unchanged.
	events atomic.Uint64
}

func (c *Client) init(role string, dialer proton.Dialer, auth proton.AuthHandle, o options, ops linkOps) error {
	if o.err != nil {
		return o.err
	}
	if err := o.cfg.Validate(); err != nil {
		return err
	}
	if dialer == nil && o.connection == nil {
		return fmt.Errorf("%w: a dialer or a connection is required", ErrInvalidConfig)
	}
	c.cfg = o.cfg
	c.role = role
	c.dialer = dialer
	c.auth = auth
	c.external = o.connection
	c.clock = o.clock
	if c.clock == nil {
		c.clock = systemClock{}
	}
	c.ops = ops
	c.done = make(chan struct{})
	c.injector.closed = true
	if c.cfg.ContainerID == "" {
		if c.external != nil {
			c.cfg.ContainerID = c.external.ContainerID()
		} else {
			c.cfg.ContainerID = newContainerID()
		}
	}
	c.linkName = c.cfg.LinkName
	if c.linkName == "" {
		c.linkName = nextLinkName(c.cfg.ContainerID, role)
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	c.log = o.log.ForLink(role, c.linkName)
	return nil
}

// Open binds the client to a session, dialing a connection unless one was
// given with WithConnection. Open on an open client does nothing.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.openLocked(ctx)
}

func (c *Client) openLocked(ctx context.Context) error {
	if c.session != nil {
		return nil
	}
	if c.external != nil {
		if auth := c.external.Auth(); auth != nil {
			c.auth = auth
		}
		c.conn = borrowedConnection{c.external}
		c.log.Debug().Msg("using existing connection")
	} else {
		pc, err := c.dialer.Dial(ctx, c.cfg.connectionSettings(), c.auth)
		if err != nil {
			return fmt.Errorf("dial %q: %w", c.cfg.Hostname, err)
		}
		c.conn = ownedConnection{pc}
		c.log.Debug().Str("container", c.cfg.ContainerID).Msg("connection dialed")
	}
	pc := c.conn.get()
	switch cbs := pc.CBS(); {
	case cbs == nil && c.auth != nil && c.auth.SupportsCBS():
		created, err := pc.CreateCBSAuthenticator(ctx)
		if err != nil {
			c.abortOpen()
			return fmt.Errorf("create cbs authenticator: %w", err)
		}
		c.session = sharedSession{created.Session()}
		c.log.Debug().Str("mechanism", c.auth.Mechanism()).Msg("cbs authenticator created")
	case cbs != nil:
		c.session = sharedSession{cbs.Session()}
		c.log.Debug().Msg("reusing cbs session")
	default:
		s, err := pc.NewSession(ctx, c.cfg.sessionSettings())
		if err != nil {
			c.abortOpen()
			return fmt.Errorf("begin session: %w", err)
		}
		c.session = ownedSession{s}
		c.log.Debug().Msg("session begun")
	}
	c.setClosed(false)
	return nil
}

// abortOpen destroys a connection dialed by an open that failed.
func (c *Client) abortOpen() {
	if oc, ok := c.conn.(ownedConnection); ok {
		if err := oc.destroy(); err != nil {
			c.log.Warn().Err(err).Msg("destroy connection after failed open")
		}
	}
	c.conn = nil
}

// Close tears down the link, then the session and connection the client
// owns. Close on a closed client does nothing. Teardown continues past
// errors, the first one is returned.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Client) closeLocked() error {
	if c.session == nil {
		return nil
	}
	c.log.Debug().Msg("closing")
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	c.ops.cancel()
	c.runInjected()
	c.setClosed(true)
	keep(c.ops.destroyLink())

	pc := c.conn.get()
	if cbs := pc.CBS(); cbs != nil {
		if _, owned := c.conn.(ownedConnection); owned {
			keep(cbs.Close())
			pc.ResetCBS()
		}
	} else if s, ok := c.session.(ownedSession); ok {
		keep(s.destroy())
	}
	c.session = nil
	if oc, ok := c.conn.(ownedConnection); ok {
		keep(oc.destroy())
	}
	c.conn = nil
	c.linkState = proton.LinkUninitialized
	c.ops.reset()
	c.doneOnce.Do(func() { close(c.done) })
	if first != nil {
		c.log.Warn().Err(first).Msg("closed with error")
	} else {
		c.log.Debug().Msg("closed")
	}
	return first
}

// authStep does one step of CBS token negotiation if the connection uses
// CBS. It reports true if the iteration was spent on negotiation.
func (c *Client) authStep(ctx context.Context) (bool, error) {
	cbs := c.conn.get().CBS()
	if cbs == nil {
		return false, nil
	}
	timedOut, inProgress, err := cbs.HandleToken(ctx)
	switch {
	case err != nil:
		return true, c.fail(fmt.Errorf("cbs token: %w", err))
	case timedOut:
		return true, c.fail(ErrAuthTimeout)
	case inProgress:
		c.log.Debug().Msg("cbs negotiation in progress")
		return true, c.advance(ctx)
	}
	return false, nil
}

func (c *Client) advance(ctx context.Context) error {
	if err := c.conn.get().Advance(ctx); err != nil {
		return c.fail(fmt.Errorf("advance connection: %w", err))
	}
	return nil
}

// observe records the link state, a change counts as progress.
func (c *Client) observe(state proton.LinkState) {
	if state != c.linkState {
		c.log.Debug().Stringer("from", c.linkState).Stringer("to", state).Msg("link state")
		c.linkState = state
		c.progress()
	}
}

func (c *Client) linkError(l proton.Link) error {
	return c.fail(&LinkError{Link: l.Name(), State: l.State(), Cause: l.Error()})
}

func (c *Client) fail(err error) error {
	c.err.Set(err)
	c.log.Error().Err(err).Msg("link failed")
	return err
}

func (c *Client) progress() { c.events.Add(1) }

// Error returns the first fatal error of the client, nil if there was none.
func (c *Client) Error() error { return c.err.Get() }

// Done returns a channel that is closed when the client is closed for the first time.
func (c *Client) Done() <-chan struct{} { return c.done }

// LinkName is the name of the client's link.
func (c *Client) LinkName() string { return c.linkName }

// Config returns the client's settings.
func (c *Client) Config() Config { return c.cfg }

// Session is the session the link lives on, nil if the client is closed.
func (c *Client) Session() proton.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	return c.session.get()
}

// IsOpen is true between Open and Close.
func (c *Client) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}
