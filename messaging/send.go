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
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"qpid.apache.org/linkengine/amqp"
	"qpid.apache.org/linkengine/proton"
)

// SendClient sends messages on a sender link.
type SendClient struct {
	Client

	sender  proton.Sender
	pending []*PendingMessage // owned by DoWork

	// inbox holds messages queued since the last DoWork.
	inboxLock   sync.Mutex
	inbox       []*PendingMessage
	outstanding atomic.Int64
	completed   atomic.Uint64
}

// NewSendClient creates a client for a sender link to target. Nothing is
// dialed until the client is opened.
func NewSendClient(dialer proton.Dialer, auth proton.AuthHandle, target string, opts ...Option) (*SendClient, error) {
	s := &SendClient{}
	o := newOptions(append([]Option{Target(target)}, opts...))
	if o.cfg.Target == "" {
		return nil, fmt.Errorf("%w: sender target is required", ErrInvalidConfig)
	}
	if err := s.init("sender", dialer, auth, o, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Target is the address messages are sent to.
func (s *SendClient) Target() string { return s.cfg.Target }

// Pending is the number of queued messages not yet dropped from the pending list.
func (s *SendClient) Pending() int { return int(s.outstanding.Load()) }

// QueueMessage appends m to the pending list without driving the link. It
// is sent by a later DoWork, SendMessage or SendAllMessages.
func (s *SendClient) QueueMessage(m amqp.Message, opts ...SendOption) *PendingMessage {
	pm := newPendingMessage(m, s.clock.Now(), opts)
	s.outstanding.Add(1)
	s.inboxLock.Lock()
	s.inbox = append(s.inbox, pm)
	s.inboxLock.Unlock()
	return pm
}

// SendMessage queues m and drives the link until m is Complete. The error
// is not nil only if the client failed or ctx is done; a message that could
// not be sent is reported in the Outcome.
func (s *SendClient) SendMessage(ctx context.Context, m amqp.Message, opts ...SendOption) (Outcome, error) {
	pm := s.QueueMessage(m, opts...)
	if err := s.Open(ctx); err != nil {
		return pm.Outcome(), err
	}
	done := func() bool { return pm.State() == Complete }
	if _, err := s.pump(ctx, s.step, done); err != nil {
		return pm.Outcome(), err
	}
	return pm.Outcome(), s.closeOnDone()
}

// SendAllMessages drives the link until every queued message is Complete
// and dropped from the pending list.
func (s *SendClient) SendAllMessages(ctx context.Context) error {
	if err := s.Open(ctx); err != nil {
		return err
	}
	done := func() bool { return s.outstanding.Load() == 0 }
	if _, err := s.pump(ctx, s.step, done); err != nil {
		return err
	}
	return s.closeOnDone()
}

func (s *SendClient) step(ctx context.Context) (bool, error) {
	return true, s.DoWork(ctx)
}

func (s *SendClient) closeOnDone() error {
	if s.cfg.CloseOnDone {
		return s.Close()
	}
	return nil
}

// DoWork performs one unit of progress on the link: a CBS negotiation step,
// creating the sender, waiting for attach, or handing pending messages to
// the open link. It returns ErrClosed if the client is not open.
func (s *SendClient) DoWork(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doWork(ctx)
}

func (s *SendClient) doWork(ctx context.Context) error {
	if s.session == nil {
		return ErrClosed
	}
	if s.runInjected() > 0 {
		s.progress()
	}
	if busy, err := s.authStep(ctx); busy || err != nil {
		return err
	}
	if s.sender == nil {
		return s.createSender(ctx)
	}
	state := s.sender.State()
	s.observe(state)
	switch state {
	case proton.LinkError:
		return s.linkError(s.sender)
	case proton.LinkOpen:
	default:
		return s.advance(ctx)
	}
	s.collectInbox()
	kept := s.pending[:0]
	for _, pm := range s.pending {
		switch pm.State() {
		case Complete:
			s.outstanding.Add(-1)
			s.progress()
			continue
		case WaitingToBeSent:
			if pm.advance(WaitingForAck) {
				s.transfer(pm)
			}
		}
		kept = append(kept, pm)
	}
	clear(s.pending[len(kept):])
	s.pending = kept
	return s.advance(ctx)
}

func (s *SendClient) createSender(ctx context.Context) error {
	sender, err := s.session.get().NewSender(s.cfg.linkSettings(s.linkName))
	if err != nil {
		return s.fail(fmt.Errorf("create sender: %w", err))
	}
	s.sender = sender
	s.log.Debug().Str("target", s.cfg.Target).Stringer("snd_settle", s.cfg.SndSettle).Msg("sender created")
	if err := sender.Open(); err != nil {
		return s.fail(fmt.Errorf("open sender: %w", err))
	}
	s.observe(sender.State())
	s.progress()
	return s.advance(ctx)
}

func (s *SendClient) collectInbox() {
	s.inboxLock.Lock()
	s.pending = append(s.pending, s.inbox...)
	s.inbox = nil
	s.inboxLock.Unlock()
}

// transfer hands pm to the sender, or completes it if it already expired
// or the sender refuses it.
func (s *SendClient) transfer(pm *PendingMessage) {
	if pm.onComplete == nil {
		pm.onComplete = s.bookkeep
	}
	timeout := pm.timeout
	if timeout < 0 {
		timeout = s.cfg.MessageTimeout
	}
	var remaining time.Duration
	if timeout > 0 {
		elapsed := s.clock.Now().Sub(pm.created)
		if elapsed > timeout {
			pm.finalize(TimedOut, Timeout)
			return
		}
		remaining = timeout - elapsed
	}
	if err := s.sender.Send(pm.Message, remaining, func(err error) { s.settled(pm, err) }); err != nil {
		s.log.Warn().Err(err).Interface("message_id", pm.Message.MessageId()).Msg("send failed")
		pm.finalize(Failed, err)
	}
}

// settled is the SettleFunc of a transferred message.
func (s *SendClient) settled(pm *PendingMessage, err error) {
	switch {
	case err == nil:
		pm.finalize(Sent, nil)
	case errors.Is(err, Timeout):
		pm.finalize(TimedOut, err)
	default:
		s.log.Warn().Err(err).Interface("message_id", pm.Message.MessageId()).Msg("message refused")
		pm.finalize(Failed, err)
	}
	s.progress()
}

// bookkeep is the completion callback of messages sent without OnComplete.
func (s *SendClient) bookkeep(o Outcome) {
	s.completed.Add(1)
	if o.Status != Sent {
		s.log.Debug().Stringer("status", o.Status).AnErr("cause", o.Error).Msg("message completed")
	}
}

// cancel fails every message that is not Complete with ErrClosed.
func (s *SendClient) cancel() {
	s.collectInbox()
	for _, pm := range s.pending {
		pm.finalize(Failed, ErrClosed)
	}
}

func (s *SendClient) destroyLink() error {
	if s.sender == nil {
		return nil
	}
	err := s.sender.Destroy()
	s.sender = nil
	if err != nil {
		return fmt.Errorf("destroy sender: %w", err)
	}
	return nil
}

func (s *SendClient) reset() {
	s.outstanding.Add(-int64(len(s.pending)))
	s.pending = nil
}
