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
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
	"github.com/google/uuid"

	"qpid.apache.org/linkengine/amqp"
	"qpid.apache.org/linkengine/internal/logger"
	"qpid.apache.org/linkengine/proton"
)

// link is the attach state shared by senders and receivers.
type link struct {
	session  *session
	settings proton.LinkSettings
	address  string
	queue    *queue
	log      *logger.Logger

	lock      sync.Mutex
	state     proton.LinkState
	err       error
	destroyed bool
}

func (l *link) Name() string { return l.settings.Name }

func (l *link) Open() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.state != proton.LinkUninitialized {
		return amqp.Errorf(amqp.IllegalState, "link %s is %s", l.settings.Name, l.state)
	}
	l.state = proton.LinkOpening
	return nil
}

func (l *link) State() proton.LinkState {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.state
}

func (l *link) Error() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.err
}

// attach completes the attach of an opening link, call with l.lock held.
func (l *link) attach(authorized bool) {
	if l.state != proton.LinkOpening {
		return
	}
	_, fault := l.session.conn.broker.faults(l.address)
	switch {
	case fault != nil:
		l.state, l.err = proton.LinkError, fault
	case !authorized:
		l.state, l.err = proton.LinkError, amqp.Errorf(amqp.UnauthorizedAccess, "link %s: connection is not authorized", l.settings.Name)
	default:
		l.state = proton.LinkOpen
		l.log.Debug().Msg("link attached")
		return
	}
	l.log.Warn().Err(l.err).Msg("link refused")
}

type transfer struct {
	data     []byte
	deadline time.Time
	settled  proton.SettleFunc
}

// sender is a proton.Sender, transfers reach the queue on the next Advance.
type sender struct {
	link
	transfers []transfer
}

func (l *sender) Send(m amqp.Message, timeout time.Duration, settled proton.SettleFunc) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.destroyed || l.state != proton.LinkOpen {
		return amqp.Errorf(amqp.IllegalState, "send on %s link %s", l.state, l.settings.Name)
	}
	b := l.session.conn.broker
	data, err := b.codec.encode(m, l.settings.MaxMessageSize)
	if err != nil {
		return err
	}
	t := transfer{data: data, settled: settled}
	if timeout > 0 {
		t.deadline = b.now().Add(timeout)
	}
	l.transfers = append(l.transfers, t)
	return nil
}

func (l *sender) advance(ctx context.Context, authorized bool) {
	l.lock.Lock()
	l.attach(authorized)
	if l.state != proton.LinkOpen || l.destroyed {
		l.lock.Unlock()
		return
	}
	transfers := l.transfers
	l.transfers = nil
	l.lock.Unlock()

	b := l.session.conn.broker
	refuse, _ := b.faults(l.address)
	now := b.now()
	for _, t := range transfers {
		switch {
		case refuse != nil:
			t.settled(refuse)
		case !t.deadline.IsZero() && now.After(t.deadline):
			t.settled(proton.ErrTimeout)
		default:
			l.queue.Push(t.data)
			b.transfers.Add(1)
			t.settled(nil)
		}
	}
}

func (l *sender) detach() {
	l.lock.Lock()
	l.destroyed = true
	transfers := l.transfers
	l.transfers = nil
	l.lock.Unlock()
	for _, t := range transfers {
		t.settled(amqp.Errorf(amqp.LinkDetachForced, "link %s detached", l.settings.Name))
	}
}

func (l *sender) Destroy() error {
	l.detach()
	l.session.remove(l)
	return nil
}

type settlement struct {
	d       *delivery
	outcome proton.DeliveryOutcome
}

// receiver is a proton.Receiver. Messages move from the queue to the
// credit ring on Advance and are handed to the delivery handler from there;
// the ring and the unsettled deliveries together never exceed the credit.
type receiver struct {
	link
	handler proton.DeliveryHandler
	credit  uint32

	ring      lfq.SPSC[*delivery]
	unsettled map[*delivery]struct{}
	settled   []settlement
	seq       uint64
}

func (l *receiver) advance(ctx context.Context, authorized bool) {
	b := l.session.conn.broker
	l.lock.Lock()
	l.attach(authorized)
	if l.state != proton.LinkOpen || l.destroyed {
		l.lock.Unlock()
		return
	}
	l.applySettlements()
	if l.unsettled == nil {
		l.unsettled = make(map[*delivery]struct{})
	}
	for uint32(len(l.unsettled)) < l.credit {
		e, ok := l.queue.Pop()
		if !ok {
			break
		}
		m, err := b.codec.decode(e)
		if err != nil {
			l.log.Error().Err(err).Msg("dropping undecodable message")
			continue
		}
		l.seq++
		d := &delivery{receiver: l, entry: e, m: m, tag: uuid.NewString(), seq: l.seq}
		if err := l.ring.Enqueue(&d); err != nil {
			if !errors.Is(err, iox.ErrWouldBlock) {
				l.log.Error().Err(err).Msg("credit ring")
			}
			l.queue.PutBack(e)
			break
		}
		l.unsettled[d] = struct{}{}
	}
	l.lock.Unlock()

	for {
		d, err := l.ring.Dequeue()
		if err != nil {
			break
		}
		b.deliveries.Add(1)
		l.log.Debug().Str("tag", d.tag).Uint32("delivery_count", d.m.DeliveryCount()).Msg("deliver")
		l.handler(ctx, d)
	}
}

// applySettlements call with l.lock held.
func (l *receiver) applySettlements() {
	b := l.session.conn.broker
	for _, s := range l.settled {
		delete(l.unsettled, s.d)
		b.settlements.Add(1)
		switch s.outcome {
		case proton.Accepted:
		case proton.Rejected:
			l.log.Warn().Str("tag", s.d.tag).Msg("message rejected, dropped")
		case proton.Released:
			l.queue.PutBack(s.d.entry)
		case proton.Modified:
			e := s.d.entry
			e.redelivered++
			l.queue.PutBack(e)
		}
	}
	l.settled = nil
}

// detach applies outstanding settlements and returns the rest of the
// unsettled deliveries to the queue.
func (l *receiver) detach() {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.destroyed {
		return
	}
	l.destroyed = true
	l.applySettlements()
	for {
		if _, err := l.ring.Dequeue(); err != nil {
			break
		}
	}
	// newest first, so the queue keeps delivery order
	pending := slices.SortedFunc(maps.Keys(l.unsettled), func(a, b *delivery) int { return cmp.Compare(b.seq, a.seq) })
	for _, d := range pending {
		l.queue.PutBack(d.entry)
	}
	l.unsettled = nil
}

func (l *receiver) Destroy() error {
	l.detach()
	l.session.remove(l)
	return nil
}

// delivery is a proton.Delivery, its settlement is applied on the next Advance.
type delivery struct {
	receiver *receiver
	entry    entry
	m        amqp.Message
	tag      string
	seq      uint64
	settled  bool
}

func (d *delivery) Message() amqp.Message { return d.m }

// Tag is the delivery tag.
func (d *delivery) Tag() string { return d.tag }

func (d *delivery) Settle(o proton.DeliveryOutcome) error {
	l := d.receiver
	l.lock.Lock()
	defer l.lock.Unlock()
	switch {
	case d.settled:
		return amqp.Errorf(amqp.IllegalState, "delivery %s already settled", d.tag)
	case l.destroyed:
		return amqp.Errorf(amqp.LinkDetachForced, "link %s detached", l.settings.Name)
	}
	d.settled = true
	l.settled = append(l.settled, settlement{d, o})
	return nil
}

func (d *delivery) String() string { return fmt.Sprintf("delivery(%s)", d.tag) }
