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
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"qpid.apache.org/linkengine/amqp"
	"qpid.apache.org/linkengine/proton"
)

// MessageHandler is called for each message received by ReceiveMessages. It
// runs inside DoWork, so it must not call methods of the client other than
// settling rm.
type MessageHandler func(ctx context.Context, rm *ReceivedMessage)

// ReceiveClient receives messages on a receiver link.
type ReceiveClient struct {
	Client

	receiver  proton.Receiver
	queue     chan *ReceivedMessage
	handler   MessageHandler
	transform func(amqp.Message) amqp.Message

	// linkCtx is cancelled when the receiver is destroyed.
	linkCtx    context.Context
	cancelLink context.CancelFunc
	waiters    sync.WaitGroup

	shutdown     bool
	lastActivity time.Time
	received     atomic.Bool
	iterating    atomic.Bool
}

// NewReceiveClient creates a client for a receiver link from source.
// Nothing is dialed until the client is opened.
func NewReceiveClient(dialer proton.Dialer, auth proton.AuthHandle, source string, opts ...Option) (*ReceiveClient, error) {
	r := &ReceiveClient{}
	o := newOptions(append([]Option{Source(source)}, opts...))
	if o.cfg.Source == "" {
		return nil, fmt.Errorf("%w: receiver source is required", ErrInvalidConfig)
	}
	if err := r.init("receiver", dialer, auth, o, r); err != nil {
		return nil, err
	}
	r.transform = o.transform
	r.queue = make(chan *ReceivedMessage, r.cfg.Prefetch)
	return r, nil
}

// Source is the address messages are received from.
func (r *ReceiveClient) Source() string { return r.cfg.Source }

// Queued is the number of deliveries waiting in the queue.
func (r *ReceiveClient) Queued() int { return len(r.queue) }

// Capacity of the delivery queue, the configured prefetch.
func (r *ReceiveClient) Capacity() int { return cap(r.queue) }

// DoWork performs one unit of progress on the link: a CBS negotiation step,
// creating the receiver, waiting for attach, or advancing the connection so
// deliveries arrive. It returns false once the client has stopped: the
// iteration after an idle timeout closes the client and returns false, and
// DoWork on a closed client returns false.
func (r *ReceiveClient) DoWork(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doWork(ctx)
}

func (r *ReceiveClient) doWork(ctx context.Context) (bool, error) {
	if r.shutdown {
		r.log.Debug().Msg("stopping after idle timeout")
		return false, r.closeLocked()
	}
	if r.session == nil {
		return false, nil
	}
	if r.runInjected() > 0 {
		r.progress()
	}
	if busy, err := r.authStep(ctx); err != nil {
		return false, err
	} else if busy {
		return true, nil
	}
	if r.receiver == nil {
		if err := r.createReceiver(ctx); err != nil {
			return false, err
		}
		return true, nil
	}
	state := r.receiver.State()
	r.observe(state)
	switch state {
	case proton.LinkError:
		return false, r.linkError(r.receiver)
	case proton.LinkOpen:
	default:
		if err := r.advance(ctx); err != nil {
			return false, err
		}
		r.lastActivity = r.clock.Now()
		return true, nil
	}
	if err := r.advance(ctx); err != nil {
		return false, err
	}
	r.checkIdle()
	return true, nil
}

func (r *ReceiveClient) createReceiver(ctx context.Context) error {
	linkCtx, cancel := context.WithCancel(context.Background())
	handler := func(ctx context.Context, d proton.Delivery) { r.onDelivery(ctx, linkCtx, d) }
	receiver, err := r.session.get().NewReceiver(r.cfg.linkSettings(r.linkName), handler)
	if err != nil {
		cancel()
		return r.fail(fmt.Errorf("create receiver: %w", err))
	}
	r.receiver, r.linkCtx, r.cancelLink = receiver, linkCtx, cancel
	r.log.Debug().Str("source", r.cfg.Source).Uint32("prefetch", r.cfg.Prefetch).Msg("receiver created")
	if err := receiver.Open(); err != nil {
		return r.fail(fmt.Errorf("open receiver: %w", err))
	}
	r.observe(receiver.State())
	r.progress()
	if err := r.advance(ctx); err != nil {
		return err
	}
	r.lastActivity = r.clock.Now()
	return nil
}

// checkIdle decides whether the receiver has been idle for IdleTimeout.
// The shutdown itself happens on the next DoWork.
func (r *ReceiveClient) checkIdle() {
	if r.cfg.IdleTimeout > 0 {
		now := r.clock.Now()
		switch {
		case r.received.Load() || r.lastActivity.IsZero():
			r.lastActivity = now
		case now.Sub(r.lastActivity) >= r.cfg.IdleTimeout:
			r.log.Debug().Dur("idle", now.Sub(r.lastActivity)).Msg("idle timeout")
			r.shutdown = true
		}
	}
	r.received.Store(false)
}

// onDelivery is the receiver's DeliveryHandler, called inside DoWork.
func (r *ReceiveClient) onDelivery(ctx context.Context, linkCtx context.Context, d proton.Delivery) {
	r.received.Store(true)
	r.progress()
	m := d.Message()
	if r.transform != nil {
		m = r.transform(m)
	}
	rm := newReceivedMessage(m, d, r, linkCtx)
	if h := r.handler; h != nil {
		rm.take()
		h(ctx, rm)
		rm.complete()
		if !r.cfg.ManualSettle && rm.claim() {
			rm.apply(proton.Accepted)
		}
		return
	}
	r.admit(ctx, rm)
}

// admit puts rm on the queue and starts waiting for it to be consumed. If
// the queue stays full past the admission timeout, or ctx is done, rm is
// abandoned.
func (r *ReceiveClient) admit(ctx context.Context, rm *ReceivedMessage) {
	timeout := r.cfg.AdmissionTimeout
	select {
	case r.queue <- rm:
	default:
		r.log.Debug().Int("queued", len(r.queue)).Msg("delivery queue full")
		select {
		case r.queue <- rm:
		case <-r.clock.After(timeout):
			r.abandonNow(rm, Timeout)
			return
		case <-ctx.Done():
			r.abandonNow(rm, ctx.Err())
			return
		case <-rm.linkCtx.Done():
			r.abandonNow(rm, ErrClosed)
			return
		}
	}
	expired := r.clock.After(timeout)
	r.waiters.Add(1)
	go r.await(rm, expired)
}

func (r *ReceiveClient) abandonNow(rm *ReceivedMessage, cause error) {
	r.log.Warn().Err(cause).Msg("delivery not queued, abandoning")
	if rm.abandoned() {
		rm.apply(proton.Modified)
	}
	rm.complete()
}

// await waits for the consumer to finish with a queued message. A message
// that is not consumed before expired fires is abandoned.
func (r *ReceiveClient) await(rm *ReceivedMessage, expired <-chan time.Time) {
	defer r.waiters.Done()
	select {
	case <-rm.done:
		r.autoSettle(rm)
	case <-expired:
		select {
		case <-rm.done:
			r.autoSettle(rm)
			return
		default:
		}
		if rm.abandoned() {
			r.log.Warn().Msg("delivery not consumed in time, abandoning")
			_ = r.Inject(func() { rm.apply(proton.Modified) })
		}
	case <-rm.linkCtx.Done():
		select {
		case <-rm.done:
			r.autoSettle(rm)
		default:
		}
	}
}

func (r *ReceiveClient) autoSettle(rm *ReceivedMessage) {
	if !r.cfg.ManualSettle && rm.claim() {
		_ = r.Inject(func() { rm.apply(proton.Accepted) })
	}
}

// drainAvailable takes up to max queued messages without blocking, skipping
// abandoned ones.
func (r *ReceiveClient) drainAvailable(max int) []*ReceivedMessage {
	var out []*ReceivedMessage
	for len(out) < max {
		select {
		case rm := <-r.queue:
			if rm.take() {
				out = append(out, rm)
			}
		default:
			return out
		}
	}
	return out
}

// takeBatch drains up to max messages and resolves their completion signals.
func (r *ReceiveClient) takeBatch(max int) []*ReceivedMessage {
	out := r.drainAvailable(max)
	for _, rm := range out {
		rm.complete()
	}
	return out
}

// ReceiveMessages calls handler for every message until the client stops
// (idle timeout or Close) or ctx is done. The handler is kept for the
// lifetime of the client and deliveries are not queued.
func (r *ReceiveClient) ReceiveMessages(ctx context.Context, handler MessageHandler) error {
	if handler == nil {
		return fmt.Errorf("%w: message handler is nil", ErrInvalidConfig)
	}
	r.mu.Lock()
	r.handler = handler
	err := r.openLocked(ctx)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	if _, err := r.pump(ctx, r.DoWork, nil); err != nil {
		return err
	}
	return r.closeOnDone()
}

// ReceiveMessageBatch returns up to max messages. Already queued messages
// are returned first; if there are fewer than max the link is driven, taking
// messages as they are queued, until there are max, the client stops or
// timeout expires. A timeout of 0 waits until enough messages arrive or the
// client stops. max <= 0 means the prefetch. Fewer than max messages is not
// an error.
func (r *ReceiveClient) ReceiveMessageBatch(ctx context.Context, max int, timeout time.Duration) ([]*ReceivedMessage, error) {
	if max <= 0 {
		max = cap(r.queue)
	}
	out := r.takeBatch(max)
	if len(out) >= max {
		return out, nil
	}
	if err := r.Open(ctx); err != nil {
		return out, err
	}
	parent := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	step := func(ctx context.Context) (bool, error) {
		more, err := r.DoWork(ctx)
		out = append(out, r.takeBatch(max-len(out))...)
		return more, err
	}
	_, err := r.pump(ctx, step, func() bool { return len(out) >= max })
	if err != nil && !(errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil) {
		return out, err
	}
	return out, r.closeOnDone()
}

// Messages returns a sequence of received messages. It drives the link
// until a message is queued, yields it, and resolves its completion signal
// when the loop body returns. The sequence ends when the client stops, and
// yields a final error if the client fails or ctx is done. It can be ranged
// over only once.
func (r *ReceiveClient) Messages(ctx context.Context) iter.Seq2[*ReceivedMessage, error] {
	return func(yield func(*ReceivedMessage, error) bool) {
		if !r.iterating.CompareAndSwap(false, true) {
			yield(nil, ErrIteratorConsumed)
			return
		}
		if err := r.Open(ctx); err != nil {
			yield(nil, err)
			return
		}
		queued := func() bool { return len(r.queue) > 0 }
		for {
			more, err := r.pump(ctx, r.DoWork, queued)
			for _, rm := range r.drainAvailable(1) {
				ok := yield(rm, nil)
				rm.complete()
				if !ok {
					return
				}
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !more && len(r.queue) == 0 {
				break
			}
		}
		if err := r.closeOnDone(); err != nil {
			yield(nil, err)
		}
	}
}

func (r *ReceiveClient) closeOnDone() error {
	if r.cfg.CloseOnDone {
		return r.Close()
	}
	return nil
}

// cancel stops the delivery waiters; their settlements are injected before
// the receiver is destroyed.
func (r *ReceiveClient) cancel() {
	if r.cancelLink != nil {
		r.cancelLink()
	}
	r.waiters.Wait()
}

func (r *ReceiveClient) destroyLink() error {
	if r.receiver == nil {
		return nil
	}
	err := r.receiver.Destroy()
	r.receiver = nil
	if err != nil {
		return fmt.Errorf("destroy receiver: %w", err)
	}
	return nil
}

// reset empties the queue, the remote sender delivers unsettled messages again.
func (r *ReceiveClient) reset() {
	for {
		select {
		case rm := <-r.queue:
			rm.state.Store(deliveryAbandoned)
			rm.complete()
			continue
		default:
		}
		break
	}
	r.cancelLink = nil
	r.linkCtx = nil
	r.shutdown = false
	r.lastActivity = time.Time{}
	r.received.Store(false)
}
