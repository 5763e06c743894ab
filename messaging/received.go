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
	"sync"
	"sync/atomic"

	"qpid.apache.org/linkengine/amqp"
	"qpid.apache.org/linkengine/proton"
)

// Queue state of a ReceivedMessage.
const (
	deliveryQueued int32 = iota
	deliveryTaken
	deliveryAbandoned
)

// ReceivedMessage contains an amqp.Message and allows the message to be
// settled. Settlement is applied to the link by the next DoWork.
type ReceivedMessage struct {
	// Message is the received message.
	Message amqp.Message

	delivery proton.Delivery
	client   *ReceiveClient
	linkCtx  context.Context

	state   atomic.Int32
	settled atomic.Bool
	done    chan struct{}
	once    sync.Once
}

func newReceivedMessage(m amqp.Message, d proton.Delivery, r *ReceiveClient, linkCtx context.Context) *ReceivedMessage {
	return &ReceivedMessage{Message: m, delivery: d, client: r, linkCtx: linkCtx, done: make(chan struct{})}
}

// Done returns a channel that is closed when the consumer has finished with
// the message: when it was drained by ReceiveMessageBatch, when the loop
// body of Messages returned, or when a handler returned.
func (rm *ReceivedMessage) Done() <-chan struct{} { return rm.done }

// Accept tells the sender that we take responsibility for processing the message.
func (rm *ReceivedMessage) Accept() error { return rm.settle(proton.Accepted) }

// Reject tells the sender we consider the message invalid and unusable.
func (rm *ReceivedMessage) Reject() error { return rm.settle(proton.Rejected) }

// Release tells the sender we will not process the message but some other
// receiver might.
func (rm *ReceivedMessage) Release() error { return rm.settle(proton.Released) }

// Abandon tells the sender to deliver the message again, with an
// incremented delivery count.
func (rm *ReceivedMessage) Abandon() error { return rm.settle(proton.Modified) }

func (rm *ReceivedMessage) settle(o proton.DeliveryOutcome) error {
	if rm.linkCtx.Err() != nil {
		return ErrClosed
	}
	if !rm.claim() {
		if rm.state.Load() == deliveryAbandoned {
			return ErrDeliveryAbandoned
		}
		return amqp.Errorf(amqp.IllegalState, "delivery already settled")
	}
	return rm.client.Inject(func() { rm.apply(o) })
}

// claim reserves the single settlement of the delivery.
func (rm *ReceivedMessage) claim() bool { return rm.settled.CompareAndSwap(false, true) }

// apply settles the delivery, call only from the goroutine driving the link.
func (rm *ReceivedMessage) apply(o proton.DeliveryOutcome) {
	if err := rm.delivery.Settle(o); err != nil {
		rm.client.log.Warn().Err(err).Stringer("outcome", o).Msg("settle failed")
		return
	}
	rm.client.progress()
}

// take moves a queued message to the consumer, false if it was abandoned.
func (rm *ReceivedMessage) take() bool {
	return rm.state.CompareAndSwap(deliveryQueued, deliveryTaken)
}

// complete resolves the completion signal.
func (rm *ReceivedMessage) complete() { rm.once.Do(func() { close(rm.done) }) }

// abandoned marks the message so drains skip it, and reports whether the
// abandon settlement should be sent.
func (rm *ReceivedMessage) abandoned() bool {
	rm.state.Store(deliveryAbandoned)
	return rm.claim()
}
