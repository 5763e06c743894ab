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
	"time"

	"qpid.apache.org/linkengine/amqp"
)

// Outcome provides information about the outcome of sending a message.
type Outcome struct {
	// Status of the message.
	Status SentStatus
	// Error is the reason for TimedOut or Failed, nil if the message was sent.
	Error error
	// Value provided by the application with CorrelationValue.
	Value interface{}
}

// SentStatus indicates the status of a sent message.
type SentStatus int

const (
	// Message has not completed yet
	Unsent SentStatus = iota
	// Message was sent and settled by the remote receiver (or sent pre-settled)
	Sent
	// Message was not sent within its timeout
	TimedOut
	// Message could not be sent or was refused by the receiver
	Failed
)

// String human readable name for SentStatus.
func (s SentStatus) String() string {
	switch s {
	case Unsent:
		return "unsent"
	case Sent:
		return "sent"
	case TimedOut:
		return "timed-out"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("invalid(%d)", int(s))
	}
}

// MessageState is the progress of a PendingMessage. It only moves forward.
type MessageState int32

const (
	WaitingToBeSent MessageState = iota
	WaitingForAck
	Complete
)

func (s MessageState) String() string {
	switch s {
	case WaitingToBeSent:
		return "waiting-to-be-sent"
	case WaitingForAck:
		return "waiting-for-ack"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("invalid(%d)", int32(s))
	}
}

// SendOption sets per message options for QueueMessage and SendMessage.
type SendOption func(*PendingMessage)

// OnComplete returns a SendOption that sets a function called once with the
// Outcome when the message completes. It is called from the goroutine that
// completes the message and must not block.
func OnComplete(f func(Outcome)) SendOption { return func(pm *PendingMessage) { pm.onComplete = f } }

// SendTimeout returns a SendOption that overrides the client MessageTimeout
// for one message, 0 disables the timeout.
func SendTimeout(d time.Duration) SendOption { return func(pm *PendingMessage) { pm.timeout = d } }

// CorrelationValue returns a SendOption that sets Outcome.Value.
func CorrelationValue(v interface{}) SendOption { return func(pm *PendingMessage) { pm.value = v } }

// PendingMessage tracks a message queued on a SendClient until it is Complete.
type PendingMessage struct {
	Message amqp.Message

	created    time.Time
	timeout    time.Duration // negative means use the client MessageTimeout
	value      interface{}
	onComplete func(Outcome)

	state   atomic.Int32
	once    sync.Once
	outcome Outcome
	done    chan struct{}
}

func newPendingMessage(m amqp.Message, now time.Time, opts []SendOption) *PendingMessage {
	pm := &PendingMessage{Message: m, created: now, timeout: -1, done: make(chan struct{})}
	for _, set := range opts {
		set(pm)
	}
	return pm
}

// State returns the current state.
func (pm *PendingMessage) State() MessageState { return MessageState(pm.state.Load()) }

// Created is the time the message was queued.
func (pm *PendingMessage) Created() time.Time { return pm.created }

// Done returns a channel that is closed when the message is Complete.
func (pm *PendingMessage) Done() <-chan struct{} { return pm.done }

// Outcome returns the result, Status is Unsent until the message is Complete.
func (pm *PendingMessage) Outcome() Outcome {
	select {
	case <-pm.done:
		return pm.outcome
	default:
		return Outcome{Status: Unsent, Value: pm.value}
	}
}

// Wait blocks until the message is Complete or ctx is done.
func (pm *PendingMessage) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-pm.done:
		return pm.outcome, nil
	case <-ctx.Done():
		return pm.Outcome(), ctx.Err()
	}
}

// advance moves the state forward to s, it reports false if the message
// was already at or past s.
func (pm *PendingMessage) advance(s MessageState) bool {
	for {
		cur := pm.state.Load()
		if cur >= int32(s) {
			return false
		}
		if pm.state.CompareAndSwap(cur, int32(s)) {
			return true
		}
	}
}

// finalize completes the message with status and err. Only the first call
// has an effect, it reports whether it was this one.
func (pm *PendingMessage) finalize(status SentStatus, err error) (first bool) {
	pm.once.Do(func() {
		first = true
		pm.outcome = Outcome{Status: status, Error: err, Value: pm.value}
		close(pm.done)
		pm.state.Store(int32(Complete))
		if pm.onComplete != nil {
			pm.onComplete(pm.outcome)
		}
	})
	return first
}
