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
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qpid.apache.org/linkengine/amqp"
	"qpid.apache.org/linkengine/internal/test"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newSender(t *testing.T, configure func(*test.Sender), opts ...Option) (*SendClient, *test.Connection) {
	t.Helper()
	conn := test.NewConnection(nil)
	if configure != nil {
		conn.Configure = func(l any) {
			if s, ok := l.(*test.Sender); ok {
				configure(s)
			}
		}
	}
	c, err := NewSendClient(&test.Dialer{Conn: conn}, nil, "q", opts...)
	require.NoError(t, err)
	return c, conn
}

func bodies(ms []amqp.Message) []interface{} {
	var out []interface{}
	for _, m := range ms {
		out = append(out, m.Body())
	}
	return out
}

func TestSendMessageReturnsComplete(t *testing.T) {
	c, conn := newSender(t, nil)
	m := amqp.NewMessageWith("hello")
	out, err := c.SendMessage(context.Background(), m, CorrelationValue(42))
	require.NoError(t, err)
	assert.Equal(t, Outcome{Status: Sent, Value: 42}, out)
	assert.Equal(t, []amqp.Message{m}, conn.LastSender().Sent())
}

func TestSendAllMessages(t *testing.T) {
	c, conn := newSender(t, nil)
	var pms []*PendingMessage
	for _, body := range []string{"a", "b", "c"} {
		pms = append(pms, c.QueueMessage(amqp.NewMessageWith(body)))
	}
	assert.Equal(t, 3, c.Pending())

	require.NoError(t, c.SendAllMessages(context.Background()))
	for _, pm := range pms {
		assert.Equal(t, Complete, pm.State())
		assert.Equal(t, Sent, pm.Outcome().Status)
	}
	assert.Equal(t, 0, c.Pending())
	assert.Equal(t, []interface{}{"a", "b", "c"}, bodies(conn.LastSender().Sent()))
	assert.Equal(t, uint64(3), c.completed.Load())
}

func TestNoSendBeforeLinkOpen(t *testing.T) {
	c, conn := newSender(t, func(s *test.Sender) { s.OpenAfter = 4 })
	c.QueueMessage(amqp.NewMessageWith(1))
	c.QueueMessage(amqp.NewMessageWith(2))
	require.NoError(t, c.SendAllMessages(context.Background()))

	s := conn.LastSender()
	assert.Equal(t, 0, s.SendsWhileNotOpen())
	assert.Equal(t, 2, s.SendCalls())
}

func TestSendFailureIsNotRetried(t *testing.T) {
	boom := errors.New("encode failed")
	c, conn := newSender(t, func(s *test.Sender) {
		s.SendErr = func(amqp.Message) error { return boom }
	})
	out, err := c.SendMessage(context.Background(), amqp.NewMessageWith("x"))
	require.NoError(t, err, "a message failure does not fail the client")
	assert.Equal(t, Failed, out.Status)
	assert.ErrorIs(t, out.Error, boom)

	doWork(t, c, 3)
	assert.Equal(t, 1, conn.LastSender().SendCalls())
	assert.Equal(t, 0, c.Pending())
	assert.NoError(t, c.Error())
}

func TestExpiredMessageIsNotSent(t *testing.T) {
	clock := test.NewClock(epoch)
	c, conn := newSender(t, nil, WithClock(clock), MessageTimeout(10*time.Second))
	pm := c.QueueMessage(amqp.NewMessageWith("late"))
	clock.Advance(11 * time.Second)

	require.NoError(t, c.SendAllMessages(context.Background()))
	out := pm.Outcome()
	assert.Equal(t, TimedOut, out.Status)
	assert.ErrorIs(t, out.Error, Timeout)
	assert.Equal(t, 0, conn.LastSender().SendCalls())
}

func TestRemainingTimeoutIsPassed(t *testing.T) {
	clock := test.NewClock(epoch)
	c, conn := newSender(t, nil, WithClock(clock), MessageTimeout(10*time.Second))
	c.QueueMessage(amqp.NewMessageWith(1))
	c.QueueMessage(amqp.NewMessageWith(2), SendTimeout(0))
	c.QueueMessage(amqp.NewMessageWith(3), SendTimeout(time.Minute))
	clock.Advance(4 * time.Second)

	require.NoError(t, c.SendAllMessages(context.Background()))
	assert.Equal(t, []time.Duration{6 * time.Second, 0, 56 * time.Second}, conn.LastSender().Timeouts())
}

func TestRemoteOutcomes(t *testing.T) {
	refused := amqp.Errorf(amqp.NotAllowed, "read only")
	c, _ := newSender(t, func(s *test.Sender) {
		s.Outcome = func(m amqp.Message) error {
			switch m.Body() {
			case "refuse":
				return refused
			case "slow":
				return Timeout
			}
			return nil
		}
	})
	ctx := context.Background()
	out, err := c.SendMessage(ctx, amqp.NewMessageWith("refuse"))
	require.NoError(t, err)
	assert.Equal(t, Failed, out.Status)
	assert.True(t, amqp.IsCondition(out.Error, amqp.NotAllowed))

	out, err = c.SendMessage(ctx, amqp.NewMessageWith("slow"))
	require.NoError(t, err)
	assert.Equal(t, TimedOut, out.Status)

	out, err = c.SendMessage(ctx, amqp.NewMessageWith("ok"))
	require.NoError(t, err)
	assert.Equal(t, Sent, out.Status)
}

func TestOnCompleteCalledOnce(t *testing.T) {
	c, _ := newSender(t, nil)
	var got []Outcome
	pm := c.QueueMessage(amqp.NewMessageWith("x"), CorrelationValue("v"), OnComplete(func(o Outcome) { got = append(got, o) }))
	require.NoError(t, c.SendAllMessages(context.Background()))
	require.NoError(t, c.Close())

	assert.Equal(t, []Outcome{{Status: Sent, Value: "v"}}, got)
	out, err := pm.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Sent, out.Status)
}

func TestCloseFailsPendingMessages(t *testing.T) {
	c, conn := newSender(t, func(s *test.Sender) { s.Hold = true })
	sent := c.QueueMessage(amqp.NewMessageWith("unsettled"))
	require.NoError(t, c.Open(context.Background()))
	doWork(t, c, 3)
	assert.Equal(t, WaitingForAck, sent.State())
	queued := c.QueueMessage(amqp.NewMessageWith("queued"))

	require.NoError(t, c.Close())
	for _, pm := range []*PendingMessage{sent, queued} {
		out := pm.Outcome()
		assert.Equal(t, Failed, out.Status)
		assert.ErrorIs(t, out.Error, ErrClosed)
	}
	assert.Equal(t, 0, c.Pending())
	assert.Equal(t, 1, conn.LastSender().SendCalls())
}

func TestSendMessageContextDone(t *testing.T) {
	c, _ := newSender(t, func(s *test.Sender) { s.Hold = true })
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	out, err := c.SendMessage(ctx, amqp.NewMessageWith("held"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Unsent, out.Status)
	assert.Equal(t, 1, c.Pending())
	assert.NoError(t, c.Error())
	require.NoError(t, c.Close())
}

func TestCloseOnDone(t *testing.T) {
	c, conn := newSender(t, nil, CloseOnDone(true))
	_, err := c.SendMessage(context.Background(), amqp.NewMessageWith("x"))
	require.NoError(t, err)
	assert.False(t, c.IsOpen())
	assert.Equal(t, 1, conn.Destroys())
}

func TestSendDoWorkClosed(t *testing.T) {
	c, _ := newSender(t, nil)
	assert.ErrorIs(t, c.DoWork(context.Background()), ErrClosed)
}

func TestMessageStateOnlyMovesForward(t *testing.T) {
	pm := newPendingMessage(amqp.NewMessage(), epoch, nil)
	assert.True(t, pm.advance(WaitingForAck))
	assert.False(t, pm.advance(WaitingToBeSent))
	assert.True(t, pm.finalize(Sent, nil))
	assert.False(t, pm.finalize(Failed, errors.New("late")))
	assert.False(t, pm.advance(WaitingForAck))
	assert.Equal(t, Complete, pm.State())
	assert.Equal(t, Sent, pm.Outcome().Status)
	assert.Equal(t, "timed-out", TimedOut.String())
	assert.Equal(t, "waiting-for-ack", WaitingForAck.String())
}

func TestCompleteStateHasOutcome(t *testing.T) {
	c, _ := newSender(t, nil)
	defer func() { require.NoError(t, c.Close()) }()
	pm := c.QueueMessage(amqp.NewMessageWith("x"))
	seen := make(chan Outcome)
	go func() {
		for pm.State() != Complete {
			runtime.Gosched()
		}
		seen <- pm.Outcome()
	}()
	require.NoError(t, c.SendAllMessages(context.Background()))
	assert.Equal(t, Sent, (<-seen).Status)
}

func TestPendingNeverNegative(t *testing.T) {
	c, _ := newSender(t, nil)
	defer func() { require.NoError(t, c.Close()) }()
	ctx := context.Background()
	require.NoError(t, c.Open(ctx))

	stop := make(chan struct{})
	lowest := make(chan int)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		low := 0
		for {
			select {
			case <-stop:
				lowest <- low
				return
			default:
			}
			if err := c.DoWork(ctx); err != nil {
				t.Error(err)
			}
			low = min(low, c.Pending())
		}
	}()
	for i := 0; i < 200; i++ {
		c.QueueMessage(amqp.NewMessageWith(i))
		runtime.Gosched()
	}
	close(stop)
	assert.Equal(t, 0, <-lowest)
	wg.Wait()
	require.NoError(t, c.SendAllMessages(ctx))
	assert.Equal(t, 0, c.Pending())
}
