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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qpid.apache.org/linkengine/amqp"
	"qpid.apache.org/linkengine/auth"
	"qpid.apache.org/linkengine/proton"
)

type harness struct {
	t    *testing.T
	b    *Broker
	conn proton.Connection
	sn   proton.Session
	got  []proton.Delivery
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	b := New(opts...)
	conn, err := b.Dial(context.Background(), proton.ConnectionSettings{ContainerID: "test"}, auth.Anonymous())
	require.NoError(t, err)
	sn, err := conn.NewSession(context.Background(), proton.SessionSettings{})
	require.NoError(t, err)
	return &harness{t: t, b: b, conn: conn, sn: sn}
}

func (h *harness) advance(n int) {
	h.t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(h.t, h.conn.Advance(context.Background()))
	}
}

func (h *harness) sender(target string) proton.Sender {
	h.t.Helper()
	s, err := h.sn.NewSender(proton.LinkSettings{Name: "snd-" + target, Target: target})
	require.NoError(h.t, err)
	require.NoError(h.t, s.Open())
	h.advance(1)
	require.Equal(h.t, proton.LinkOpen, s.State())
	return s
}

func (h *harness) receiver(source string, prefetch uint32) proton.Receiver {
	h.t.Helper()
	r, err := h.sn.NewReceiver(proton.LinkSettings{Name: "rcv-" + source, Source: source, Prefetch: prefetch},
		func(ctx context.Context, d proton.Delivery) { h.got = append(h.got, d) })
	require.NoError(h.t, err)
	require.NoError(h.t, r.Open())
	return r
}

func (h *harness) bodies() []interface{} {
	var out []interface{}
	for _, d := range h.got {
		out = append(out, d.Message().Body())
	}
	return out
}

func TestSendAndReceive(t *testing.T) {
	h := newHarness(t)
	s := h.sender("q")
	var outcomes []error
	for _, body := range []string{"a", "b", "c"} {
		m := amqp.NewMessageWith(body)
		m.ApplicationProperties()["k"] = body
		require.NoError(t, s.Send(m, 0, func(err error) { outcomes = append(outcomes, err) }))
	}
	assert.Empty(t, outcomes, "settled on the next advance")
	h.advance(1)
	assert.Equal(t, []error{nil, nil, nil}, outcomes)
	assert.Equal(t, 3, h.b.Depth("q"))

	h.receiver("q", 10)
	h.advance(1)
	assert.Equal(t, []interface{}{"a", "b", "c"}, h.bodies())
	assert.Equal(t, "b", h.got[1].Message().ApplicationProperties()["k"])
	assert.Equal(t, 0, h.b.Depth("q"))
	assert.Equal(t, Stats{Transfers: 3, Deliveries: 3}, h.b.Stats())
}

func TestCreditBoundsDeliveries(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.b.Push("q", msgs("1", "2", "3", "4", "5")...))
	h.receiver("q", 2)
	h.advance(3)
	assert.Equal(t, []interface{}{"1", "2"}, h.bodies())

	require.NoError(t, h.got[0].Settle(proton.Accepted))
	h.advance(1)
	assert.Equal(t, []interface{}{"1", "2", "3"}, h.bodies())
	assert.Equal(t, 2, h.b.Depth("q"))
}

func TestSettlementOutcomes(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.b.Push("q", msgs("accepted", "rejected", "released", "modified")...))
	h.receiver("q", 4)
	h.advance(2)
	require.Len(t, h.got, 4)

	for i, o := range []proton.DeliveryOutcome{proton.Accepted, proton.Rejected, proton.Released, proton.Modified} {
		require.NoError(t, h.got[i].Settle(o))
	}
	assert.True(t, amqp.IsCondition(h.got[0].Settle(proton.Accepted), amqp.IllegalState))

	h.advance(1)
	require.Len(t, h.got, 6)
	redelivered := h.got[4:]
	assert.Equal(t, "modified", redelivered[0].Message().Body())
	assert.Equal(t, uint32(1), redelivered[0].Message().DeliveryCount())
	assert.Equal(t, "released", redelivered[1].Message().Body())
	assert.Equal(t, uint32(0), redelivered[1].Message().DeliveryCount())
}

func TestDestroyReturnsUnsettled(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.b.Push("q", msgs("1", "2", "3")...))
	r := h.receiver("q", 10)
	h.advance(2)
	require.Len(t, h.got, 3)
	require.NoError(t, h.got[0].Settle(proton.Accepted))

	require.NoError(t, r.Destroy())
	assert.Equal(t, 2, h.b.Depth("q"))
	assert.True(t, amqp.IsCondition(h.got[1].Settle(proton.Accepted), amqp.LinkDetachForced))

	h.got = nil
	h.receiver("q", 10)
	h.advance(2)
	assert.Equal(t, []interface{}{"2", "3"}, h.bodies())
}

func TestFailSends(t *testing.T) {
	h := newHarness(t)
	s := h.sender("q")
	refused := amqp.Errorf(amqp.ResourceLimitExceeded, "full")
	h.b.FailSends(refused)
	var got error
	require.NoError(t, s.Send(amqp.NewMessageWith("x"), 0, func(err error) { got = err }))
	h.advance(1)
	assert.Equal(t, refused, got)
	assert.Equal(t, 0, h.b.Depth("q"))

	h.b.FailSends(nil)
	require.NoError(t, s.Send(amqp.NewMessageWith("y"), 0, func(err error) { got = err }))
	h.advance(1)
	assert.NoError(t, got)
}

func TestTransferTimeout(t *testing.T) {
	now := time.Unix(1000, 0)
	h := newHarness(t, WithClock(func() time.Time { return now }))
	s := h.sender("q")
	var got error
	require.NoError(t, s.Send(amqp.NewMessageWith("x"), time.Second, func(err error) { got = err }))
	now = now.Add(2 * time.Second)
	h.advance(1)
	assert.ErrorIs(t, got, proton.ErrTimeout)
}

func TestMessageSizeLimit(t *testing.T) {
	h := newHarness(t)
	s, err := h.sn.NewSender(proton.LinkSettings{Name: "small", Target: "q", MaxMessageSize: 16})
	require.NoError(t, err)
	require.NoError(t, s.Open())
	h.advance(1)
	err = s.Send(amqp.NewMessageWith("a body that does not fit"), 0, func(error) {})
	assert.True(t, amqp.IsCondition(err, amqp.LinkMessageSizeLimit), "got %v", err)
}

func TestSendBeforeAttach(t *testing.T) {
	h := newHarness(t)
	s, err := h.sn.NewSender(proton.LinkSettings{Name: "s", Target: "q"})
	require.NoError(t, err)
	require.NoError(t, s.Open())
	assert.Error(t, s.Send(amqp.NewMessageWith("x"), 0, func(error) {}))
	assert.Error(t, s.Open())
}

func TestSingleCredit(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.b.Push("q", msgs("1", "2")...))
	h.receiver("q", 1)
	h.advance(3)
	assert.Equal(t, []interface{}{"1"}, h.bodies())

	require.NoError(t, h.got[0].Settle(proton.Accepted))
	h.advance(2)
	assert.Equal(t, []interface{}{"1", "2"}, h.bodies())
}

func TestLinkErrorOn(t *testing.T) {
	h := newHarness(t)
	h.b.LinkErrorOn("missing", amqp.Errorf(amqp.NotFound, "no such node"))
	r := h.receiver("missing", 1)
	h.advance(1)
	assert.Equal(t, proton.LinkError, r.State())
	assert.True(t, amqp.IsCondition(r.Error(), amqp.NotFound))
}

func TestPlainUsers(t *testing.T) {
	b := New(WithUser("admin", "secret"))
	ctx := context.Background()
	_, err := b.Dial(ctx, proton.ConnectionSettings{}, auth.Plain("admin", "secret"))
	assert.NoError(t, err)
	_, err = b.Dial(ctx, proton.ConnectionSettings{}, auth.Plain("admin", "guess"))
	assert.True(t, amqp.IsCondition(err, amqp.UnauthorizedAccess))
	_, err = b.Dial(ctx, proton.ConnectionSettings{}, auth.Anonymous())
	assert.NoError(t, err)
}

func cbsConn(t *testing.T, b *Broker, h proton.AuthHandle) (proton.Connection, proton.CBSAuthenticator) {
	t.Helper()
	conn, err := b.Dial(context.Background(), proton.ConnectionSettings{}, h)
	require.NoError(t, err)
	a, err := conn.CreateCBSAuthenticator(context.Background())
	require.NoError(t, err)
	return conn, a
}

func TestCBSWithJWT(t *testing.T) {
	key := []byte("k")
	b := New(WithJWTKey("issuer", key))
	conn, a := cbsConn(t, b, auth.CBS("amqp://broker/q", auth.NewJWTProvider("issuer", "me", key, time.Hour)))
	ctx := context.Background()

	_, err := conn.CreateCBSAuthenticator(ctx)
	assert.True(t, amqp.IsCondition(err, amqp.IllegalState))

	timedOut, inProgress, err := a.HandleToken(ctx)
	require.NoError(t, err)
	assert.False(t, timedOut)
	assert.True(t, inProgress)
	timedOut, inProgress, err = a.HandleToken(ctx)
	require.NoError(t, err)
	assert.False(t, timedOut)
	assert.False(t, inProgress)

	r, err := a.Session().NewReceiver(proton.LinkSettings{Name: "r", Source: "q"}, func(context.Context, proton.Delivery) {})
	require.NoError(t, err)
	require.NoError(t, r.Open())
	require.NoError(t, conn.Advance(ctx))
	assert.Equal(t, proton.LinkOpen, r.State())
	require.NoError(t, a.Close())
}

func TestCBSWithSAS(t *testing.T) {
	key := []byte("k")
	b := New(WithSASKey("root", key))
	_, a := cbsConn(t, b, auth.CBS("amqp://broker/q", auth.NewSASProvider("root", key, time.Hour)))
	ctx := context.Background()
	_, _, err := a.HandleToken(ctx)
	require.NoError(t, err)
	_, inProgress, err := a.HandleToken(ctx)
	require.NoError(t, err)
	assert.False(t, inProgress)
}

func TestCBSRefusesBadToken(t *testing.T) {
	b := New(WithJWTKey("issuer", []byte("broker-key")))
	conn, a := cbsConn(t, b, auth.CBS("aud", auth.NewJWTProvider("issuer", "me", []byte("client-key"), time.Hour)))
	ctx := context.Background()
	_, _, err := a.HandleToken(ctx)
	require.NoError(t, err)
	_, _, err = a.HandleToken(ctx)
	assert.True(t, amqp.IsCondition(err, amqp.UnauthorizedAccess), "got %v", err)

	sn, err := conn.NewSession(ctx, proton.SessionSettings{})
	require.NoError(t, err)
	s, err := sn.NewSender(proton.LinkSettings{Name: "s", Target: "q"})
	require.NoError(t, err)
	require.NoError(t, s.Open())
	require.NoError(t, conn.Advance(ctx))
	assert.Equal(t, proton.LinkError, s.State())
}

func TestCBSTimeout(t *testing.T) {
	now := time.Unix(0, 0)
	b := New(WithAuthTimeout(time.Second), WithClock(func() time.Time { return now }))
	_, a := cbsConn(t, b, auth.CBS("aud", slowProvider{}))
	now = now.Add(2 * time.Second)
	timedOut, _, err := a.HandleToken(context.Background())
	require.NoError(t, err)
	assert.True(t, timedOut)
}

func TestCBSRequiresTokenAuth(t *testing.T) {
	b := New()
	conn, err := b.Dial(context.Background(), proton.ConnectionSettings{}, auth.Anonymous())
	require.NoError(t, err)
	_, err = conn.CreateCBSAuthenticator(context.Background())
	assert.True(t, amqp.IsCondition(err, amqp.NotAllowed))
}

func TestDestroyedConnection(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.conn.Destroy())
	require.NoError(t, h.conn.Destroy())
	assert.Error(t, h.conn.Advance(context.Background()))
	_, err := h.conn.NewSession(context.Background(), proton.SessionSettings{})
	assert.Error(t, err)
}

func TestCodecKeepsFields(t *testing.T) {
	c := newCodec()
	m := amqp.NewMessageWith("body")
	m.SetSubject("subject")
	m.SetDurable(true)
	m.SetCorrelationId("corr")
	m.MessageAnnotations()["x-opt"] = "v"
	data, err := c.encode(m, 0)
	require.NoError(t, err)
	got, err := c.decode(entry{data: data, redelivered: 2})
	require.NoError(t, err)
	assert.Equal(t, "body", got.Body())
	assert.Equal(t, "subject", got.Subject())
	assert.True(t, got.Durable())
	assert.Equal(t, m.MessageId(), got.MessageId())
	assert.Equal(t, "corr", got.CorrelationId())
	assert.Equal(t, uint32(2), got.DeliveryCount())
	assert.Equal(t, "v", got.MessageAnnotations()["x-opt"])

	_, err = c.decode(entry{data: []byte{0xff}})
	assert.Error(t, err)
}

type slowProvider struct{}

func (slowProvider) Token(context.Context, string) (proton.Token, error) {
	return proton.Token{}, errors.New("never reached")
}

func msgs(bodies ...string) []amqp.Message {
	ms := make([]amqp.Message, len(bodies))
	for i, b := range bodies {
		ms[i] = amqp.NewMessageWith(b)
	}
	return ms
}
