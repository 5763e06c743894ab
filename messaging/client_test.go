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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"qpid.apache.org/linkengine/amqp"
	"qpid.apache.org/linkengine/internal/mock"
	"qpid.apache.org/linkengine/internal/test"
	"qpid.apache.org/linkengine/proton"
)

// doWork calls DoWork n times and fails on the first error.
func doWork(t *testing.T, c interface {
	DoWork(context.Context) error
}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, c.DoWork(context.Background()))
	}
}

func TestOpenTwiceCreatesOneSession(t *testing.T) {
	d := &test.Dialer{}
	c, err := NewSendClient(d, test.Auth{}, "q")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Open(ctx))
	require.NoError(t, c.Open(ctx))

	assert.Equal(t, 1, d.Dials())
	assert.Len(t, d.Conn.Sessions(), 1)
	assert.True(t, c.IsOpen())
	assert.Same(t, d.Conn.Sessions()[0], c.Session())
}

func TestCloseTwiceTearsDownOnce(t *testing.T) {
	d := &test.Dialer{}
	c, err := NewSendClient(d, test.Auth{}, "q")
	require.NoError(t, err)
	require.NoError(t, c.Open(context.Background()))
	doWork(t, c, 2)
	sender := d.Conn.LastSender()
	require.NotNil(t, sender)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.Equal(t, 1, sender.Destroys())
	assert.Equal(t, 1, d.Conn.Sessions()[0].Destroys())
	assert.Equal(t, 1, d.Conn.Destroys())
	assert.Nil(t, c.Session())
	assert.False(t, c.IsOpen())
	select {
	case <-c.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestBorrowedConnectionIsNotDestroyed(t *testing.T) {
	conn := test.NewConnection(test.Auth{})
	c, err := NewSendClient(nil, nil, "q", WithConnection(conn))
	require.NoError(t, err)

	out, err := c.SendMessage(context.Background(), amqp.NewMessageWith("x"))
	require.NoError(t, err)
	assert.Equal(t, Sent, out.Status)
	require.NoError(t, c.Close())

	assert.Equal(t, 0, conn.Destroys())
	// The session was begun by the client so it is destroyed.
	require.Len(t, conn.Sessions(), 1)
	assert.Equal(t, 1, conn.Sessions()[0].Destroys())
}

func TestBorrowedConnectionStrict(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := mock.NewMockConnection(ctrl)
	sess := mock.NewMockSession(ctrl)

	conn.EXPECT().ContainerID().Return("borrowed")
	conn.EXPECT().Auth().Return(nil)
	conn.EXPECT().CBS().Return(nil).AnyTimes()
	conn.EXPECT().NewSession(gomock.Any(), proton.SessionSettings{
		OutgoingWindow: DefaultWindow,
		IncomingWindow: DefaultWindow,
		HandleMax:      DefaultHandleMax,
	}).Return(sess, nil)
	sess.EXPECT().Destroy().Return(nil)
	// No conn.Destroy expectation: destroying a borrowed connection fails the test.

	c, err := NewReceiveClient(nil, nil, "q", WithConnection(conn))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.LinkName(), "receiver-borrowed@"))
	require.NoError(t, c.Open(context.Background()))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestOwnedConnectionStrictTeardownOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	dialer := mock.NewMockDialer(ctrl)
	conn := mock.NewMockConnection(ctrl)
	sess := mock.NewMockSession(ctrl)
	sender := mock.NewMockSender(ctrl)

	dialer.EXPECT().Dial(gomock.Any(), gomock.Any(), gomock.Nil()).Return(conn, nil)
	conn.EXPECT().CBS().Return(nil).AnyTimes()
	conn.EXPECT().NewSession(gomock.Any(), gomock.Any()).Return(sess, nil)
	sess.EXPECT().NewSender(gomock.Any()).Return(sender, nil)
	sender.EXPECT().Open().Return(nil)
	sender.EXPECT().State().Return(proton.LinkOpening).AnyTimes()
	conn.EXPECT().Advance(gomock.Any()).Return(nil).AnyTimes()

	gomock.InOrder(
		sender.EXPECT().Destroy().Return(nil),
		sess.EXPECT().Destroy().Return(nil),
		conn.EXPECT().Destroy().Return(nil),
	)

	c, err := NewSendClient(dialer, nil, "q")
	require.NoError(t, err)
	require.NoError(t, c.Open(context.Background()))
	doWork(t, c, 3)
	require.NoError(t, c.Close())
}

func TestSenderHandsMessageToLink(t *testing.T) {
	ctrl := gomock.NewController(t)
	dialer := mock.NewMockDialer(ctrl)
	conn := mock.NewMockConnection(ctrl)
	sess := mock.NewMockSession(ctrl)
	sender := mock.NewMockSender(ctrl)

	var settle proton.SettleFunc
	dialer.EXPECT().Dial(gomock.Any(), gomock.Any(), gomock.Nil()).Return(conn, nil)
	conn.EXPECT().CBS().Return(nil).AnyTimes()
	conn.EXPECT().NewSession(gomock.Any(), gomock.Any()).Return(sess, nil)
	sess.EXPECT().NewSender(gomock.Any()).Return(sender, nil)
	sender.EXPECT().Open().Return(nil)
	sender.EXPECT().Name().Return("snd").AnyTimes()
	sender.EXPECT().Error().Return(nil).AnyTimes()
	sender.EXPECT().State().Return(proton.LinkOpen).AnyTimes()
	sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(msg amqp.Message, timeout time.Duration, settled proton.SettleFunc) error {
			assert.Equal(t, "x", msg.Body())
			settle = settled
			return nil
		})
	conn.EXPECT().Advance(gomock.Any()).DoAndReturn(func(context.Context) error {
		if settle != nil {
			settle(nil)
			settle = nil
		}
		return nil
	}).AnyTimes()
	sender.EXPECT().Destroy().Return(nil)
	sess.EXPECT().Destroy().Return(nil)
	conn.EXPECT().Destroy().Return(nil)

	c, err := NewSendClient(dialer, nil, "q")
	require.NoError(t, err)
	out, err := c.SendMessage(context.Background(), amqp.NewMessageWith("x"))
	require.NoError(t, err)
	assert.Equal(t, Sent, out.Status)
	require.NoError(t, c.Close())
}

func TestCloseContinuesPastErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	dialer := mock.NewMockDialer(ctrl)
	conn := mock.NewMockConnection(ctrl)
	sess := mock.NewMockSession(ctrl)

	first := errors.New("session destroy failed")
	dialer.EXPECT().Dial(gomock.Any(), gomock.Any(), gomock.Any()).Return(conn, nil)
	conn.EXPECT().CBS().Return(nil).AnyTimes()
	conn.EXPECT().NewSession(gomock.Any(), gomock.Any()).Return(sess, nil)
	sess.EXPECT().Destroy().Return(first)
	conn.EXPECT().Destroy().Return(errors.New("second"))

	c, err := NewSendClient(dialer, nil, "q")
	require.NoError(t, err)
	require.NoError(t, c.Open(context.Background()))
	assert.Same(t, first, c.Close())
	assert.False(t, c.IsOpen())
}

func TestOwnedCBSIsClosed(t *testing.T) {
	d := &test.Dialer{}
	c, err := NewSendClient(d, test.Auth{CBS: true}, "q")
	require.NoError(t, err)
	require.NoError(t, c.Open(context.Background()))
	doWork(t, c, 2)

	conn := d.Conn
	cbs := conn.CBSSpy()
	require.NotNil(t, cbs)
	assert.Equal(t, 1, conn.CBSCreated())
	assert.Empty(t, conn.Sessions(), "the cbs session hosts the link")
	assert.Same(t, cbs.SessionSpy(), c.Session())
	assert.Equal(t, 1, cbs.SessionSpy().Links())

	require.NoError(t, c.Close())
	assert.Equal(t, 1, cbs.Closes())
	assert.Nil(t, conn.CBS())
	assert.Equal(t, 0, cbs.SessionSpy().Destroys())
	assert.Equal(t, 1, conn.Destroys())
}

func TestSharedCBSSession(t *testing.T) {
	conn := test.NewConnection(test.Auth{CBS: true})
	a, err := NewSendClient(nil, nil, "a", WithConnection(conn))
	require.NoError(t, err)
	b, err := NewReceiveClient(nil, nil, "b", WithConnection(conn))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Open(ctx))
	require.NoError(t, b.Open(ctx))
	assert.Equal(t, 1, conn.CBSCreated())
	assert.Same(t, a.Session(), b.Session())

	require.NoError(t, a.Close())
	require.NoError(t, b.Close())
	cbs := conn.CBSSpy()
	require.NotNil(t, cbs, "a borrowed connection keeps its authenticator")
	assert.Equal(t, 0, cbs.Closes())
	assert.Equal(t, 0, cbs.SessionSpy().Destroys())
	assert.Equal(t, 0, conn.Destroys())
}

func TestAuthInProgressDefersLink(t *testing.T) {
	conn := test.NewConnection(test.Auth{CBS: true})
	conn.CBSSteps = []test.CBSStep{{InProgress: true}, {InProgress: true}}
	d := &test.Dialer{Conn: conn}
	c, err := NewSendClient(d, test.Auth{CBS: true}, "q")
	require.NoError(t, err)
	require.NoError(t, c.Open(context.Background()))

	doWork(t, c, 2)
	assert.Equal(t, 0, conn.CBSSpy().SessionSpy().Links())
	assert.Equal(t, 2, conn.Advances())

	doWork(t, c, 1)
	assert.Equal(t, 1, conn.CBSSpy().SessionSpy().Links())
	assert.Equal(t, 3, conn.CBSSpy().Calls())
}

func TestAuthTimeoutIsFatal(t *testing.T) {
	conn := test.NewConnection(test.Auth{CBS: true})
	conn.CBSSteps = []test.CBSStep{{TimedOut: true}}
	c, err := NewSendClient(&test.Dialer{Conn: conn}, test.Auth{CBS: true}, "q")
	require.NoError(t, err)
	require.NoError(t, c.Open(context.Background()))

	err = c.DoWork(context.Background())
	require.ErrorIs(t, err, ErrAuthTimeout)
	assert.ErrorIs(t, c.Error(), ErrAuthTimeout)
	assert.Equal(t, 0, conn.CBSSpy().SessionSpy().Links())
	require.NoError(t, c.Close())
}

func TestDialErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	c, err := NewSendClient(&test.Dialer{Err: boom}, nil, "q")
	require.NoError(t, err)
	assert.ErrorIs(t, c.Open(context.Background()), boom)
	assert.False(t, c.IsOpen())
	assert.ErrorIs(t, c.DoWork(context.Background()), ErrClosed)
}

func TestFailedOpenDestroysDialedConnection(t *testing.T) {
	boom := errors.New("no sessions")
	conn := test.NewConnection(nil)
	conn.SessionErr = boom
	c, err := NewReceiveClient(&test.Dialer{Conn: conn}, nil, "q")
	require.NoError(t, err)
	assert.ErrorIs(t, c.Open(context.Background()), boom)
	assert.Equal(t, 1, conn.Destroys())
	assert.False(t, c.IsOpen())
}

func TestLinkErrorIsFatal(t *testing.T) {
	detached := amqp.Errorf(amqp.NotFound, "no such node")
	conn := test.NewConnection(nil)
	conn.Configure = func(l any) {
		if s, ok := l.(*test.Sender); ok {
			s.FailWith = detached
		}
	}
	c, err := NewSendClient(&test.Dialer{Conn: conn}, nil, "missing")
	require.NoError(t, err)
	require.NoError(t, c.Open(context.Background()))

	doWork(t, c, 1)
	err = c.DoWork(context.Background())
	var linkErr *LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, proton.LinkError, linkErr.State)
	assert.Equal(t, c.LinkName(), linkErr.Link)
	assert.True(t, amqp.IsCondition(err, amqp.NotFound))
	assert.Equal(t, 0, conn.LastSender().SendCalls())
}

func TestLinkSettings(t *testing.T) {
	d := &test.Dialer{}
	props := amqp.Map{"x-opt": "v"}
	c, err := NewSendClient(d, nil, "q",
		LinkName("my-link"), AtMostOnce(), MaxMessageSize(1024), LinkProperties(props),
		ContainerID("box"), Hostname("example.com"), MaxFrameSize(4096), ChannelMax(8))
	require.NoError(t, err)
	require.NoError(t, c.Open(context.Background()))
	doWork(t, c, 1)

	ls := d.Conn.LastSender().Settings()
	assert.Equal(t, "my-link", ls.Name)
	assert.Equal(t, "q", ls.Target)
	assert.Equal(t, proton.SndSettled, ls.SndSettle)
	assert.Equal(t, proton.RcvFirst, ls.RcvSettle)
	assert.Equal(t, uint64(1024), ls.MaxMessageSize)
	assert.Equal(t, props, ls.Properties)

	cs := d.Settings()
	assert.Equal(t, "box", cs.ContainerID)
	assert.Equal(t, "example.com", cs.Hostname)
	assert.Equal(t, uint32(4096), cs.MaxFrameSize)
	assert.Equal(t, uint16(8), cs.ChannelMax)
}

func TestGeneratedLinkNamesAreUnique(t *testing.T) {
	a, err := NewSendClient(&test.Dialer{}, nil, "q", ContainerID("box"))
	require.NoError(t, err)
	b, err := NewSendClient(&test.Dialer{}, nil, "q", ContainerID("box"))
	require.NoError(t, err)
	assert.NotEqual(t, a.LinkName(), b.LinkName())
	assert.True(t, strings.HasPrefix(a.LinkName(), "sender-box@"))
}

func TestInvalidConfig(t *testing.T) {
	_, err := NewSendClient(&test.Dialer{}, nil, "")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewSendClient(nil, nil, "q")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewReceiveClient(&test.Dialer{}, nil, "q", Prefetch(0))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewReceiveClient(&test.Dialer{}, nil, "q", MaxFrameSize(100))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewReceiveClient(&test.Dialer{}, nil, "q", AdmissionTimeout(0))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestWithConfigOverridesNonZero(t *testing.T) {
	c, err := NewReceiveClient(&test.Dialer{}, nil, "q",
		WithConfig(Config{Prefetch: 7, CloseOnDone: true, ManualSettle: true}))
	require.NoError(t, err)
	cfg := c.Config()
	assert.Equal(t, uint32(7), cfg.Prefetch)
	assert.Equal(t, uint32(DefaultWindow), cfg.IncomingWindow)
	assert.Equal(t, DefaultAdmissionTimeout, cfg.AdmissionTimeout)
	assert.True(t, cfg.CloseOnDone)
	assert.True(t, cfg.ManualSettle)
	assert.Equal(t, 7, c.Capacity())
}
