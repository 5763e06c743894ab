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
	"fmt"
	"time"

	"dario.cat/mergo"

	"qpid.apache.org/linkengine/amqp"
	"qpid.apache.org/linkengine/internal/logger"
	"qpid.apache.org/linkengine/proton"
)

// Default values of Config, see DefaultConfig.
const (
	DefaultPrefetch         = 300
	DefaultWindow           = 65536
	DefaultHandleMax        = 4294967295
	DefaultMaxFrameSize     = 63488
	DefaultChannelMax       = 65535
	DefaultAdmissionTimeout = time.Minute

	minMaxFrameSize = 512
)

// Config holds the tunable settings of a client. The env tags are used by
// qpid.apache.org/linkengine/internal/config.
type Config struct {
	// Hostname is the virtual host requested when dialing.
	Hostname string `env:"HOSTNAME"`
	// ContainerID of connections dialed by the client, generated if empty.
	ContainerID string `env:"CONTAINER_ID"`

	// Target address of a sender link.
	Target string `env:"TARGET"`
	// Source address of a receiver link.
	Source string `env:"SOURCE"`
	// LinkName is generated from the container id if empty.
	LinkName string `env:"LINK_NAME"`

	SndSettle proton.SndSettleMode `env:"SND_SETTLE"`
	RcvSettle proton.RcvSettleMode `env:"RCV_SETTLE"`

	// Prefetch is the receiver credit and the capacity of the delivery queue.
	Prefetch uint32 `env:"PREFETCH"`
	// MaxMessageSize of the link, 0 means no limit.
	MaxMessageSize uint64 `env:"MAX_MESSAGE_SIZE"`
	// LinkProperties are sent when attaching the link.
	LinkProperties amqp.Map `env:"-"`

	OutgoingWindow uint32 `env:"OUTGOING_WINDOW"`
	IncomingWindow uint32 `env:"INCOMING_WINDOW"`
	HandleMax      uint32 `env:"HANDLE_MAX"`

	MaxFrameSize uint32 `env:"MAX_FRAME_SIZE"`
	ChannelMax   uint16 `env:"CHANNEL_MAX"`
	// Heartbeat is the connection idle timeout advertised to the peer.
	Heartbeat time.Duration `env:"HEARTBEAT"`
	// ConnectionProperties are sent when opening a dialed connection.
	ConnectionProperties amqp.Map `env:"-"`

	// IdleTimeout stops a receiver after this long without a delivery, 0 disables it.
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT"`
	// MessageTimeout is the time a message may wait to be sent, 0 disables it.
	MessageTimeout time.Duration `env:"MESSAGE_TIMEOUT"`
	// AdmissionTimeout bounds both queuing a delivery and waiting for it to
	// be consumed. Forever disables it.
	AdmissionTimeout time.Duration `env:"ADMISSION_TIMEOUT"`

	// CloseOnDone closes the client when a high level operation completes.
	CloseOnDone bool `env:"CLOSE_ON_DONE"`
	// ManualSettle disables accepting received messages automatically once
	// they are consumed.
	ManualSettle bool `env:"MANUAL_SETTLE"`
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		SndSettle:        proton.SndUnsettled,
		RcvSettle:        proton.RcvFirst,
		Prefetch:         DefaultPrefetch,
		OutgoingWindow:   DefaultWindow,
		IncomingWindow:   DefaultWindow,
		HandleMax:        DefaultHandleMax,
		MaxFrameSize:     DefaultMaxFrameSize,
		ChannelMax:       DefaultChannelMax,
		AdmissionTimeout: DefaultAdmissionTimeout,
	}
}

// Validate checks the settings, errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Prefetch == 0:
		return fmt.Errorf("%w: prefetch must be positive", ErrInvalidConfig)
	case c.OutgoingWindow == 0 || c.IncomingWindow == 0:
		return fmt.Errorf("%w: session windows must be positive", ErrInvalidConfig)
	case c.HandleMax == 0:
		return fmt.Errorf("%w: handle-max must be positive", ErrInvalidConfig)
	case c.MaxFrameSize < minMaxFrameSize:
		return fmt.Errorf("%w: max frame size %d is below %d", ErrInvalidConfig, c.MaxFrameSize, minMaxFrameSize)
	case c.SndSettle > proton.SndMixed:
		return fmt.Errorf("%w: send settle mode %d", ErrInvalidConfig, c.SndSettle)
	case c.RcvSettle > proton.RcvSecond:
		return fmt.Errorf("%w: receive settle mode %d", ErrInvalidConfig, c.RcvSettle)
	case c.IdleTimeout < 0 || c.MessageTimeout < 0 || c.Heartbeat < 0:
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	case c.AdmissionTimeout <= 0:
		return fmt.Errorf("%w: admission timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) connectionSettings() proton.ConnectionSettings {
	return proton.ConnectionSettings{
		Hostname:     c.Hostname,
		ContainerID:  c.ContainerID,
		MaxFrameSize: c.MaxFrameSize,
		ChannelMax:   c.ChannelMax,
		Heartbeat:    c.Heartbeat,
		Properties:   c.ConnectionProperties.Copy(),
	}
}

func (c *Config) sessionSettings() proton.SessionSettings {
	return proton.SessionSettings{
		OutgoingWindow: c.OutgoingWindow,
		IncomingWindow: c.IncomingWindow,
		HandleMax:      c.HandleMax,
	}
}

func (c *Config) linkSettings(name string) proton.LinkSettings {
	return proton.LinkSettings{
		Name:           name,
		Source:         c.Source,
		Target:         c.Target,
		SndSettle:      c.SndSettle,
		RcvSettle:      c.RcvSettle,
		Prefetch:       c.Prefetch,
		MaxMessageSize: c.MaxMessageSize,
		Properties:     c.LinkProperties.Copy(),
	}
}

// Option can be passed when creating a client to set optional configuration.
type Option func(*options)

type options struct {
	cfg        Config
	connection proton.Connection
	log        *logger.Logger
	clock      Clock
	transform  func(amqp.Message) amqp.Message
	err        error
}

func newOptions(opts []Option) options {
	o := options{cfg: DefaultConfig(), log: logger.Nop(), clock: systemClock{}}
	for _, set := range opts {
		set(&o)
	}
	return o
}

// WithConfig returns an Option that applies every non-zero field of cfg.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		if err := mergo.Merge(&o.cfg, cfg, mergo.WithOverride); err != nil && o.err == nil {
			o.err = fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
}

// Target returns an Option that sets the address that messages are going to.
func Target(s string) Option { return func(o *options) { o.cfg.Target = s } }

// Source returns an Option that sets the address that messages are coming from.
func Source(s string) Option { return func(o *options) { o.cfg.Source = s } }

// LinkName returns an Option that sets the link name.
func LinkName(s string) Option { return func(o *options) { o.cfg.LinkName = s } }

// ContainerID returns an Option that sets the container id of dialed connections.
func ContainerID(s string) Option { return func(o *options) { o.cfg.ContainerID = s } }

// Hostname returns an Option that sets the virtual host requested when dialing.
func Hostname(s string) Option { return func(o *options) { o.cfg.Hostname = s } }

// SndSettle returns an Option that sets the send settle mode
func SndSettle(m proton.SndSettleMode) Option { return func(o *options) { o.cfg.SndSettle = m } }

// RcvSettle returns an Option that sets the receive settle mode
func RcvSettle(m proton.RcvSettleMode) Option { return func(o *options) { o.cfg.RcvSettle = m } }

// AtMostOnce returns an Option that sets "fire and forget" mode, messages
// are sent but no acknowledgment is received, messages can be lost if there is
// a network failure. Sets SndSettleMode=SndSettled and RcvSettleMode=RcvFirst
func AtMostOnce() Option {
	return func(o *options) {
		SndSettle(proton.SndSettled)(o)
		RcvSettle(proton.RcvFirst)(o)
	}
}

// AtLeastOnce returns an Option that requests acknowledgment for every
// message, acknowledgment indicates the message was definitely received. In the
// event of a failure, unacknowledged messages can be re-sent but there is a
// chance that the message will be received twice in this case. Sets
// SndSettleMode=SndUnsettled and RcvSettleMode=RcvFirst
func AtLeastOnce() Option {
	return func(o *options) {
		SndSettle(proton.SndUnsettled)(o)
		RcvSettle(proton.RcvFirst)(o)
	}
}

// Prefetch returns an Option that sets the receiver credit, which is also
// the capacity of the delivery queue.
func Prefetch(n uint32) Option { return func(o *options) { o.cfg.Prefetch = n } }

// MaxMessageSize returns an Option that sets the largest message allowed on the link.
func MaxMessageSize(n uint64) Option { return func(o *options) { o.cfg.MaxMessageSize = n } }

// LinkProperties returns an Option that sets the properties sent on attach.
func LinkProperties(m amqp.Map) Option { return func(o *options) { o.cfg.LinkProperties = m } }

// ConnectionProperties returns an Option that sets the properties of dialed connections.
func ConnectionProperties(m amqp.Map) Option {
	return func(o *options) { o.cfg.ConnectionProperties = m }
}

// OutgoingWindow returns an Option that sets the session outgoing window.
func OutgoingWindow(n uint32) Option { return func(o *options) { o.cfg.OutgoingWindow = n } }

// IncomingWindow returns an Option that sets the session incoming window.
func IncomingWindow(n uint32) Option { return func(o *options) { o.cfg.IncomingWindow = n } }

// HandleMax returns an Option that sets the session handle-max.
func HandleMax(n uint32) Option { return func(o *options) { o.cfg.HandleMax = n } }

// MaxFrameSize returns an Option that sets the max frame size of dialed connections.
func MaxFrameSize(n uint32) Option { return func(o *options) { o.cfg.MaxFrameSize = n } }

// ChannelMax returns an Option that sets the channel-max of dialed connections.
func ChannelMax(n uint16) Option { return func(o *options) { o.cfg.ChannelMax = n } }

// Heartbeat returns an Option that sets the idle timeout advertised by dialed connections.
func Heartbeat(d time.Duration) Option { return func(o *options) { o.cfg.Heartbeat = d } }

// IdleTimeout returns an Option that stops a receiver after d without deliveries.
func IdleTimeout(d time.Duration) Option { return func(o *options) { o.cfg.IdleTimeout = d } }

// MessageTimeout returns an Option that sets how long a message may wait to be sent.
func MessageTimeout(d time.Duration) Option { return func(o *options) { o.cfg.MessageTimeout = d } }

// AdmissionTimeout returns an Option that bounds queuing and consuming a delivery.
func AdmissionTimeout(d time.Duration) Option {
	return func(o *options) { o.cfg.AdmissionTimeout = d }
}

// CloseOnDone returns an Option that closes the client when a high level
// operation completes.
func CloseOnDone(b bool) Option { return func(o *options) { o.cfg.CloseOnDone = b } }

// AutoAccept returns an Option that sets whether consumed messages are
// accepted automatically. It is on by default.
func AutoAccept(b bool) Option { return func(o *options) { o.cfg.ManualSettle = !b } }

// WithConnection returns an Option that makes the client use an existing
// connection. The client never destroys a connection it did not dial.
func WithConnection(c proton.Connection) Option { return func(o *options) { o.connection = c } }

// WithLogger returns an Option that sets the logger, the default discards output.
func WithLogger(l *logger.Logger) Option { return func(o *options) { o.log = l } }

// WithClock returns an Option that sets the time source.
func WithClock(c Clock) Option { return func(o *options) { o.clock = c } }

// WithTransform returns an Option that sets a function applied to every
// received message before it is queued or handled.
func WithTransform(f func(amqp.Message) amqp.Message) Option {
	return func(o *options) { o.transform = f }
}
