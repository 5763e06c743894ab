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

package proton

import (
	"fmt"
	"time"

	"qpid.apache.org/linkengine/amqp"
)

// LinkState is the attach state of a sender or receiver link.
type LinkState int

const (
	// LinkUninitialized: created but Open has not been called.
	LinkUninitialized LinkState = iota
	// LinkOpening: attach sent, waiting for the remote attach.
	LinkOpening
	// LinkOpen: attached, messages can be transferred.
	LinkOpen
	// LinkError is terminal, the link can not be used any more.
	LinkError
)

func (s LinkState) String() string {
	switch s {
	case LinkUninitialized:
		return "uninitialized"
	case LinkOpening:
		return "opening"
	case LinkOpen:
		return "open"
	case LinkError:
		return "error"
	default:
		return fmt.Sprintf("invalid(%d)", int(s))
	}
}

// SndSettleMode defines when the sending end of the link settles message delivery.
type SndSettleMode uint8

const (
	// Messages are sent unsettled
	SndUnsettled SndSettleMode = iota
	// Messages are sent already settled
	SndSettled
	// Sender can send either unsettled or settled messages.
	SndMixed
)

func (m SndSettleMode) String() string {
	switch m {
	case SndUnsettled:
		return "unsettled"
	case SndSettled:
		return "settled"
	case SndMixed:
		return "mixed"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(m))
	}
}

// UnmarshalText parses the name returned by String.
func (m *SndSettleMode) UnmarshalText(text []byte) error {
	for _, x := range []SndSettleMode{SndUnsettled, SndSettled, SndMixed} {
		if x.String() == string(text) {
			*m = x
			return nil
		}
	}
	return fmt.Errorf("unknown send settle mode %q", text)
}

// RcvSettleMode defines when the receiving end of the link settles message delivery.
type RcvSettleMode uint8

const (
	// Receiver settles first.
	RcvFirst RcvSettleMode = iota
	// Receiver waits for sender to settle before settling.
	RcvSecond
)

func (m RcvSettleMode) String() string {
	switch m {
	case RcvFirst:
		return "first"
	case RcvSecond:
		return "second"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(m))
	}
}

// UnmarshalText parses the name returned by String.
func (m *RcvSettleMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "first":
		*m = RcvFirst
	case "second":
		*m = RcvSecond
	default:
		return fmt.Errorf("unknown receive settle mode %q", text)
	}
	return nil
}

// ConnectionSettings are the parameters used to dial a new Connection.
type ConnectionSettings struct {
	// Hostname is the virtual host requested in the open frame.
	Hostname string
	// ContainerID identifies the local container.
	ContainerID string
	// MaxFrameSize is the largest frame the local end accepts.
	MaxFrameSize uint32
	// ChannelMax is the highest channel number that can be used.
	ChannelMax uint16
	// Heartbeat is the local idle timeout advertised to the peer, 0 disables it.
	Heartbeat time.Duration
	// Properties are sent in the open frame.
	Properties amqp.Map
}

// SessionSettings are the flow-control parameters of a new Session.
type SessionSettings struct {
	OutgoingWindow uint32
	IncomingWindow uint32
	HandleMax      uint32
}

// LinkSettings are the parameters of a new Sender or Receiver link.
type LinkSettings struct {
	// Name is unique among links between the same containers in the same direction.
	Name string
	// Source address that messages are coming from.
	Source string
	// Target address that messages are going to.
	Target string
	SndSettle SndSettleMode
	RcvSettle RcvSettleMode
	// Prefetch is the credit a Receiver keeps issued to the remote sender.
	Prefetch uint32
	// MaxMessageSize is the largest message accepted on the link, 0 means no limit.
	MaxMessageSize uint64
	// Properties are sent in the attach frame.
	Properties amqp.Map
}
