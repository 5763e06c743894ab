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
	"fmt"
	"time"

	cbor "github.com/fxamacker/cbor/v2"

	"qpid.apache.org/linkengine/amqp"
)

// frame is the encoded form of a transferred message. Messages are encoded
// when they are sent and decoded for each delivery, so a receiver never
// shares a message with its sender.
type frame struct {
	Durable       bool                   `cbor:"1,keyasint,omitempty"`
	Priority      uint8                  `cbor:"2,keyasint"`
	TTL           time.Duration          `cbor:"3,keyasint,omitempty"`
	DeliveryCount uint32                 `cbor:"4,keyasint,omitempty"`
	MessageID     interface{}            `cbor:"5,keyasint,omitempty"`
	Address       string                 `cbor:"6,keyasint,omitempty"`
	Subject       string                 `cbor:"7,keyasint,omitempty"`
	ReplyTo       string                 `cbor:"8,keyasint,omitempty"`
	CorrelationID interface{}            `cbor:"9,keyasint,omitempty"`
	ContentType   string                 `cbor:"10,keyasint,omitempty"`
	CreationTime  time.Time              `cbor:"11,keyasint,omitempty"`
	Properties    map[string]interface{} `cbor:"12,keyasint,omitempty"`
	Annotations   amqp.Map               `cbor:"13,keyasint,omitempty"`
	Body          interface{}            `cbor:"14,keyasint,omitempty"`
}

// codec encodes frames as deterministic CBOR.
type codec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCodec() *codec {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
	return &codec{enc: em, dec: dm}
}

// encode returns the frame of m. A positive max limits the encoded size.
func (c *codec) encode(m amqp.Message, max uint64) ([]byte, error) {
	f := frame{
		Durable:       m.Durable(),
		Priority:      m.Priority(),
		TTL:           m.TTL(),
		DeliveryCount: m.DeliveryCount(),
		MessageID:     m.MessageId(),
		Address:       m.Address(),
		Subject:       m.Subject(),
		ReplyTo:       m.ReplyTo(),
		CorrelationID: m.CorrelationId(),
		ContentType:   m.ContentType(),
		CreationTime:  m.CreationTime(),
		Properties:    m.ApplicationProperties(),
		Annotations:   m.MessageAnnotations(),
		Body:          m.Body(),
	}
	data, err := c.enc.Marshal(f)
	if err != nil {
		return nil, amqp.Errorf(amqp.DecodeError, "encode message: %v", err)
	}
	if max > 0 && uint64(len(data)) > max {
		return nil, amqp.Errorf(amqp.LinkMessageSizeLimit, "message of %d bytes exceeds %d", len(data), max)
	}
	return data, nil
}

// decode rebuilds a message from an entry.
func (c *codec) decode(e entry) (amqp.Message, error) {
	var f frame
	if err := c.dec.Unmarshal(e.data, &f); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	m := amqp.NewMessage()
	m.SetDurable(f.Durable)
	m.SetPriority(f.Priority)
	m.SetTTL(f.TTL)
	m.SetDeliveryCount(f.DeliveryCount + e.redelivered)
	m.SetMessageId(f.MessageID)
	m.SetAddress(f.Address)
	m.SetSubject(f.Subject)
	m.SetReplyTo(f.ReplyTo)
	m.SetCorrelationId(f.CorrelationID)
	m.SetContentType(f.ContentType)
	m.SetCreationTime(f.CreationTime)
	m.SetApplicationProperties(f.Properties)
	m.SetMessageAnnotations(f.Annotations)
	m.SetBody(f.Body)
	return m, nil
}
