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

package amqp

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is the interface to an AMQP message.
type Message interface {
	// Durable indicates that any parties taking responsibility
	// for the message must durably store the content.
	Durable() bool
	SetDurable(bool)

	// Priority impacts ordering guarantees. Within a
	// given ordered context, higher priority messages may jump ahead of
	// lower priority messages.
	Priority() uint8
	SetPriority(uint8)

	// TTL or Time To Live, a message it may be dropped after this duration
	TTL() time.Duration
	SetTTL(time.Duration)

	// DeliveryCount tracks how many attempts have been made to
	// delivery a message.
	DeliveryCount() uint32
	SetDeliveryCount(uint32)

	// MessageId provides a unique identifier for a message.
	// it can be an a string, an unsigned long, a uuid or a
	// binary value.
	MessageId() interface{}
	SetMessageId(interface{})

	Address() string
	SetAddress(string)

	Subject() string
	SetSubject(string)

	ReplyTo() string
	SetReplyTo(string)

	// CorrelationId is set on correlated request and response messages. It can be
	// an a string, an unsigned long, a uuid or a binary value.
	CorrelationId() interface{}
	SetCorrelationId(interface{})

	ContentType() string
	SetContentType(string)

	CreationTime() time.Time
	SetCreationTime(time.Time)

	// Properties set by the application to be carried with the message.
	// Values must be simple types (not maps, lists or sequences)
	ApplicationProperties() map[string]interface{}
	SetApplicationProperties(map[string]interface{})

	// Message annotations added as part of the bare message at creation, usually
	// by an AMQP library. See ApplicationProperties() for properties set by the application.
	MessageAnnotations() Map
	SetMessageAnnotations(Map)

	// Get the message body.
	Body() interface{}

	// Set the message body.
	SetBody(interface{})

	// Clear the message contents, set all fields to the default value.
	Clear()

	// Copy the contents of another message to this one.
	Copy(m Message)

	// Human-readable string showing message contents and properties
	String() string
}

// NewMessage creates a new message instance with a random UUID message-id.
func NewMessage() Message {
	m := &message{}
	m.Clear()
	m.messageId = uuid.NewString()
	return m
}

// NewMessageWith creates a message with value as the body.
func NewMessageWith(value interface{}) Message {
	m := NewMessage()
	m.SetBody(value)
	return m
}

// NewMessageCopy creates a copy of an existing message.
func NewMessageCopy(m Message) Message {
	m2 := &message{}
	m2.Copy(m)
	return m2
}

type message struct {
	address               string
	applicationProperties map[string]interface{}
	contentType           string
	correlationId         interface{}
	creationTime          time.Time
	deliveryCount         uint32
	durable               bool
	messageAnnotations    Map
	messageId             interface{}
	priority              uint8
	replyTo               string
	subject               string
	ttl                   time.Duration
	body                  interface{}
}

// Reset message to all default values
func (m *message) Clear() { *m = message{priority: 4} }

// Copy makes a copy of message x. Property and annotation maps are copied,
// the body value is shared.
func (m *message) Copy(x Message) {
	m.Clear()
	m.address = x.Address()
	m.contentType = x.ContentType()
	m.correlationId = x.CorrelationId()
	m.creationTime = x.CreationTime()
	m.deliveryCount = x.DeliveryCount()
	m.durable = x.Durable()
	m.messageId = x.MessageId()
	m.priority = x.Priority()
	m.replyTo = x.ReplyTo()
	m.subject = x.Subject()
	m.ttl = x.TTL()
	m.body = x.Body()
	if props := x.ApplicationProperties(); len(props) > 0 {
		m.applicationProperties = make(map[string]interface{}, len(props))
		for k, v := range props {
			m.applicationProperties[k] = v
		}
	}
	if ann := x.MessageAnnotations(); len(ann) > 0 {
		m.messageAnnotations = ann.Copy()
	}
}

// ==== message get methods
func (m *message) Body() interface{}          { return m.body }
func (m *message) Durable() bool              { return m.durable }
func (m *message) Priority() uint8            { return m.priority }
func (m *message) TTL() time.Duration         { return m.ttl }
func (m *message) DeliveryCount() uint32      { return m.deliveryCount }
func (m *message) MessageId() interface{}     { return m.messageId }
func (m *message) Address() string            { return m.address }
func (m *message) Subject() string            { return m.subject }
func (m *message) ReplyTo() string            { return m.replyTo }
func (m *message) CorrelationId() interface{} { return m.correlationId }
func (m *message) ContentType() string        { return m.contentType }
func (m *message) CreationTime() time.Time    { return m.creationTime }

func (m *message) MessageAnnotations() Map {
	if m.messageAnnotations == nil {
		m.messageAnnotations = make(Map)
	}
	return m.messageAnnotations
}
func (m *message) ApplicationProperties() map[string]interface{} {
	if m.applicationProperties == nil {
		m.applicationProperties = make(map[string]interface{})
	}
	return m.applicationProperties
}

// ==== message set methods

func (m *message) SetBody(v interface{})          { m.body = v }
func (m *message) SetDurable(x bool)              { m.durable = x }
func (m *message) SetPriority(x uint8)            { m.priority = x }
func (m *message) SetTTL(x time.Duration)         { m.ttl = x }
func (m *message) SetDeliveryCount(x uint32)      { m.deliveryCount = x }
func (m *message) SetMessageId(x interface{})     { m.messageId = x }
func (m *message) SetAddress(x string)            { m.address = x }
func (m *message) SetSubject(x string)            { m.subject = x }
func (m *message) SetReplyTo(x string)            { m.replyTo = x }
func (m *message) SetCorrelationId(x interface{}) { m.correlationId = x }
func (m *message) SetContentType(x string)        { m.contentType = x }
func (m *message) SetCreationTime(x time.Time)    { m.creationTime = x }

func (m *message) SetMessageAnnotations(x Map) { m.messageAnnotations = x }
func (m *message) SetApplicationProperties(x map[string]interface{}) {
	m.applicationProperties = x
}

// Human-readable string describing message.
// Includes only message fields with non-default values.
func (m *message) String() string {
	var b strings.Builder
	b.WriteString("Message{")
	b.WriteString(fmt.Sprintf("%#v", m.body))
	writeIf(&b, "message-id", m.messageId)
	writeIf(&b, "correlation-id", m.correlationId)
	writeIf(&b, "address", m.address)
	writeIf(&b, "subject", m.subject)
	writeIf(&b, "reply-to", m.replyTo)
	writeIf(&b, "content-type", m.contentType)
	writeIf(&b, "durable", m.durable)
	if m.priority != 4 {
		writeIf(&b, "priority", m.priority)
	}
	writeIf(&b, "ttl", m.ttl)
	writeIf(&b, "delivery-count", m.deliveryCount)
	if !m.creationTime.IsZero() {
		writeIf(&b, "creation-time", m.creationTime)
	}
	if len(m.applicationProperties) > 0 {
		writeIf(&b, "application-properties", m.applicationProperties)
	}
	if len(m.messageAnnotations) > 0 {
		writeIf(&b, "message-annotations", m.messageAnnotations)
	}
	b.WriteString("}")
	return b.String()
}

// Write a field if it has a non-zero value
func writeIf(b *strings.Builder, name string, value interface{}) {
	switch v := value.(type) {
	case nil:
		return
	case string:
		if v == "" {
			return
		}
	case bool:
		if !v {
			return
		}
	case uint32:
		if v == 0 {
			return
		}
	case time.Duration:
		if v == 0 {
			return
		}
	}
	fmt.Fprintf(b, ", %s: %v", name, value)
}
