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

/*
Package messaging drives AMQP sender and receiver links with a cooperative
work loop.

A SendClient or ReceiveClient owns one link. Nothing happens on the link
unless DoWork is called: each call performs one unit of progress, in order of
priority CBS token negotiation, link creation, attach, and finally message
transfer. The higher level operations (SendMessage, SendAllMessages,
ReceiveMessages, ReceiveMessageBatch and Messages) open the client and call
DoWork in a loop until their own completion condition holds.

DoWork, Open and Close are serialized per client, so a client is driven by at
most one goroutine at a time. The objects a client drives are described by
the interfaces in qpid.apache.org/linkengine/proton.

Sending

Messages are appended to a pending list and handed to the link once it is
open. Each message is tracked by a PendingMessage, which reaches Complete
exactly once with an Outcome: Sent, TimedOut or Failed. Per-message failures
never fail the client, only CBS and link failures are returned by DoWork.

	c, err := messaging.NewSendClient(dialer, auth, "queue-a")
	outcome, err := c.SendMessage(ctx, amqp.NewMessageWith("hello"))

Receiving

Arriving messages are either passed to a handler (ReceiveMessages) or put on
a bounded queue with the capacity of the link prefetch, from which
ReceiveMessageBatch and Messages take them. A full queue stalls admission of
new deliveries, so at most prefetch messages are in flight. A delivery that
can not be queued, or is not consumed within the admission timeout, is
abandoned and the remote sender delivers it again.

	c, err := messaging.NewReceiveClient(dialer, auth, "queue-a", messaging.Prefetch(10))
	for rm, err := range c.Messages(ctx) {
		...
	}

*/
package messaging

// This file is just for the package comment.
