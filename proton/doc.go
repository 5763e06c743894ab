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
Package proton defines the contracts of the objects that the messaging link
engine drives: connections, sessions, sender and receiver links, deliveries
and the claims-based-security (CBS) authenticator.

The engine never encodes frames or touches sockets itself. A Dialer creates a
Connection, the Connection hands out Sessions, and Sessions create Sender and
Receiver links. All protocol progress happens inside Connection.Advance: that
is where links change LinkState, where settlement callbacks for sent messages
are invoked and where a Receiver's DeliveryHandler is called for each arriving
message.

NOTE: the engine calls Advance, link creation and link teardown from a single
goroutine per client, but implementations must tolerate Delivery.Settle and
Session/Link destruction being called from the same goroutine while Advance
is not running. Implementations shared between clients (a Connection passed to
several clients) must be goroutine-safe.

The qpid.apache.org/linkengine/broker package provides an in-memory
implementation of every contract here.
*/
package proton

// This file is just for the package comment.
