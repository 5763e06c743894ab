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

import "qpid.apache.org/linkengine/proton"

// connectionRef is a connection the client dialed itself or one it borrowed.
// Only an ownedConnection can be destroyed.
type connectionRef interface {
	get() proton.Connection
}

type ownedConnection struct{ proton.Connection }
type borrowedConnection struct{ proton.Connection }

func (c ownedConnection) get() proton.Connection    { return c.Connection }
func (c borrowedConnection) get() proton.Connection { return c.Connection }

func (c ownedConnection) destroy() error { return c.Connection.Destroy() }

// sessionRef is a session the client began itself or the session of the
// connection's CBS authenticator. Only an ownedSession can be destroyed.
type sessionRef interface {
	get() proton.Session
}

type ownedSession struct{ proton.Session }
type sharedSession struct{ proton.Session }

func (s ownedSession) get() proton.Session  { return s.Session }
func (s sharedSession) get() proton.Session { return s.Session }

func (s ownedSession) destroy() error { return s.Session.Destroy() }
