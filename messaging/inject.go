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

import "sync"

// injector queues functions to run at the start of the next DoWork, where
// they may safely use the link. Functions are injected from goroutines that
// must not call the link directly, such as delivery waiters or consumers
// settling received messages.
type injector struct {
	lock    sync.Mutex
	actions []func()
	closed  bool
}

// Inject queues f, or returns ErrClosed if the client is closed.
func (in *injector) Inject(f func()) error {
	in.lock.Lock()
	defer in.lock.Unlock()
	if in.closed {
		return ErrClosed
	}
	in.actions = append(in.actions, f)
	return nil
}

// runInjected runs queued functions in injection order and reports how
// many ran. Call only from the goroutine driving the link.
func (in *injector) runInjected() int {
	in.lock.Lock()
	actions := in.actions
	in.actions = nil
	in.lock.Unlock()
	for _, f := range actions {
		f()
	}
	return len(actions)
}

func (in *injector) setClosed(closed bool) {
	in.lock.Lock()
	defer in.lock.Unlock()
	in.closed = closed
}
