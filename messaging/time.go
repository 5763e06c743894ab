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
	"math"
	"time"

	"qpid.apache.org/linkengine/proton"
)

// Timeout is the Outcome error of a message that was not sent within its
// timeout. It is an alias for proton.ErrTimeout.
var Timeout = proton.ErrTimeout

// Forever can be used as a timeout parameter to indicate wait forever.
const Forever time.Duration = math.MaxInt64

// Clock is the time source of a client. Tests replace it to control idle
// and message timeouts.
type Clock interface {
	Now() time.Time
	// After is like time.After, it returns a nil channel for Forever.
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return After(d) }

// After is like time.After but returns a nil channel if timeout == Forever
// since selecting on a nil channel will never return.
func After(timeout time.Duration) <-chan time.Time {
	if timeout == Forever {
		return nil
	}
	return time.After(timeout)
}
