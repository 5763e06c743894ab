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

	"code.hybscloud.com/iox"
)

// pump calls step until done reports true, step reports that the link
// stopped, or step or ctx fail. It returns false if the link stopped.
// Iterations that make no progress are followed by an adaptive backoff.
func (c *Client) pump(ctx context.Context, step func(context.Context) (bool, error), done func() bool) (bool, error) {
	var bo iox.Backoff
	for done == nil || !done() {
		if err := ctx.Err(); err != nil {
			return true, err
		}
		before := c.events.Load()
		more, err := step(ctx)
		if err != nil || !more {
			return more, err
		}
		if c.events.Load() != before {
			bo.Reset()
		} else {
			bo.Wait()
		}
	}
	return true, nil
}
