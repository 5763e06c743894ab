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
	"container/list"
	"sync"
)

// entry is a message on a queue, encoded as it was transferred.
type entry struct {
	data []byte
	// redelivered counts modified outcomes, it is added to the delivery count.
	redelivered uint32
}

// queue is a concurrent-safe FIFO of entries. Entries put back go to the front.
type queue struct {
	name    string
	lock    sync.Mutex
	entries list.List
}

func newQueue(name string) *queue { return &queue{name: name} }

// Push appends an encoded message.
func (q *queue) Push(data []byte) { q.push(entry{data: data}) }

func (q *queue) push(e entry) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.entries.PushBack(e)
}

// PutBack returns an unsettled entry to the front of the queue.
func (q *queue) PutBack(e entry) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.entries.PushFront(e)
}

// Pop removes the front entry, ok is false if the queue is empty.
func (q *queue) Pop() (e entry, ok bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	el := q.entries.Front()
	if el == nil {
		return entry{}, false
	}
	q.entries.Remove(el)
	return el.Value.(entry), true
}

// Len is the number of entries.
func (q *queue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.entries.Len()
}
