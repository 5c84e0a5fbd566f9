/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package client

import (
	"sync"
)

type EventType string

const (
	EventStarted         EventType = "started"
	EventRegistered      EventType = "registered"
	EventDeregistered    EventType = "deregistered"
	EventHeartbeat       EventType = "heartbeat"
	EventRegistryUpdated EventType = "registryUpdated"
)

// Event is delivered to listeners in the order it happened. Err is set
// only on a failed deregistration.
type Event struct {
	Type     EventType
	Endpoint string
	Err      error
}

type Listener interface {
	OnEvent(evt Event)
}

type ListenerFunc func(evt Event)

func (f ListenerFunc) OnEvent(evt Event) {
	f(evt)
}

type emitter struct {
	mux       sync.RWMutex
	listeners []Listener
}

func (e *emitter) add(l Listener) {
	e.mux.Lock()
	e.listeners = append(e.listeners, l)
	e.mux.Unlock()
}

func (e *emitter) emit(evt Event) {
	e.mux.RLock()
	listeners := e.listeners
	e.mux.RUnlock()
	for _, l := range listeners {
		l.OnEvent(evt)
	}
}
