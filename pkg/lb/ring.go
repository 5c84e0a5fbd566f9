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

package lb

import (
	"errors"
	"sync"
)

var ErrEmptyRing = errors.New("endpoint ring is empty")

// Ring is the ordered list of candidate registry base URLs, the head is
// the endpoint in use. A failing endpoint is moved to the tail, never
// dropped, so it is tried again after one full cycle.
type Ring struct {
	mux       sync.RWMutex
	endpoints []string
}

func NewRing(endpoints []string) (*Ring, error) {
	if len(endpoints) == 0 {
		return nil, ErrEmptyRing
	}
	r := &Ring{endpoints: make([]string, len(endpoints))}
	copy(r.endpoints, endpoints)
	return r, nil
}

func (r *Ring) Current() string {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.endpoints[0]
}

// Rotate moves the head to the tail and returns the new head.
func (r *Ring) Rotate() string {
	r.mux.Lock()
	defer r.mux.Unlock()
	if len(r.endpoints) > 1 {
		head := r.endpoints[0]
		copy(r.endpoints, r.endpoints[1:])
		r.endpoints[len(r.endpoints)-1] = head
	}
	return r.endpoints[0]
}

// Endpoints returns a copy in ring order.
func (r *Ring) Endpoints() []string {
	r.mux.RLock()
	defer r.mux.RUnlock()
	eps := make([]string, len(r.endpoints))
	copy(eps, r.endpoints)
	return eps
}

// Reset replaces the endpoints, the first one becomes the head.
func (r *Ring) Reset(endpoints []string) error {
	if len(endpoints) == 0 {
		return ErrEmptyRing
	}
	eps := make([]string, len(endpoints))
	copy(eps, endpoints)
	r.mux.Lock()
	r.endpoints = eps
	r.mux.Unlock()
	return nil
}
