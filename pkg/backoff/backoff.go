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

package backoff

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultBackoff spreads registration retries of many clients over two
// seconds so they do not hit the next registry in lockstep.
var DefaultBackoff Backoff = NewRandomBackoff(2 * time.Second)

type Backoff interface {
	Delay(retries int) time.Duration
}

// RandomBackoff returns a uniformly random delay in [0, Max) regardless
// of the retry count.
type RandomBackoff struct {
	Max time.Duration

	mux sync.Mutex
	rnd *rand.Rand
}

func NewRandomBackoff(max time.Duration) *RandomBackoff {
	return &RandomBackoff{
		Max: max,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (rb *RandomBackoff) Delay(_ int) time.Duration {
	if rb.Max <= 0 {
		return 0
	}
	rb.mux.Lock()
	defer rb.mux.Unlock()
	return time.Duration(rb.rnd.Int63n(int64(rb.Max)))
}

// ConstantBackoff always waits Interval.
type ConstantBackoff struct {
	Interval time.Duration
}

func (cb ConstantBackoff) Delay(_ int) time.Duration {
	return cb.Interval
}

func GetBackoff() Backoff {
	return DefaultBackoff
}
