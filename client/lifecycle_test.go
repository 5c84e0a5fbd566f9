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
	"bytes"
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/apache/servicecomb-eureka-client/pkg/backoff"
	"github.com/apache/servicecomb-eureka-client/pkg/eurekaerr"
	"github.com/apache/servicecomb-eureka-client/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_TransportFailureRotates(t *testing.T) {
	live := newFakeRegistry(t)
	dead1, dead2 := deadURL(t), deadURL(t)
	c := newTestClient(t, testConfig(dead1, dead2, live.URL()))

	err := c.lifecycle.register(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateRegistered, c.State())
	assert.Equal(t, []string{live.URL(), dead1, dead2}, c.Endpoints())
	assert.Equal(t, 1, live.count(http.MethodPost))
	assert.Equal(t, "demo", live.lastRegistered().App)
}

func TestRegister_RetriesUntilCancelled(t *testing.T) {
	c := newTestClient(t, testConfig(deadURL(t)),
		WithBackoff(backoff.ConstantBackoff{Interval: 10 * time.Millisecond}))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := c.lifecycle.register(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateUnregistered, c.State())
}

func TestRegister_StatusFailureNotRetried(t *testing.T) {
	a, b := newFakeRegistry(t), newFakeRegistry(t)
	a.set(func(f *fakeRegistry) { f.registerCodes = []int{http.StatusInternalServerError} })
	c := newTestClient(t, testConfig(a.URL(), b.URL()))

	err := c.lifecycle.register(context.Background())
	assert.True(t, eurekaerr.IsProtocol(err))
	assert.True(t, eurekaerr.HasStatus(err, http.StatusInternalServerError))
	assert.Equal(t, StateUnregistered, c.State())
	assert.Equal(t, 1, a.count(http.MethodPost))
	assert.Equal(t, 0, b.count(http.MethodPost))
	assert.Equal(t, a.URL(), c.Endpoints()[0])
}

func TestRegister_SlowResponseNotCancelled(t *testing.T) {
	old := registerWatchdog
	registerWatchdog = 10 * time.Millisecond
	defer func() { registerWatchdog = old }()

	f := newFakeRegistry(t)
	f.set(func(f *fakeRegistry) { f.registerDelay = 100 * time.Millisecond })
	c := newTestClient(t, testConfig(f.URL()))

	out := &syncBuffer{}
	prev := log.InitWithSyncer(log.Configure().WithLevel("warn").WithNoTime(true), out)
	defer log.Restore(prev)

	assert.NoError(t, c.lifecycle.register(context.Background()))
	assert.Equal(t, StateRegistered, c.State())
	assert.Contains(t, out.String(), "register instance[")
	assert.Contains(t, out.String(), "got no response in 10ms, still waiting")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Sync() error { return nil }

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRegister_SetsStatusUp(t *testing.T) {
	f := newFakeRegistry(t)
	cfg := testConfig(f.URL())
	cfg.Instance.Status = "STARTING"
	c := newTestClient(t, cfg)

	require.NoError(t, c.lifecycle.register(context.Background()))
	assert.Equal(t, "UP", string(f.lastRegistered().Status))
	assert.Equal(t, "STARTING", string(cfg.Instance.Status))
	assert.Equal(t, []string{"POST /eureka/v2/apps/demo"}, f.requests())
}

func heartbeatConfig(urls ...string) Config {
	cfg := testConfig(urls...)
	cfg.Eureka.HeartbeatInterval = 20 * time.Millisecond
	return cfg
}

func TestHeartbeat_NotFoundKeepsEndpoint(t *testing.T) {
	a, b := newFakeRegistry(t), newFakeRegistry(t)
	a.set(func(f *fakeRegistry) {
		f.heartbeatCodes = []int{http.StatusNotFound, http.StatusOK}
	})
	rec := &eventRecorder{}
	c := newTestClient(t, heartbeatConfig(a.URL(), b.URL()), WithListener(rec))
	require.NoError(t, c.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return a.count(http.MethodPost) == 2 && rec.count(EventHeartbeat) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, b.count(http.MethodPost))
	assert.Equal(t, a.URL(), c.Endpoints()[0])
	assert.Equal(t, StateHeartbeating, c.State())
}

func TestHeartbeat_FailureRotates(t *testing.T) {
	a, b := newFakeRegistry(t), newFakeRegistry(t)
	a.set(func(f *fakeRegistry) {
		f.heartbeatCodes = []int{http.StatusInternalServerError}
	})
	c := newTestClient(t, heartbeatConfig(a.URL(), b.URL()))
	require.NoError(t, c.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return b.count(http.MethodPost) == 1 && b.count(http.MethodPut) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, a.count(http.MethodPost))
	assert.Equal(t, []string{b.URL(), a.URL()}, c.Endpoints())
}

func TestHeartbeat_TransportFailureRotates(t *testing.T) {
	a, b := newFakeRegistry(t), newFakeRegistry(t)
	c := newTestClient(t, heartbeatConfig(a.URL(), b.URL()))
	require.NoError(t, c.Start(context.Background()))
	a.server.Close()

	assert.Eventually(t, func() bool {
		return b.count(http.MethodPost) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, b.URL(), c.Endpoints()[0])
}

func TestHeartbeat_PathUsesInstanceID(t *testing.T) {
	f := newFakeRegistry(t)
	cfg := heartbeatConfig(f.URL())
	cfg.Instance.InstanceID = "demo-1"
	c := newTestClient(t, cfg)
	require.NoError(t, c.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return f.count(http.MethodPut) > 0
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, c.Stop(context.Background()))

	paths := f.requests()
	assert.Contains(t, paths, "PUT /eureka/v2/apps/demo/demo-1")
	assert.Equal(t, "DELETE /eureka/v2/apps/demo/demo-1", paths[len(paths)-1])
}

func TestDeregister(t *testing.T) {
	f := newFakeRegistry(t)
	rec := &eventRecorder{}
	c := newTestClient(t, testConfig(f.URL()), WithListener(rec))
	require.NoError(t, c.lifecycle.register(context.Background()))

	assert.NoError(t, c.lifecycle.deregister(context.Background()))
	assert.Equal(t, StateUnregistered, c.State())

	f.set(func(f *fakeRegistry) { f.deregisterCode = http.StatusInternalServerError })
	err := c.lifecycle.deregister(context.Background())
	assert.True(t, eurekaerr.IsProtocol(err))
	assert.Equal(t, 2, f.count(http.MethodDelete))

	rec.mux.Lock()
	defer rec.mux.Unlock()
	require.Len(t, rec.events, 3)
	assert.Equal(t, EventDeregistered, rec.events[1].Type)
	assert.NoError(t, rec.events[1].Err)
	assert.Error(t, rec.events[2].Err)
}
