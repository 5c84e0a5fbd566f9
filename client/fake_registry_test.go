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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/apache/servicecomb-eureka-client/pkg/backoff"
	"github.com/apache/servicecomb-eureka-client/pkg/model"
	"github.com/stretchr/testify/require"
)

const servicePath = "/eureka/v2/apps/"

// fakeRegistry answers registry calls with scripted status codes, the
// last code of a script repeats.
type fakeRegistry struct {
	server *httptest.Server

	mux            sync.Mutex
	registerCodes  []int
	heartbeatCodes []int
	deregisterCode int
	fetchCode      int
	fetchBody      string
	registerDelay  time.Duration
	calls          map[string]int
	registered     []*model.Instance
	paths          []string
	auth           []string
	accept         []string
}

func newFakeRegistry(t *testing.T) *fakeRegistry {
	f := &fakeRegistry{
		deregisterCode: http.StatusOK,
		fetchCode:      http.StatusOK,
		fetchBody:      `{"applications":{"application":[]}}`,
		calls:          make(map[string]int),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeRegistry) URL() string {
	return f.server.URL + servicePath
}

func nextCode(codes *[]int, def int) int {
	if len(*codes) == 0 {
		return def
	}
	code := (*codes)[0]
	if len(*codes) > 1 {
		*codes = (*codes)[1:]
	}
	return code
}

func (f *fakeRegistry) serve(w http.ResponseWriter, r *http.Request) {
	f.mux.Lock()
	f.calls[r.Method]++
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.accept = append(f.accept, r.Header.Get("Accept"))
	var code int
	var body string
	var delay time.Duration
	switch r.Method {
	case http.MethodPost:
		req := &model.RegisterRequest{}
		if err := json.NewDecoder(r.Body).Decode(req); err == nil {
			f.registered = append(f.registered, req.Instance)
		}
		code = nextCode(&f.registerCodes, http.StatusNoContent)
		delay = f.registerDelay
	case http.MethodPut:
		code = nextCode(&f.heartbeatCodes, http.StatusOK)
	case http.MethodDelete:
		code = f.deregisterCode
	case http.MethodGet:
		code, body = f.fetchCode, f.fetchBody
	}
	f.mux.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

func (f *fakeRegistry) count(method string) int {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.calls[method]
}

func (f *fakeRegistry) requests() []string {
	f.mux.Lock()
	defer f.mux.Unlock()
	return append([]string(nil), f.paths...)
}

func (f *fakeRegistry) set(fn func(f *fakeRegistry)) {
	f.mux.Lock()
	defer f.mux.Unlock()
	fn(f)
}

func (f *fakeRegistry) lastRegistered() *model.Instance {
	f.mux.Lock()
	defer f.mux.Unlock()
	if len(f.registered) == 0 {
		return nil
	}
	return f.registered[len(f.registered)-1]
}

// deadURL points at a port nobody listens on.
func deadURL(t *testing.T) string {
	s := httptest.NewServer(http.NotFoundHandler())
	url := s.URL + servicePath
	s.Close()
	return url
}

func testConfig(urls ...string) Config {
	cfg := DefaultConfig()
	cfg.Instance.App = "demo"
	cfg.Instance.HostName = "demo-host"
	cfg.Instance.IPAddr = "10.0.0.2"
	cfg.Instance.VipAddress = "demo-vip"
	cfg.Instance.Port = &model.Port{Port: 8080, Enabled: true}
	cfg.Eureka.ServiceURLs = urls
	cfg.Eureka.HeartbeatInterval = time.Hour
	cfg.Eureka.RegistryFetchInterval = time.Hour
	cfg.Eureka.FetchRegistry = false
	cfg.Eureka.ReRegisterRate = 0
	return cfg
}

func newTestClient(t *testing.T, cfg Config, opts ...Option) *Client {
	opts = append([]Option{WithBackoff(backoff.ConstantBackoff{})}, opts...)
	c, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Stop(context.Background())
	})
	return c
}

type eventRecorder struct {
	mux    sync.Mutex
	events []Event
}

func (r *eventRecorder) OnEvent(evt Event) {
	r.mux.Lock()
	r.events = append(r.events, evt)
	r.mux.Unlock()
}

func (r *eventRecorder) types() []EventType {
	r.mux.Lock()
	defer r.mux.Unlock()
	types := make([]EventType, 0, len(r.events))
	for _, evt := range r.events {
		types = append(types, evt.Type)
	}
	return types
}

func (r *eventRecorder) count(typ EventType) int {
	n := 0
	for _, t := range r.types() {
		if t == typ {
			n++
		}
	}
	return n
}

func registryBody(t *testing.T, apps ...model.Application) string {
	b, err := json.Marshal(&model.RegistryResponse{Applications: &model.Applications{Application: apps}})
	require.NoError(t, err)
	return string(b)
}

func instance(app, id, vip string, status model.Status) model.Instance {
	return model.Instance{
		InstanceID: id,
		App:        app,
		HostName:   id + ".local",
		VipAddress: vip,
		Status:     status,
		Port:       &model.Port{Port: 8080, Enabled: true},
		DataCenterInfo: model.DataCenterInfo{
			Class: model.ClassDefaultDataCenterInfo,
			Name:  model.DataCenterMyOwn,
		},
	}
}
