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
package run

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/apache/servicecomb-eureka-client/client"
	"github.com/apache/servicecomb-eureka-client/pkg/model"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registry struct {
	mux     sync.Mutex
	methods []string
	status  int
}

func (r *registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.Lock()
	r.methods = append(r.methods, req.Method)
	status := r.status
	r.mux.Unlock()
	switch {
	case status > 0:
		w.WriteHeader(status)
	case req.Method == http.MethodPost:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (r *registry) calls() []string {
	r.mux.Lock()
	defer r.mux.Unlock()
	return append([]string(nil), r.methods...)
}

func newClient(t *testing.T, url string) *client.Client {
	cfg := client.DefaultConfig()
	cfg.Instance = model.Instance{
		App:        "demo",
		HostName:   "demo.local",
		IPAddr:     "10.0.0.1",
		VipAddress: "demo",
		Port:       &model.Port{Port: 8080, Enabled: true},
		DataCenterInfo: model.DataCenterInfo{
			Class: model.ClassDefaultDataCenterInfo,
			Name:  model.DataCenterMyOwn,
		},
	}
	cfg.Eureka.ServiceURLs = []string{url + "/eureka/v2/apps/"}
	cfg.Eureka.FetchRegistry = false
	cfg.Eureka.HeartbeatInterval = time.Hour
	c, err := client.New(cfg)
	require.NoError(t, err)
	return c
}

func TestRun(t *testing.T) {
	reg := &registry{}
	srv := httptest.NewServer(reg)
	defer srv.Close()

	c := newClient(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	c.AddListener(client.ListenerFunc(func(e client.Event) {
		if e.Type == client.EventStarted {
			cancel()
		}
	}))

	require.NoError(t, Run(ctx, c))
	assert.Equal(t, []string{http.MethodPost, http.MethodDelete}, reg.calls())
	assert.Equal(t, client.StateUnregistered, c.State())
}

func TestRun_StartFailed(t *testing.T) {
	reg := &registry{status: http.StatusBadRequest}
	srv := httptest.NewServer(reg)
	defer srv.Close()

	err := Run(context.Background(), newClient(t, srv.URL))
	assert.Error(t, err)
	assert.Equal(t, []string{http.MethodPost}, reg.calls())
}

func TestAddFlags(t *testing.T) {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	addFlags(fs)
	require.NoError(t, fs.Parse([]string{"--metrics-addr", ":9100"}))
	assert.Equal(t, ":9100", MetricsAddr)
	MetricsAddr = ""
}
