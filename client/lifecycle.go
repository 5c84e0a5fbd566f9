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
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/apache/servicecomb-eureka-client/pkg/backoff"
	"github.com/apache/servicecomb-eureka-client/pkg/eurekaerr"
	"github.com/apache/servicecomb-eureka-client/pkg/lb"
	"github.com/apache/servicecomb-eureka-client/pkg/log"
	"github.com/apache/servicecomb-eureka-client/pkg/metrics"
	"github.com/apache/servicecomb-eureka-client/pkg/model"
	"golang.org/x/time/rate"
)

type State string

const (
	StateUnregistered  State = "UNREGISTERED"
	StateRegistering   State = "REGISTERING"
	StateRegistered    State = "REGISTERED"
	StateHeartbeating  State = "HEARTBEATING"
	StateDeregistering State = "DEREGISTERING"
)

// registerWatchdog only warns about a slow registration, the call itself
// is never cancelled by it.
var registerWatchdog = 10 * time.Second

// lifecycle owns the registration state and the working copy of the
// instance that metadata enrichment updates.
type lifecycle struct {
	api      *registryAPI
	ring     *lb.Ring
	backoff  backoff.Backoff
	interval time.Duration
	limiter  *rate.Limiter
	events   *emitter

	mux      sync.Mutex
	state    State
	instance *model.Instance
}

func (m *lifecycle) State() State {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.state
}

func (m *lifecycle) setState(s State) {
	m.mux.Lock()
	m.state = s
	m.mux.Unlock()
}

func (m *lifecycle) registered() bool {
	s := m.State()
	return s == StateRegistered || s == StateHeartbeating
}

// Instance returns a copy of the instance as it is announced.
func (m *lifecycle) Instance() *model.Instance {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.instance.Clone()
}

// enrich merges metadata into the data center info and takes host name
// and IP address from it. It returns the availability zone.
func (m *lifecycle) enrich(md map[string]string, useLocal, preferIP bool) string {
	m.mux.Lock()
	defer m.mux.Unlock()
	inst := m.instance
	if inst.DataCenterInfo.Metadata == nil {
		inst.DataCenterInfo.Metadata = make(map[string]string, len(md))
	}
	for k, v := range md {
		inst.DataCenterInfo.Metadata[k] = v
	}

	hostKey, ipKey := model.MetaPublicHostname, model.MetaPublicIPv4
	if useLocal {
		hostKey, ipKey = model.MetaLocalHostname, model.MetaLocalIPv4
	}
	host, ip := md[hostKey], md[ipKey]
	if len(ip) > 0 {
		inst.IPAddr = ip
	}
	if preferIP && len(ip) > 0 {
		inst.HostName = ip
	} else if len(host) > 0 {
		inst.HostName = host
	}
	m.substituteHostLocked(inst.HostName)
	return inst.DataCenterInfo.Metadata[model.MetaAvailabilityZone]
}

// substituteHost replaces the host placeholder of the URL templates,
// falling back to the instance host name when host is empty.
func (m *lifecycle) substituteHost(host string) {
	m.mux.Lock()
	m.substituteHostLocked(host)
	m.mux.Unlock()
}

func (m *lifecycle) substituteHostLocked(host string) {
	inst := m.instance
	if len(host) == 0 {
		host = inst.HostName
	}
	inst.StatusPageURL = strings.ReplaceAll(inst.StatusPageURL, model.HostPlaceholder, host)
	inst.HealthCheckURL = strings.ReplaceAll(inst.HealthCheckURL, model.HostPlaceholder, host)
	inst.HomePageURL = strings.ReplaceAll(inst.HomePageURL, model.HostPlaceholder, host)
}

func (m *lifecycle) prepare() *model.Instance {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.state = StateRegistering
	m.instance.Status = model.StatusUp
	return m.instance.Clone()
}

// register blocks until the current endpoint accepted the instance.
// A transport or endpoint discovery failure rotates the ring once and
// retries after a random delay, for as long as ctx lives. Any other
// failure is returned at once.
func (m *lifecycle) register(ctx context.Context) error {
	inst := m.prepare()
	for attempt := 0; ; attempt++ {
		endpoint, err := m.registerOnce(ctx, inst)
		if err == nil {
			m.setState(StateRegistered)
			log.Info(fmt.Sprintf("register instance[%s/%s] to %s", inst.App, inst.ID(), endpoint))
			m.events.emit(Event{Type: EventRegistered, Endpoint: endpoint})
			return nil
		}
		if ctx.Err() != nil {
			m.setState(StateUnregistered)
			return ctx.Err()
		}
		if !retryable(err) {
			m.setState(StateUnregistered)
			log.Error(fmt.Sprintf("register instance[%s/%s] failed", inst.App, inst.ID()), err)
			return err
		}

		next := m.ring.Rotate()
		delay := m.backoff.Delay(attempt)
		log.Warn(fmt.Sprintf("register instance[%s/%s] failed, retry %s after %s: %s",
			inst.App, inst.ID(), next, delay, err))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.setState(StateUnregistered)
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func retryable(err error) bool {
	return eurekaerr.IsTransport(err) || eurekaerr.IsDiscovery(err)
}

func (m *lifecycle) registerOnce(ctx context.Context, inst *model.Instance) (string, error) {
	watchdog := time.AfterFunc(registerWatchdog, func() {
		log.Warn(fmt.Sprintf("register instance[%s/%s] got no response in %s, still waiting",
			inst.App, inst.ID(), registerWatchdog))
	})
	defer watchdog.Stop()
	return m.api.Register(ctx, inst)
}

func (m *lifecycle) renew(ctx context.Context) error {
	inst := m.Instance()
	endpoint, err := m.api.Heartbeat(ctx, inst.App, inst.ID())
	if err != nil {
		return err
	}
	log.Debug(fmt.Sprintf("update instance[%s/%s] heartbeat", inst.App, inst.ID()))
	m.events.emit(Event{Type: EventHeartbeat, Endpoint: endpoint})
	return nil
}

// heartbeat renews the lease every interval until ctx is done. Failures
// never leave this loop, they end in a re-registration.
func (m *lifecycle) heartbeat(ctx context.Context) {
	m.setState(StateHeartbeating)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		err := m.renew(ctx)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		ticker.Stop()
		if !m.reRegister(ctx, err) {
			return
		}
		ticker.Reset(m.interval)
	}
}

// reRegister keeps the endpoint when the registry answered 404, it only
// forgot the instance. Any other heartbeat failure rotates the ring first.
func (m *lifecycle) reRegister(ctx context.Context, cause error) bool {
	inst := m.Instance()
	if eurekaerr.HasStatus(cause, http.StatusNotFound) {
		log.Warn(fmt.Sprintf("instance[%s/%s] is unknown to %s, register again",
			inst.App, inst.ID(), m.ring.Current()))
	} else {
		next := m.ring.Rotate()
		log.Error(fmt.Sprintf("update instance[%s/%s] heartbeat failed, register to %s",
			inst.App, inst.ID(), next), cause)
	}
	metrics.ReportReRegister()

	if err := m.limiter.Wait(ctx); err != nil {
		return false
	}
	if err := m.register(ctx); err != nil {
		if ctx.Err() == nil {
			log.Error(fmt.Sprintf("retry to register instance[%s/%s] failed, heartbeat stopped",
				inst.App, inst.ID()), err)
		}
		return false
	}
	m.setState(StateHeartbeating)
	return true
}

func (m *lifecycle) deregister(ctx context.Context) error {
	m.setState(StateDeregistering)
	inst := m.Instance()
	endpoint, err := m.api.Deregister(ctx, inst.App, inst.ID())
	m.setState(StateUnregistered)
	if err != nil {
		log.Error(fmt.Sprintf("unregister instance[%s/%s] failed", inst.App, inst.ID()), err)
	} else {
		log.Warn(fmt.Sprintf("unregister instance[%s/%s] from %s", inst.App, inst.ID(), endpoint))
	}
	m.events.emit(Event{Type: EventDeregistered, Endpoint: endpoint, Err: err})
	return err
}
