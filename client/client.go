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

// Package client registers the running instance with a eureka registry,
// keeps the registration alive and caches the registry for lookups.
package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apache/servicecomb-eureka-client/pkg/auth"
	"github.com/apache/servicecomb-eureka-client/pkg/backoff"
	"github.com/apache/servicecomb-eureka-client/pkg/dns"
	"github.com/apache/servicecomb-eureka-client/pkg/eurekaerr"
	"github.com/apache/servicecomb-eureka-client/pkg/lb"
	"github.com/apache/servicecomb-eureka-client/pkg/log"
	"github.com/apache/servicecomb-eureka-client/pkg/metadata"
	"github.com/apache/servicecomb-eureka-client/pkg/model"
	"github.com/apache/servicecomb-eureka-client/pkg/rest"
	"github.com/go-chassis/foundation/gopool"
	"golang.org/x/time/rate"
)

// RegistryPollInterval is the wait between fetches while Start waits
// for the own VIP address to show up in the registry.
const RegistryPollInterval = 2 * time.Second

type options struct {
	tokens    auth.TokenProvider
	metadata  metadata.Provider
	txt       dns.TXTResolver
	backoff   backoff.Backoff
	urlClient *rest.URLClient
	listeners []Listener
}

type Option func(*options)

// WithTokenProvider overrides the client credentials provider built from
// Config.Auth.
func WithTokenProvider(p auth.TokenProvider) Option {
	return func(o *options) { o.tokens = p }
}

// WithMetadataProvider overrides the EC2 provider used for Amazon data
// centers.
func WithMetadataProvider(p metadata.Provider) Option {
	return func(o *options) { o.metadata = p }
}

func WithTXTResolver(r dns.TXTResolver) Option {
	return func(o *options) { o.txt = r }
}

// WithBackoff replaces the random delay between registration attempts.
func WithBackoff(b backoff.Backoff) Option {
	return func(o *options) { o.backoff = b }
}

func WithURLClient(c *rest.URLClient) Option {
	return func(o *options) { o.urlClient = c }
}

func WithListener(l Listener) Option {
	return func(o *options) { o.listeners = append(o.listeners, l) }
}

type Client struct {
	cfg       Config
	ring      *lb.Ring
	api       *registryAPI
	cache     *RegistryCache
	lifecycle *lifecycle
	events    *emitter
	metadata  metadata.Provider
	// registryPoll paces waitForRegistry
	registryPoll backoff.Backoff

	mux     sync.Mutex
	running bool
	cancel  context.CancelFunc
	pool    *gopool.Pool

	fetching int32
}

// New validates cfg and builds a client, nothing is sent before Start.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	ring, err := lb.NewRing(cfg.ServiceURLs(cfg.Zone()))
	if err != nil {
		return nil, eurekaerr.Wrap(eurekaerr.ErrInvalidConfig, "", err)
	}

	urlClient := o.urlClient
	if urlClient == nil {
		urlClient, err = rest.GetURLClient(cfg.Transport)
		if err != nil {
			return nil, eurekaerr.Wrap(eurekaerr.ErrInvalidConfig, "transport", err)
		}
	}

	api := &registryAPI{
		client:     urlClient,
		ring:       ring,
		tokens:     o.tokens,
		strictAuth: cfg.Auth.Strict,
	}
	if api.tokens == nil && cfg.Auth.Enabled() {
		api.tokens, err = auth.NewClientCredentials(auth.Options{
			TokenURL:     cfg.Auth.TokenURL,
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			Scopes:       cfg.Auth.Scopes,
			Timeout:      cfg.Transport.RequestTimeout,
		})
		if err != nil {
			return nil, eurekaerr.Wrap(eurekaerr.ErrInvalidConfig, "auth", err)
		}
	}
	if cfg.Eureka.UseDNS {
		api.resolver = dns.NewEndpointResolver(cfg.Eureka.EC2Region, o.txt)
	}

	md := o.metadata
	if md == nil && cfg.IsAmazon() && cfg.Eureka.FetchMetadata {
		md, err = metadata.NewEC2Provider(cfg.Eureka.MetadataURL, cfg.Transport.RequestTimeout)
		if err != nil {
			return nil, eurekaerr.Wrap(eurekaerr.ErrInvalidConfig, "metadata", err)
		}
	}
	if !cfg.Eureka.FetchMetadata {
		md = nil
	}

	bo := o.backoff
	if bo == nil {
		bo = backoff.GetBackoff()
		if cfg.Eureka.MaxRetryDelay > 0 {
			bo = backoff.NewRandomBackoff(cfg.Eureka.MaxRetryDelay)
		}
	}
	limit := rate.Inf
	if cfg.Eureka.ReRegisterRate > 0 {
		limit = rate.Limit(cfg.Eureka.ReRegisterRate)
	}

	events := &emitter{}
	for _, l := range o.listeners {
		events.add(l)
	}

	return &Client{
		cfg:   cfg,
		ring:  ring,
		api:   api,
		cache: NewRegistryCache(cfg.Eureka.FilterUpInstances),
		lifecycle: &lifecycle{
			api:      api,
			ring:     ring,
			backoff:  bo,
			interval: cfg.Eureka.HeartbeatInterval,
			limiter:  rate.NewLimiter(limit, 1),
			events:   events,
			state:    StateUnregistered,
			instance: cfg.Instance.Clone(),
		},
		events:       events,
		metadata:     md,
		registryPoll: backoff.ConstantBackoff{Interval: RegistryPollInterval},
	}, nil
}

func (c *Client) AddListener(l Listener) {
	c.events.add(l)
}

func (c *Client) State() State {
	return c.lifecycle.State()
}

// Instance returns the instance as it is announced to the registry.
func (c *Client) Instance() *model.Instance {
	return c.lifecycle.Instance()
}

// Endpoints returns the registry endpoints in the order they are tried.
func (c *Client) Endpoints() []string {
	return c.ring.Endpoints()
}

// Start enriches the instance, registers it and starts heartbeats and
// registry polling. It blocks while the registry is unreachable. An error
// of the first registry fetch is returned, polling keeps running then and
// Stop has to be called.
func (c *Client) Start(ctx context.Context) error {
	c.mux.Lock()
	if c.running {
		c.mux.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(context.Background())
	pool := gopool.New(gopool.Configure().Workers(2))
	c.running, c.cancel, c.pool = true, cancel, pool
	c.mux.Unlock()

	ctx, stop := bindContext(ctx, runCtx)
	defer stop()

	if c.metadata != nil {
		c.addInstanceMetadata(ctx)
	} else {
		c.lifecycle.substituteHost("")
	}

	if c.cfg.Eureka.RegisterWithEureka {
		if err := c.lifecycle.register(ctx); err != nil {
			_ = c.Stop(context.Background())
			return err
		}
		pool.Do(func(_ context.Context) {
			c.lifecycle.heartbeat(runCtx)
		})
	}

	if c.cfg.Eureka.FetchRegistry {
		pool.Do(func(_ context.Context) {
			c.fetchLoop(runCtx)
		})
		if c.cfg.Eureka.WaitForRegistry {
			if err := c.waitForRegistry(ctx); err != nil {
				return err
			}
		} else if err := c.FetchRegistry(ctx); err != nil {
			log.Error("fetch registry at start failed", err)
			return err
		}
	}

	log.Info(fmt.Sprintf("eureka client of instance[%s/%s] started", c.cfg.Instance.App, c.Instance().ID()))
	c.events.emit(Event{Type: EventStarted, Endpoint: c.ring.Current()})
	return nil
}

// Stop ends heartbeats, polling and pending registration retries, then
// deregisters the instance if it is registered.
func (c *Client) Stop(ctx context.Context) error {
	c.mux.Lock()
	if !c.running {
		c.mux.Unlock()
		return nil
	}
	cancel, pool := c.cancel, c.pool
	c.running, c.cancel, c.pool = false, nil, nil
	c.mux.Unlock()

	cancel()
	pool.Close(true)

	if !c.lifecycle.registered() {
		return nil
	}
	return c.lifecycle.deregister(ctx)
}

// FetchRegistry reads the whole registry and replaces the cache. On
// failure the cache keeps its previous content.
func (c *Client) FetchRegistry(ctx context.Context) error {
	atomic.AddInt32(&c.fetching, 1)
	defer atomic.AddInt32(&c.fetching, -1)

	apps, err := c.api.FetchApplications(ctx)
	if err != nil {
		return err
	}
	c.cache.Update(apps)
	c.events.emit(Event{Type: EventRegistryUpdated, Endpoint: c.ring.Current()})
	return nil
}

// Apps returns the upper-cased names of the cached applications.
func (c *Client) Apps() []string {
	return c.cache.Apps()
}

func (c *Client) GetInstancesByAppID(appID string) ([]model.Instance, error) {
	return c.cache.GetInstancesByAppID(appID)
}

func (c *Client) GetInstancesByVipAddress(vip string) ([]model.Instance, error) {
	return c.cache.GetInstancesByVipAddress(vip)
}

func (c *Client) fetchLoop(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.Eureka.RegistryFetchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tryFetch(ctx)
		}
	}
}

// tryFetch skips the tick while a previous fetch is still in flight.
func (c *Client) tryFetch(ctx context.Context) {
	if atomic.LoadInt32(&c.fetching) > 0 {
		log.Debug("registry fetch still in flight, skip this round")
		return
	}
	if err := c.FetchRegistry(ctx); err != nil && ctx.Err() == nil {
		log.Error("fetch registry failed", err)
	}
}

func (c *Client) waitForRegistry(ctx context.Context) error {
	vip := c.cfg.Instance.VipAddress
	for attempt := 0; ; attempt++ {
		if err := c.FetchRegistry(ctx); err != nil {
			log.Warn(fmt.Sprintf("fetch registry failed while waiting for vip[%s]: %s", vip, err))
		} else if instances, _ := c.cache.GetInstancesByVipAddress(vip); len(instances) > 0 {
			return nil
		}
		timer := time.NewTimer(c.registryPoll.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) addInstanceMetadata(ctx context.Context) {
	md, err := c.metadata.FetchMetadata(ctx)
	if err != nil {
		log.Error("fetch instance metadata failed, announce the configured values", err)
		c.lifecycle.substituteHost("")
		return
	}
	zone := c.lifecycle.enrich(md, c.cfg.Eureka.UseLocalMetadata, c.cfg.Eureka.PreferIPAddress)
	if len(c.cfg.Eureka.ZoneServiceURLs) == 0 || zone == c.cfg.Zone() {
		return
	}
	if err := c.ring.Reset(c.cfg.ServiceURLs(zone)); err != nil {
		log.Error(fmt.Sprintf("prefer endpoints of zone[%s] failed", zone), err)
	}
}

// bindContext returns a child of ctx that is also cancelled with run.
func bindContext(ctx, run context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-run.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
