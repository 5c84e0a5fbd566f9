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
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/apache/servicecomb-eureka-client/pkg/eurekaerr"
	"github.com/apache/servicecomb-eureka-client/pkg/log"
	"github.com/apache/servicecomb-eureka-client/pkg/metrics"
	"github.com/apache/servicecomb-eureka-client/pkg/model"
)

// registrySnapshot is never modified after it is installed.
type registrySnapshot struct {
	apps map[string][]model.Instance
	vips map[string][]model.Instance
}

func emptySnapshot() *registrySnapshot {
	return &registrySnapshot{
		apps: make(map[string][]model.Instance),
		vips: make(map[string][]model.Instance),
	}
}

// RegistryCache holds the last successfully fetched registry. Readers see
// either the previous or the next snapshot, never a mix of both.
type RegistryCache struct {
	FilterUpInstances bool

	snapshot atomic.Value
}

func NewRegistryCache(filterUp bool) *RegistryCache {
	c := &RegistryCache{FilterUpInstances: filterUp}
	c.snapshot.Store(emptySnapshot())
	return c
}

func (c *RegistryCache) load() *registrySnapshot {
	return c.snapshot.Load().(*registrySnapshot)
}

// transform indexes apps by upper-cased app name and by VIP address.
func (c *RegistryCache) transform(apps []model.Application) *registrySnapshot {
	s := emptySnapshot()
	for _, app := range apps {
		key := strings.ToUpper(app.Name)
		instances := s.apps[key]
		if instances == nil {
			instances = []model.Instance{}
		}
		for _, inst := range app.Instance {
			if c.FilterUpInstances && !inst.IsUp() {
				continue
			}
			instances = append(instances, inst)
			if len(inst.VipAddress) > 0 {
				s.vips[inst.VipAddress] = append(s.vips[inst.VipAddress], inst)
			}
		}
		s.apps[key] = instances
	}
	return s
}

// Update replaces the whole cache with apps.
func (c *RegistryCache) Update(apps []model.Application) {
	s := c.transform(apps)
	c.snapshot.Store(s)
	metrics.SetCacheSize(len(s.apps), len(s.vips))
	log.Debug(fmt.Sprintf("registry cache updated, %d apps, %d vips", len(s.apps), len(s.vips)))
}

func (c *RegistryCache) GetInstancesByAppID(appID string) ([]model.Instance, error) {
	if len(appID) == 0 {
		return nil, eurekaerr.NewError(eurekaerr.ErrInvalidKey, "app id is required")
	}
	instances := copyInstances(c.load().apps[strings.ToUpper(appID)])
	if len(instances) == 0 {
		log.Warn(fmt.Sprintf("no instances found for app [%s]", appID))
	}
	return instances, nil
}

func (c *RegistryCache) GetInstancesByVipAddress(vip string) ([]model.Instance, error) {
	if len(vip) == 0 {
		return nil, eurekaerr.NewError(eurekaerr.ErrInvalidKey, "vip address is required")
	}
	instances := copyInstances(c.load().vips[vip])
	if len(instances) == 0 {
		log.Warn(fmt.Sprintf("no instances found for vip [%s]", vip))
	}
	return instances, nil
}

// Apps returns the upper-cased app names currently cached.
func (c *RegistryCache) Apps() []string {
	s := c.load()
	names := make([]string, 0, len(s.apps))
	for name := range s.apps {
		names = append(names, name)
	}
	return names
}

func copyInstances(src []model.Instance) []model.Instance {
	dst := make([]model.Instance, 0, len(src))
	for i := range src {
		dst = append(dst, *src[i].Clone())
	}
	return dst
}
