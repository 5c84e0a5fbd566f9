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
	"testing"

	"github.com/apache/servicecomb-eureka-client/pkg/eurekaerr"
	"github.com/apache/servicecomb-eureka-client/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	singleInstancePayload = `{"applications":{"application":{"name":"demo","instance":
		{"instanceId":"i-1","app":"DEMO","hostName":"h1","vipAddress":"demo-vip","status":"UP",
		 "port":{"$":8080,"@enabled":"true"},"dataCenterInfo":{"@class":"x","name":"MyOwn"}}}}}`
	listInstancePayload = `{"applications":{"application":[{"name":"demo","instance":[
		{"instanceId":"i-1","app":"DEMO","hostName":"h1","vipAddress":"demo-vip","status":"UP",
		 "port":{"$":8080,"@enabled":"true"},"dataCenterInfo":{"@class":"x","name":"MyOwn"}}]}]}}`
)

func cacheFrom(t *testing.T, filterUp bool, payload string) *RegistryCache {
	apps, err := model.DecodeApplications([]byte(payload))
	require.NoError(t, err)
	c := NewRegistryCache(filterUp)
	c.Update(apps)
	return c
}

func TestRegistryCache_SingleAndListPayload(t *testing.T) {
	single := cacheFrom(t, true, singleInstancePayload)
	list := cacheFrom(t, true, listInstancePayload)
	assert.Equal(t, list.load(), single.load())

	instances, err := single.GetInstancesByAppID("demo")
	assert.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, "i-1", instances[0].InstanceID)

	instances, err = single.GetInstancesByVipAddress("demo-vip")
	assert.NoError(t, err)
	assert.Len(t, instances, 1)
}

func TestRegistryCache_FilterUpInstances(t *testing.T) {
	apps := []model.Application{{
		Name: "demo",
		Instance: model.InstanceList{
			instance("demo", "up", "demo-vip", model.StatusUp),
			instance("demo", "down", "demo-vip", model.StatusDown),
		},
	}}

	filtered := NewRegistryCache(true)
	filtered.Update(apps)
	instances, _ := filtered.GetInstancesByAppID("DEMO")
	require.Len(t, instances, 1)
	assert.Equal(t, "up", instances[0].InstanceID)
	instances, _ = filtered.GetInstancesByVipAddress("demo-vip")
	assert.Len(t, instances, 1)

	all := NewRegistryCache(false)
	all.Update(apps)
	instances, _ = all.GetInstancesByAppID("demo")
	assert.Len(t, instances, 2)
	instances, _ = all.GetInstancesByVipAddress("demo-vip")
	assert.Len(t, instances, 2)
}

func TestRegistryCache_EmptyKey(t *testing.T) {
	c := NewRegistryCache(true)
	_, err := c.GetInstancesByAppID("")
	assert.True(t, eurekaerr.IsInput(err))
	_, err = c.GetInstancesByVipAddress("")
	assert.True(t, eurekaerr.IsInput(err))
}

func TestRegistryCache_Lookup(t *testing.T) {
	c := NewRegistryCache(true)
	instances, err := c.GetInstancesByAppID("missing")
	assert.NoError(t, err)
	assert.NotNil(t, instances)
	assert.Empty(t, instances)

	c.Update([]model.Application{
		{Name: "demo", Instance: model.InstanceList{instance("demo", "a", "shared", model.StatusUp)}},
		{Name: "other", Instance: model.InstanceList{instance("other", "b", "shared", model.StatusUp)}},
	})
	instances, _ = c.GetInstancesByVipAddress("shared")
	assert.Len(t, instances, 2)
	assert.ElementsMatch(t, []string{"DEMO", "OTHER"}, c.Apps())

	// results are copies
	instances, _ = c.GetInstancesByAppID("Demo")
	require.Len(t, instances, 1)
	instances[0].HostName = "changed"
	instances[0].Port.Port = 1
	again, _ := c.GetInstancesByAppID("demo")
	assert.Equal(t, "a.local", again[0].HostName)
	assert.Equal(t, 8080, again[0].Port.Port)
}
