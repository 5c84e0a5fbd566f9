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

package dns

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/apache/servicecomb-eureka-client/pkg/eurekaerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTXT struct {
	records map[string][]string
	queries []string
}

func (f *fakeTXT) LookupTXT(_ context.Context, name string) ([]string, error) {
	f.queries = append(f.queries, name)
	records, ok := f.records[name]
	if !ok {
		return nil, errors.New("no such host")
	}
	return records, nil
}

func TestEndpointResolver_Resolve(t *testing.T) {
	txt := &fakeTXT{records: map[string][]string{
		"txt.us-east-1.eureka.example.com": {"r1"},
		"txt.r1":                           {"host1", "host2"},
	}}
	r := NewEndpointResolver("us-east-1", txt)

	for i := 0; i < 20; i++ {
		resolved, err := r.Resolve(context.Background(), "https://eureka.example.com:8761/eureka/v2/apps/")
		require.NoError(t, err)

		u, err := url.Parse(resolved)
		require.NoError(t, err)
		assert.Contains(t, []string{"host1", "host2"}, u.Hostname())
		assert.Equal(t, "https", u.Scheme)
		assert.Equal(t, "8761", u.Port())
		assert.Equal(t, "/eureka/v2/apps/", u.Path)
	}
	assert.Equal(t, "txt.us-east-1.eureka.example.com", txt.queries[0])
	assert.Equal(t, "txt.r1", txt.queries[1])
}

func TestEndpointResolver_PickZone(t *testing.T) {
	txt := &fakeTXT{records: map[string][]string{
		"txt.eu-west-1.eureka": {"z1 z2"},
		"txt.z1":               {"h-z1"},
		"txt.z2":               {"h-z2"},
	}}
	r := NewEndpointResolver("eu-west-1", txt)

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		resolved, err := r.Resolve(context.Background(), "http://eureka/apps")
		require.NoError(t, err)
		u, _ := url.Parse(resolved)
		seen[u.Host] = true
	}
	assert.True(t, seen["h-z1"])
	assert.True(t, seen["h-z2"])
}

func TestEndpointResolver_Failures(t *testing.T) {
	_, err := NewEndpointResolver("", &fakeTXT{}).Resolve(context.Background(), "http://eureka/apps")
	assert.True(t, eurekaerr.IsDiscovery(err))

	txt := &fakeTXT{records: map[string][]string{"txt.r.eureka": {"z1"}}}
	_, err = NewEndpointResolver("r", txt).Resolve(context.Background(), "http://eureka/apps")
	assert.True(t, eurekaerr.IsDiscovery(err))

	_, err = NewEndpointResolver("r", &fakeTXT{}).Resolve(context.Background(), "http://eureka/apps")
	assert.True(t, eurekaerr.IsDiscovery(err))

	empty := &fakeTXT{records: map[string][]string{"txt.r.eureka": {}}}
	_, err = NewEndpointResolver("r", empty).Resolve(context.Background(), "http://eureka/apps")
	assert.True(t, eurekaerr.IsDiscovery(err))
}
