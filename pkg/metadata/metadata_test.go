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

package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/apache/servicecomb-eureka-client/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEC2Provider_FetchMetadata(t *testing.T) {
	values := map[string]string{
		"instance-id":                          "i-123",
		"placement/availability-zone":          "us-east-1c",
		"public-hostname":                      "ec2-1.compute.amazonaws.com",
		"public-ipv4":                          "54.0.0.1",
		"local-hostname":                       "ip-10-0-0-1.ec2.internal",
		"local-ipv4":                           "10.0.0.1",
		"mac":                                  "0a:1b",
		"network/interfaces/macs/0a:1b/vpc-id": "vpc-9",
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, ok := values[strings.TrimPrefix(r.URL.Path, "/latest/meta-data/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(v + "\n"))
	}))
	defer server.Close()

	p, err := NewEC2Provider(server.URL+"/latest/meta-data", time.Second)
	require.NoError(t, err)
	md, err := p.FetchMetadata(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "i-123", md[model.MetaInstanceID])
	assert.Equal(t, "us-east-1c", md[model.MetaAvailabilityZone])
	assert.Equal(t, "10.0.0.1", md[model.MetaLocalIPv4])
	assert.Equal(t, "vpc-9", md["vpc-id"])
	_, ok := md["ami-id"]
	assert.False(t, ok)
}

func TestEC2Provider_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	p, err := NewEC2Provider(url, time.Second)
	require.NoError(t, err)
	_, err = p.FetchMetadata(context.Background())
	assert.Error(t, err)
}
