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

// Package dns resolves the registry host through the eureka TXT record
// convention:
//
//	txt.<region>.<host>  -> zone names of the region
//	txt.<zone name>      -> registry host names
package dns

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/apache/servicecomb-eureka-client/pkg/eurekaerr"
	"github.com/apache/servicecomb-eureka-client/pkg/log"
)

// TXTResolver is satisfied by *net.Resolver.
type TXTResolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

type EndpointResolver struct {
	Region string
	TXT    TXTResolver

	mux sync.Mutex
	rnd *rand.Rand
}

// NewEndpointResolver uses net.DefaultResolver when r is nil.
func NewEndpointResolver(region string, r TXTResolver) *EndpointResolver {
	if r == nil {
		r = net.DefaultResolver
	}
	return &EndpointResolver{
		Region: region,
		TXT:    r,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Resolve returns serviceURL with its host replaced by a registry host
// found in DNS. Scheme, port and path are kept. Every call resolves
// again, nothing is remembered between calls.
func (r *EndpointResolver) Resolve(ctx context.Context, serviceURL string) (string, error) {
	if len(r.Region) == 0 {
		return "", eurekaerr.NewError(eurekaerr.ErrDiscovery, "region is required for DNS discovery")
	}
	u, err := url.Parse(serviceURL)
	if err != nil {
		return "", eurekaerr.Wrap(eurekaerr.ErrDiscovery, "invalid service url "+serviceURL, err)
	}
	host := u.Hostname()

	zones, err := r.lookup(ctx, fmt.Sprintf("txt.%s.%s", r.Region, host))
	if err != nil {
		return "", err
	}
	zone := r.pick(zones)

	hosts, err := r.lookup(ctx, "txt."+zone)
	if err != nil {
		return "", err
	}
	resolved := hosts[0]
	log.Debug(fmt.Sprintf("resolved registry host %s via %s", resolved, zone))

	if port := u.Port(); len(port) > 0 {
		u.Host = net.JoinHostPort(resolved, port)
	} else {
		u.Host = resolved
	}
	return u.String(), nil
}

// lookup returns the TXT values of name, a record may carry several
// whitespace separated values.
func (r *EndpointResolver) lookup(ctx context.Context, name string) ([]string, error) {
	records, err := r.TXT.LookupTXT(ctx, name)
	if err != nil {
		return nil, eurekaerr.Wrap(eurekaerr.ErrDiscovery, "lookup "+name, err)
	}
	var values []string
	for _, record := range records {
		values = append(values, strings.Fields(record)...)
	}
	if len(values) == 0 {
		return nil, eurekaerr.NewErrorf(eurekaerr.ErrDiscovery, "lookup %s returned no records", name)
	}
	return values, nil
}

func (r *EndpointResolver) pick(values []string) string {
	r.mux.Lock()
	defer r.mux.Unlock()
	return values[r.rnd.Intn(len(values))]
}
