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
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apache/servicecomb-eureka-client/pkg/auth"
	"github.com/apache/servicecomb-eureka-client/pkg/dns"
	"github.com/apache/servicecomb-eureka-client/pkg/eurekaerr"
	"github.com/apache/servicecomb-eureka-client/pkg/lb"
	"github.com/apache/servicecomb-eureka-client/pkg/log"
	"github.com/apache/servicecomb-eureka-client/pkg/metrics"
	"github.com/apache/servicecomb-eureka-client/pkg/model"
	"github.com/apache/servicecomb-eureka-client/pkg/rest"
)

// registryAPI issues the registry calls against the current endpoint of
// the ring. It never rotates the ring itself.
type registryAPI struct {
	client     *rest.URLClient
	ring       *lb.Ring
	resolver   *dns.EndpointResolver
	tokens     auth.TokenProvider
	strictAuth bool
}

// endpoint resolves the base URL and headers of the next call.
func (a *registryAPI) endpoint(ctx context.Context) (string, http.Header, error) {
	base := a.ring.Current()
	if a.resolver != nil {
		resolved, err := a.resolver.Resolve(ctx, base)
		if err != nil {
			return "", nil, err
		}
		base = resolved
	}

	headers := make(http.Header)
	headers.Set(rest.HeaderAccept, rest.ContentTypeJSON)
	headers.Set(rest.HeaderContentType, rest.ContentTypeJSON)
	if a.tokens == nil {
		return base, headers, nil
	}
	token, err := a.tokens.Token(ctx)
	if err == nil && len(token) == 0 {
		err = auth.ErrEmptyToken
	}
	if err != nil {
		if a.strictAuth {
			return "", nil, eurekaerr.Wrap(eurekaerr.ErrUnauthorized, "", err)
		}
		log.Warn(fmt.Sprintf("acquire auth token failed, call %s without credentials: %s", base, err))
		return base, headers, nil
	}
	headers.Set(rest.HeaderAuthorization, rest.BearerPrefix+token)
	return base, headers, nil
}

func joinURL(base string, elems ...string) string {
	for i, e := range elems {
		elems[i] = url.PathEscape(e)
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.Join(elems, "/")
}

// do returns the response body when the registry answered with expect.
func (a *registryAPI) do(ctx context.Context, op, method string, body []byte, expect int, elems ...string) (string, []byte, error) {
	base, headers, err := a.endpoint(ctx)
	if err != nil {
		return base, nil, err
	}
	rawURL := joinURL(base, elems...)
	resp, err := a.client.HttpDoWithContext(ctx, method, rawURL, headers, body)
	if err != nil {
		return base, nil, eurekaerr.Wrap(eurekaerr.ErrTransport, op+" "+rawURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return base, nil, eurekaerr.Wrap(eurekaerr.ErrTransport, op+" "+rawURL, err)
	}
	if resp.StatusCode != expect {
		return base, nil, eurekaerr.StatusError(op, resp.StatusCode)
	}
	return base, respBody, nil
}

func (a *registryAPI) Register(ctx context.Context, instance *model.Instance) (endpoint string, err error) {
	defer func(start time.Time) { metrics.ReportRegister(err, start) }(time.Now())
	body, err := json.Marshal(&model.RegisterRequest{Instance: instance})
	if err != nil {
		return "", err
	}
	endpoint, _, err = a.do(ctx, "register", http.MethodPost, body, http.StatusNoContent, instance.App)
	return endpoint, err
}

func (a *registryAPI) Heartbeat(ctx context.Context, app, id string) (endpoint string, err error) {
	defer func(start time.Time) { metrics.ReportHeartbeat(err, start) }(time.Now())
	endpoint, _, err = a.do(ctx, "heartbeat", http.MethodPut, nil, http.StatusOK, app, id)
	return endpoint, err
}

func (a *registryAPI) Deregister(ctx context.Context, app, id string) (endpoint string, err error) {
	defer func(start time.Time) { metrics.ReportDeregister(err, start) }(time.Now())
	endpoint, _, err = a.do(ctx, "deregister", http.MethodDelete, nil, http.StatusOK, app, id)
	return endpoint, err
}

func (a *registryAPI) FetchApplications(ctx context.Context) (apps []model.Application, err error) {
	defer func(start time.Time) { metrics.ReportFetch(err, start) }(time.Now())
	_, body, err := a.do(ctx, "fetch registry", http.MethodGet, nil, http.StatusOK, "")
	if err != nil {
		return nil, err
	}
	apps, err = model.DecodeApplications(body)
	if err != nil {
		return nil, eurekaerr.Wrap(eurekaerr.ErrUnexpectedStatus, "decode registry", err)
	}
	return apps, nil
}
