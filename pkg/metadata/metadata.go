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
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apache/servicecomb-eureka-client/pkg/log"
	"github.com/apache/servicecomb-eureka-client/pkg/model"
	"github.com/apache/servicecomb-eureka-client/pkg/rest"
)

const DefaultEC2BaseURL = "http://169.254.169.254/latest/meta-data/"

// Provider returns the data center metadata of the running host.
type Provider interface {
	FetchMetadata(ctx context.Context) (map[string]string, error)
}

type ProviderFunc func(ctx context.Context) (map[string]string, error)

func (f ProviderFunc) FetchMetadata(ctx context.Context) (map[string]string, error) {
	return f(ctx)
}

// ec2Paths maps eureka metadata keys to instance metadata paths.
var ec2Paths = map[string]string{
	"ami-id":                   "ami-id",
	"ami-launch-index":         "ami-launch-index",
	"ami-manifest-path":        "ami-manifest-path",
	"hostname":                 "hostname",
	"instance-type":            "instance-type",
	"mac":                      "mac",
	"vpc-id":                   "", // resolved from mac
	model.MetaInstanceID:       "instance-id",
	model.MetaAvailabilityZone: "placement/availability-zone",
	model.MetaPublicHostname:   "public-hostname",
	model.MetaPublicIPv4:       "public-ipv4",
	model.MetaLocalHostname:    "local-hostname",
	model.MetaLocalIPv4:        "local-ipv4",
}

type EC2Provider struct {
	BaseURL string
	Client  *rest.URLClient
}

func NewEC2Provider(baseURL string, timeout time.Duration) (*EC2Provider, error) {
	if len(baseURL) == 0 {
		baseURL = DefaultEC2BaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	opt := rest.DefaultURLClientOption()
	opt.Compressed = false
	opt.RequestTimeout = timeout
	client, err := rest.GetURLClient(opt)
	if err != nil {
		return nil, err
	}
	return &EC2Provider{BaseURL: baseURL, Client: client}, nil
}

// FetchMetadata fails only when the metadata service can not be reached,
// keys the service does not know are left out.
func (p *EC2Provider) FetchMetadata(ctx context.Context) (map[string]string, error) {
	result := make(map[string]string, len(ec2Paths))
	for key, path := range ec2Paths {
		if len(path) == 0 {
			continue
		}
		value, ok, err := p.get(ctx, path)
		if err != nil {
			return nil, err
		}
		if ok {
			result[key] = value
		}
	}
	if mac, ok := result["mac"]; ok {
		value, ok, err := p.get(ctx, "network/interfaces/macs/"+mac+"/vpc-id")
		if err != nil {
			return nil, err
		}
		if ok {
			result["vpc-id"] = value
		}
	}
	log.Debug(fmt.Sprintf("fetched %d EC2 metadata values", len(result)))
	return result, nil
}

func (p *EC2Provider) get(ctx context.Context, path string) (string, bool, error) {
	resp, err := p.Client.HttpDoWithContext(ctx, http.MethodGet, p.BaseURL+path, nil, nil)
	if err != nil {
		return "", false, fmt.Errorf("fetch EC2 metadata %s: %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("read EC2 metadata %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Debug(fmt.Sprintf("EC2 metadata %s returned status %d", path, resp.StatusCode))
		return "", false, nil
	}
	return strings.TrimSpace(string(body)), true, nil
}
