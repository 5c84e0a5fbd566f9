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
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/apache/servicecomb-eureka-client/pkg/eurekaerr"
	"github.com/apache/servicecomb-eureka-client/pkg/model"
	"github.com/apache/servicecomb-eureka-client/pkg/rest"
)

const (
	DefaultServicePath    = "/eureka/v2/apps/"
	DefaultHeartbeat      = 30 * time.Second
	DefaultRegistryFetch  = 30 * time.Second
	DefaultMaxRetryDelay  = 2 * time.Second
	DefaultReRegisterRate = 1.0
)

// Config is resolved once before New and never changed by the client.
type Config struct {
	Instance  model.Instance
	Eureka    EurekaConfig
	Auth      AuthConfig
	Transport rest.URLClientOption
}

type EurekaConfig struct {
	// ServiceURLs is the default endpoint list. When empty the endpoint
	// is built from Host, Port, ServicePath and SSL.
	ServiceURLs []string
	// ZoneServiceURLs lists endpoints per availability zone.
	ZoneServiceURLs map[string][]string
	PreferSameZone  bool

	Host        string
	Port        int
	ServicePath string
	SSL         bool

	HeartbeatInterval     time.Duration
	RegistryFetchInterval time.Duration

	RegisterWithEureka bool
	FetchRegistry      bool
	WaitForRegistry    bool
	FilterUpInstances  bool

	UseDNS    bool
	EC2Region string

	FetchMetadata    bool
	UseLocalMetadata bool
	PreferIPAddress  bool
	MetadataURL      string

	// MaxRetryDelay bounds the random wait between registration attempts,
	// the shared two second backoff is used when it is not positive.
	MaxRetryDelay time.Duration
	// ReRegisterRate is the number of heartbeat triggered re-registrations
	// allowed per second, <= 0 means unlimited.
	ReRegisterRate float64
}

type AuthConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	// Strict fails a registry call when no token can be acquired instead
	// of sending it without credentials.
	Strict bool
}

func (a AuthConfig) Enabled() bool {
	return len(a.TokenURL) > 0
}

func DefaultConfig() Config {
	return Config{
		Instance: model.Instance{
			Status: model.StatusUp,
			DataCenterInfo: model.DataCenterInfo{
				Class: model.ClassDefaultDataCenterInfo,
				Name:  model.DataCenterMyOwn,
			},
		},
		Eureka: EurekaConfig{
			ServicePath:           DefaultServicePath,
			PreferSameZone:        true,
			HeartbeatInterval:     DefaultHeartbeat,
			RegistryFetchInterval: DefaultRegistryFetch,
			RegisterWithEureka:    true,
			FetchRegistry:         true,
			FilterUpInstances:     true,
			FetchMetadata:         true,
			MaxRetryDelay:         DefaultMaxRetryDelay,
			ReRegisterRate:        DefaultReRegisterRate,
		},
		Transport: rest.DefaultURLClientOption(),
	}
}

func (c *Config) IsAmazon() bool {
	return c.Instance.DataCenterInfo.Name == model.DataCenterAmazon
}

// Validate checks the endpoint list and intervals. The instance fields are
// only required when the instance is registered.
func (c *Config) Validate() error {
	if c.Eureka.RegisterWithEureka {
		if err := c.validateInstance(); err != nil {
			return err
		}
	}
	if c.Eureka.HeartbeatInterval <= 0 {
		return eurekaerr.NewError(eurekaerr.ErrInvalidConfig, "eureka.heartbeatInterval must be positive")
	}
	if c.Eureka.FetchRegistry && c.Eureka.RegistryFetchInterval <= 0 {
		return eurekaerr.NewError(eurekaerr.ErrInvalidConfig, "eureka.registryFetchInterval must be positive")
	}
	if len(c.ServiceURLs(c.Zone())) == 0 {
		return eurekaerr.NewError(eurekaerr.ErrInvalidConfig, "no registry endpoint configured")
	}
	return nil
}

func (c *Config) validateInstance() error {
	var missing []string
	inst := &c.Instance
	if len(inst.App) == 0 {
		missing = append(missing, "instance.app")
	}
	if len(inst.VipAddress) == 0 {
		missing = append(missing, "instance.vipAddress")
	}
	if inst.Port == nil || inst.Port.Port <= 0 {
		missing = append(missing, "instance.port")
	}
	if len(inst.DataCenterInfo.Name) == 0 {
		missing = append(missing, "instance.dataCenterInfo.name")
	}
	// on EC2 the host name comes from the instance metadata
	if len(inst.HostName) == 0 && !(c.IsAmazon() && c.Eureka.FetchMetadata) {
		missing = append(missing, "instance.hostName")
	}
	if len(missing) > 0 {
		return eurekaerr.NewError(eurekaerr.ErrInvalidConfig, "missing "+strings.Join(missing, ", "))
	}
	return nil
}

// Zone is the availability zone named by the data center metadata.
func (c *Config) Zone() string {
	return c.Instance.DataCenterInfo.Metadata[model.MetaAvailabilityZone]
}

// ServiceURLs returns the registry endpoints in the order they are tried.
// With PreferSameZone the endpoints of zone come first, the remaining
// zones follow by name and the default list comes last.
func (c *Config) ServiceURLs(zone string) []string {
	e := &c.Eureka
	var urls []string
	if len(e.ZoneServiceURLs) > 0 {
		if e.PreferSameZone && len(zone) > 0 {
			urls = append(urls, e.ZoneServiceURLs[zone]...)
		}
		zones := make([]string, 0, len(e.ZoneServiceURLs))
		for z := range e.ZoneServiceURLs {
			if e.PreferSameZone && z == zone {
				continue
			}
			zones = append(zones, z)
		}
		sort.Strings(zones)
		for _, z := range zones {
			urls = append(urls, e.ZoneServiceURLs[z]...)
		}
	}
	urls = append(urls, e.ServiceURLs...)
	if len(urls) == 0 && len(e.Host) > 0 {
		urls = append(urls, e.hostURL())
	}
	return urls
}

func (e *EurekaConfig) hostURL() string {
	scheme := "http"
	if e.SSL {
		scheme = "https"
	}
	host := e.Host
	if e.Port > 0 {
		host = net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
	}
	path := e.ServicePath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s://%s%s", scheme, host, path)
}
