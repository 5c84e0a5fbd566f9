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

// Package model holds the registry wire types of the eureka protocol.
package model

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/spf13/cast"
)

type Status string

const (
	StatusUp           Status = "UP"
	StatusDown         Status = "DOWN"
	StatusStarting     Status = "STARTING"
	StatusOutOfService Status = "OUT_OF_SERVICE"
	StatusUnknown      Status = "UNKNOWN"
)

const (
	DataCenterMyOwn   = "MyOwn"
	DataCenterAmazon  = "Amazon"
	DataCenterNetflix = "Netflix"

	ClassDefaultDataCenterInfo = "com.netflix.appinfo.InstanceInfo$DefaultDataCenterInfo"
	ClassAmazonInfo            = "com.netflix.appinfo.AmazonInfo"

	// HostPlaceholder is substituted by the advertised host in URL templates.
	HostPlaceholder = "__HOST__"

	MetaInstanceID       = "instance-id"
	MetaAvailabilityZone = "availability-zone"
	MetaPublicHostname   = "public-hostname"
	MetaPublicIPv4       = "public-ipv4"
	MetaLocalHostname    = "local-hostname"
	MetaLocalIPv4        = "local-ipv4"
)

// Port is encoded the way the registry expects it: {"$": 8080, "@enabled": "true"}.
type Port struct {
	Port    int
	Enabled bool
}

type portJSON struct {
	Port    interface{} `json:"$"`
	Enabled interface{} `json:"@enabled"`
}

func (p Port) MarshalJSON() ([]byte, error) {
	return json.Marshal(portJSON{Port: p.Port, Enabled: strconv.FormatBool(p.Enabled)})
}

// UnmarshalJSON accepts numbers or strings for both fields, registries
// differ in how they render them. A bare number is an enabled port.
func (p *Port) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var v interface{}
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		port, err := cast.ToIntE(v)
		if err != nil {
			return err
		}
		p.Port, p.Enabled = port, true
		return nil
	}
	var raw portJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	port, err := cast.ToIntE(raw.Port)
	if err != nil && raw.Port != nil {
		return err
	}
	p.Port = port
	p.Enabled = raw.Enabled == nil || cast.ToBool(raw.Enabled)
	return nil
}

type DataCenterInfo struct {
	Class    string            `json:"@class"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type LeaseInfo struct {
	RenewalIntervalInSecs int `json:"renewalIntervalInSecs,omitempty"`
	DurationInSecs        int `json:"durationInSecs,omitempty"`
}

// Instance is one registered process, identified by App and ID().
type Instance struct {
	InstanceID       string            `json:"instanceId,omitempty"`
	App              string            `json:"app"`
	HostName         string            `json:"hostName"`
	IPAddr           string            `json:"ipAddr"`
	VipAddress       string            `json:"vipAddress"`
	SecureVipAddress string            `json:"secureVipAddress,omitempty"`
	Status           Status            `json:"status"`
	OverriddenStatus Status            `json:"overriddenstatus,omitempty"`
	Port             *Port             `json:"port,omitempty"`
	SecurePort       *Port             `json:"securePort,omitempty"`
	HomePageURL      string            `json:"homePageUrl,omitempty"`
	StatusPageURL    string            `json:"statusPageUrl,omitempty"`
	HealthCheckURL   string            `json:"healthCheckUrl,omitempty"`
	DataCenterInfo   DataCenterInfo    `json:"dataCenterInfo"`
	LeaseInfo        *LeaseInfo        `json:"leaseInfo,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// ID is the explicit instance id, the EC2 instance id for Amazon data
// centers, or the host name.
func (i *Instance) ID() string {
	if len(i.InstanceID) > 0 {
		return i.InstanceID
	}
	if i.DataCenterInfo.Name == DataCenterAmazon {
		if id := i.DataCenterInfo.Metadata[MetaInstanceID]; len(id) > 0 {
			return id
		}
	}
	return i.HostName
}

func (i *Instance) IsUp() bool {
	return i.Status == StatusUp
}

// Clone copies the instance including its maps and pointers.
func (i *Instance) Clone() *Instance {
	c := *i
	if i.Port != nil {
		p := *i.Port
		c.Port = &p
	}
	if i.SecurePort != nil {
		p := *i.SecurePort
		c.SecurePort = &p
	}
	if i.LeaseInfo != nil {
		l := *i.LeaseInfo
		c.LeaseInfo = &l
	}
	c.Metadata = copyMap(i.Metadata)
	c.DataCenterInfo.Metadata = copyMap(i.DataCenterInfo.Metadata)
	return &c
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// RegisterRequest is the body of a registration call.
type RegisterRequest struct {
	Instance *Instance `json:"instance"`
}
