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

// Package config resolves the client configuration from YAML files and
// environment variables into a client.Config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/servicecomb-eureka-client/client"
	"github.com/apache/servicecomb-eureka-client/pkg/log"
	"github.com/apache/servicecomb-eureka-client/pkg/model"
	"github.com/ghodss/yaml"
	"github.com/go-chassis/go-archaius"
)

const (
	FileName       = "eureka-client"
	DefaultConfDir = "conf"
	DefaultEnv     = "development"
)

// Environment names the overlay file, EUREKA_ENV selects it.
func Environment() string {
	if env := os.Getenv("EUREKA_ENV"); len(env) > 0 {
		return env
	}
	return DefaultEnv
}

// Files returns <dir>/eureka-client.yaml and the overlay of env.
func Files(dir, env string) []string {
	files := []string{filepath.Join(dir, FileName+".yaml")}
	if len(env) > 0 {
		files = append(files, filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", FileName, env)))
	}
	return files
}

// Init loads the first file as base configuration and lays the others
// over it in order, missing files are skipped. Environment variables
// override all files. Without files the defaults of Environment are read.
func Init(files ...string) error {
	if len(files) == 0 {
		files = Files(DefaultConfDir, Environment())
	}
	err := archaius.Init(archaius.WithMemorySource(), archaius.WithENVSource(),
		archaius.WithOptionalFiles(files[:1]))
	if err != nil {
		return err
	}
	for _, f := range files[1:] {
		if err := Overlay(f); err != nil {
			return err
		}
	}
	return nil
}

// Overlay sets every key of a YAML file, it wins over the base file.
func Overlay(file string) error {
	data, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}
	flat := make(map[string]interface{})
	flatten("", m, flat)
	for _, k := range sortedKeys(flat) {
		if err := archaius.Set(k, flat[k]); err != nil {
			return err
		}
	}
	log.Debug(fmt.Sprintf("overlay %d config items from %s", len(flat), file))
	return nil
}

func flatten(prefix string, m map[string]interface{}, out map[string]interface{}) {
	for k, v := range m {
		key := k
		if len(prefix) > 0 {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]interface{}); ok {
			flatten(key, sub, out)
			continue
		}
		out[key] = v
	}
}

// Load builds the client configuration, it is validated before returned.
func Load() (client.Config, error) {
	cfg := Read()
	return cfg, cfg.Validate()
}

// Read builds the client configuration without validating it.
func Read() client.Config {
	cfg := client.DefaultConfig()
	loadInstance(&cfg.Instance)
	loadEureka(&cfg.Eureka)

	cfg.Auth = client.AuthConfig{
		TokenURL:     GetString("auth.tokenUrl", ""),
		ClientID:     GetString("auth.clientId", ""),
		ClientSecret: GetString("auth.clientSecret", ""),
		Scopes:       GetStringSlice("auth.scopes"),
		Strict:       GetBool("auth.strict", false),
	}

	t := &cfg.Transport
	t.SSLEnabled = GetBool("eureka.tls.enabled", false)
	t.VerifyPeer = GetBool("eureka.tls.verifyPeer", t.VerifyPeer)
	t.CAFile = GetString("eureka.tls.caFile", "")
	t.CertFile = GetString("eureka.tls.certFile", "")
	t.CertKeyFile = GetString("eureka.tls.keyFile", "")
	t.RequestTimeout = GetDuration("eureka.requestTimeout", t.RequestTimeout)
	return cfg
}

func loadInstance(inst *model.Instance) {
	inst.App = GetString("instance.app", "")
	inst.InstanceID = GetString("instance.instanceId", "")
	inst.HostName = GetString("instance.hostName", "")
	inst.IPAddr = GetString("instance.ipAddr", "")
	inst.VipAddress = GetString("instance.vipAddress", "")
	inst.SecureVipAddress = GetString("instance.secureVipAddress", "")
	inst.Status = model.Status(strings.ToUpper(GetString("instance.status", string(inst.Status))))
	if port := GetInt("instance.port", 0); port > 0 {
		inst.Port = &model.Port{Port: port, Enabled: true}
	}
	if port := GetInt("instance.securePort", 0); port > 0 {
		inst.SecurePort = &model.Port{Port: port, Enabled: GetBool("instance.securePortEnabled", true)}
	}
	inst.HomePageURL = GetString("instance.homePageUrl", "")
	inst.StatusPageURL = GetString("instance.statusPageUrl", "")
	inst.HealthCheckURL = GetString("instance.healthCheckUrl", "")
	inst.Metadata = GetStringMap("instance.metadata")

	name := GetString("instance.dataCenterInfo.name", inst.DataCenterInfo.Name)
	inst.DataCenterInfo = model.DataCenterInfo{
		Name:     name,
		Class:    GetString("instance.dataCenterInfo.class", dataCenterClass(name)),
		Metadata: GetStringMap("instance.dataCenterInfo.metadata"),
	}

	renew := GetInt("instance.leaseInfo.renewalIntervalInSecs", 0)
	duration := GetInt("instance.leaseInfo.durationInSecs", 0)
	if renew > 0 || duration > 0 {
		inst.LeaseInfo = &model.LeaseInfo{RenewalIntervalInSecs: renew, DurationInSecs: duration}
	}
}

func dataCenterClass(name string) string {
	if name == model.DataCenterAmazon {
		return model.ClassAmazonInfo
	}
	return model.ClassDefaultDataCenterInfo
}

func loadEureka(e *client.EurekaConfig) {
	e.ServiceURLs = GetStringSlice("eureka.serviceUrls")
	e.ZoneServiceURLs = GetStringSliceMap("eureka.zoneServiceUrls")
	e.PreferSameZone = GetBool("eureka.preferSameZone", e.PreferSameZone)

	e.Host = GetString("eureka.host", "")
	e.Port = GetInt("eureka.port", 0)
	e.ServicePath = GetString("eureka.servicePath", e.ServicePath)
	e.SSL = GetBool("eureka.ssl", false)

	e.HeartbeatInterval = GetDuration("eureka.heartbeatInterval", e.HeartbeatInterval)
	e.RegistryFetchInterval = GetDuration("eureka.registryFetchInterval", e.RegistryFetchInterval)

	e.RegisterWithEureka = GetBool("eureka.registerWithEureka", e.RegisterWithEureka)
	e.FetchRegistry = GetBool("eureka.fetchRegistry", e.FetchRegistry)
	e.WaitForRegistry = GetBool("eureka.waitForRegistry", false)
	e.FilterUpInstances = GetBool("eureka.filterUpInstances", e.FilterUpInstances)

	e.UseDNS = GetBool("eureka.useDns", false)
	e.EC2Region = GetString("eureka.ec2Region", "", WithStandby("aws_region"))

	e.FetchMetadata = GetBool("eureka.fetchMetadata", e.FetchMetadata)
	e.UseLocalMetadata = GetBool("eureka.useLocalMetadata", false)
	e.PreferIPAddress = GetBool("eureka.preferIpAddress", false)
	e.MetadataURL = GetString("eureka.metadataUrl", "")

	e.MaxRetryDelay = GetDuration("eureka.maxRetryDelay", e.MaxRetryDelay)
	e.ReRegisterRate = GetFloat64("eureka.reRegisterRate", e.ReRegisterRate)
}

// LoadLog reads the log section.
func LoadLog() log.Config {
	cfg := log.Configure()
	cfg.LoggerLevel = GetString("log.level", "INFO")
	cfg.LoggerFile = GetString("log.file", "")
	cfg.LogFormatText = GetString("log.format", "text") != "json"
	cfg.LogRotateSize = GetInt("log.rotateSize", 20)
	cfg.LogBackupCount = GetInt("log.backupCount", 50)
	cfg.LogBackupAge = GetInt("log.backupAge", 0)
	return cfg
}
