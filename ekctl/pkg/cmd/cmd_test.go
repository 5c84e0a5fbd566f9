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
package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/servicecomb-eureka-client/pkg/eurekaerr"
	"github.com/go-chassis/go-archaius"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lookupYAML = `
eureka:
  host: eureka.local
  port: 8761
log:
  level: ERROR
`

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eureka-client.yaml"), []byte(lookupYAML), 0600))
	ConfDir, Env, Timeout = dir, "", 3*time.Second
	defer func() { ConfDir, Env, Timeout = "conf", "", 0 }()

	defer archaius.Clean()
	cfg, err := LoadConfig(true)
	require.NoError(t, err)
	assert.False(t, cfg.Eureka.RegisterWithEureka)
	assert.False(t, cfg.Eureka.FetchRegistry)
	assert.Equal(t, 3*time.Second, cfg.Transport.RequestTimeout)
	assert.Equal(t, []string{"http://eureka.local:8761/eureka/v2/apps/"}, cfg.ServiceURLs(""))
	archaius.Clean()

	_, err = LoadConfig(false)
	assert.True(t, eurekaerr.IsConfig(err))
}
