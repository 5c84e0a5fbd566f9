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
	"fmt"
	"os"
	"time"

	"github.com/apache/servicecomb-eureka-client/client"
	"github.com/apache/servicecomb-eureka-client/ekctl/pkg/version"
	"github.com/apache/servicecomb-eureka-client/pkg/config"
	"github.com/apache/servicecomb-eureka-client/pkg/log"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = iota
	ExitError
)

var rootCmd = &cobra.Command{
	Use:   version.TOOL_NAME + " <command>",
	Short: "The control command of the eureka registry client",
}

var (
	ConfDir string
	Env     string
	Timeout time.Duration
)

func init() {
	var timeout string
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "make the operation more talkative")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			if err := os.Setenv("DEBUG_MODE", "1"); err != nil {
				StopAndExit(ExitError, err)
			}
		}
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			Timeout = d
		}
	}

	rootCmd.PersistentFlags().StringVar(&ConfDir, "conf-dir", config.DefaultConfDir,
		"the directory of the eureka-client configuration files.")
	rootCmd.PersistentFlags().StringVar(&Env, "env", config.Environment(),
		"the overlay configuration to apply, can be overrode by env EUREKA_ENV.")
	rootCmd.PersistentFlags().StringVarP(&timeout, "timeout", "t", "",
		"the maximum time allowed for a registry request, overrides eureka.requestTimeout.")
}

func RootCmd() *cobra.Command {
	return rootCmd
}

// LoadConfig reads the configuration files selected by the global flags
// and installs the configured logger. A lookup only configuration neither
// registers the instance nor polls the registry.
func LoadConfig(lookupOnly bool) (client.Config, error) {
	if err := config.Init(config.Files(ConfDir, Env)...); err != nil {
		return client.Config{}, err
	}
	log.Init(config.LoadLog())

	cfg := config.Read()
	if Timeout > 0 {
		cfg.Transport.RequestTimeout = Timeout
	}
	if lookupOnly {
		cfg.Eureka.RegisterWithEureka = false
		cfg.Eureka.FetchRegistry = false
	}
	return cfg, cfg.Validate()
}

func StopAndExit(code int, args ...interface{}) {
	log.Sync()
	if len(args) == 0 {
		os.Exit(code)
	}

	if code == ExitSuccess {
		fmt.Fprintln(os.Stdout, args...)
	} else {
		fmt.Fprintln(os.Stderr, args...)
	}
	os.Exit(code)
}

func Run() {
	// Show usage in help command
	RootCmd().SetHelpTemplate(`{{.UsageString}}`)

	err := RootCmd().Execute()
	if err != nil {
		StopAndExit(ExitError, err)
	}
	StopAndExit(ExitSuccess)
}
