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
package instance

import (
	"context"
	"io"
	"os"

	"github.com/apache/servicecomb-eureka-client/client"
	"github.com/apache/servicecomb-eureka-client/ekctl/pkg/cmd"
	"github.com/apache/servicecomb-eureka-client/ekctl/pkg/plugin/get"
	"github.com/apache/servicecomb-eureka-client/ekctl/pkg/writer"
	"github.com/apache/servicecomb-eureka-client/pkg/model"
	"github.com/spf13/cobra"
)

const (
	ByApp = "app"
	ByVip = "vip"
)

func init() {
	NewAppCommand(get.RootCmd)
	NewVipCommand(get.RootCmd)
}

func NewAppCommand(parent *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "app [appId]",
		Aliases: []string{"application"},
		Short:   "Output the instances of an application, or all applications without appId",
		Args:    cobra.MaximumNArgs(1),
		Run:     commandFunc(ByApp),
	}
	parent.AddCommand(cmd)
	return cmd
}

func NewVipCommand(parent *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vip <vipAddress>",
		Short: "Output the instances serving a vip address",
		Args:  cobra.ExactArgs(1),
		Run:   commandFunc(ByVip),
	}
	parent.AddCommand(cmd)
	return cmd
}

func commandFunc(by string) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, args []string) {
		cfg, err := cmd.LoadConfig(true)
		if err != nil {
			cmd.StopAndExit(cmd.ExitError, err)
		}
		if len(args) == 0 {
			apps, err := FindApps(context.Background(), cfg)
			if err != nil {
				cmd.StopAndExit(cmd.ExitError, err)
			}
			if err := PrintApps(os.Stdout, get.Output, apps); err != nil {
				cmd.StopAndExit(cmd.ExitError, err)
			}
			return
		}
		instances, err := Find(context.Background(), cfg, by, args[0])
		if err != nil {
			cmd.StopAndExit(cmd.ExitError, err)
		}
		if err := Print(os.Stdout, get.Output, instances); err != nil {
			cmd.StopAndExit(cmd.ExitError, err)
		}
	}
}

func fetch(ctx context.Context, cfg client.Config) (*client.Client, error) {
	c, err := client.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.FetchRegistry(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Find fetches the registry once and looks key up in the app or vip index.
func Find(ctx context.Context, cfg client.Config, by, key string) ([]model.Instance, error) {
	c, err := fetch(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if by == ByVip {
		return c.GetInstancesByVipAddress(key)
	}
	return c.GetInstancesByAppID(key)
}

func Print(w io.Writer, format string, instances []model.Instance) error {
	if writer.IsStructured(format) {
		return writer.Fprint(w, format, instances)
	}
	sp := NewPrinter(instances)
	sp.SetOutputFormat(format)
	writer.FprintTable(w, sp)
	return nil
}

// FindApps fetches the registry once and returns the instances of every
// cached application.
func FindApps(ctx context.Context, cfg client.Config) (map[string][]model.Instance, error) {
	c, err := fetch(ctx, cfg)
	if err != nil {
		return nil, err
	}
	apps := make(map[string][]model.Instance)
	for _, name := range c.Apps() {
		instances, err := c.GetInstancesByAppID(name)
		if err != nil {
			return nil, err
		}
		apps[name] = instances
	}
	return apps, nil
}

func PrintApps(w io.Writer, format string, apps map[string][]model.Instance) error {
	if writer.IsStructured(format) {
		return writer.Fprint(w, format, apps)
	}
	writer.FprintTable(w, NewAppPrinter(apps))
	return nil
}
