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
package run

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/apache/servicecomb-eureka-client/client"
	"github.com/apache/servicecomb-eureka-client/ekctl/pkg/cmd"
	"github.com/apache/servicecomb-eureka-client/ekctl/pkg/version"
	"github.com/apache/servicecomb-eureka-client/pkg/log"
	"github.com/apache/servicecomb-eureka-client/pkg/signal"
	"github.com/go-chassis/foundation/gopool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const shutdownTimeout = 30 * time.Second

var (
	MetricsAddr string
	RootCmd     *cobra.Command
)

func init() {
	RootCmd = NewRunCommand(cmd.RootCmd())
}

func NewRunCommand(parent *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [options]",
		Short: "Register the configured instance and keep it alive until interrupted",
		Run:   CommandFunc,
	}
	parent.AddCommand(cmd)
	addFlags(cmd.Flags())
	return cmd
}

func addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address, e.g. :9100")
}

func CommandFunc(_ *cobra.Command, _ []string) {
	cfg, err := cmd.LoadConfig(false)
	if err != nil {
		cmd.StopAndExit(cmd.ExitError, err)
	}
	version.Ver().Log()

	if len(MetricsAddr) > 0 {
		srv := ServeMetrics(MetricsAddr)
		defer srv.Close()
	}

	c, err := client.New(cfg, client.WithListener(client.ListenerFunc(logEvent)))
	if err != nil {
		cmd.StopAndExit(cmd.ExitError, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gopool.Go(func(_ context.Context) {
		if signal.Wait(ctx) != nil {
			cancel()
		}
	})

	if err := Run(ctx, c); err != nil {
		cmd.StopAndExit(cmd.ExitError, err)
	}
}

// Run starts c, blocks until ctx is done and stops c within shutdownTimeout.
// A failed start stops c and is returned.
func Run(ctx context.Context, c *client.Client) error {
	if err := c.Start(ctx); err != nil && ctx.Err() == nil {
		log.Error("start eureka client failed", err)
		if stopErr := c.Stop(context.Background()); stopErr != nil {
			log.Error("stop eureka client failed", stopErr)
		}
		return err
	}
	<-ctx.Done()

	done := make(chan struct{})
	defer close(done)
	signal.ForceExitAfter(shutdownTimeout+time.Second, done)

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return c.Stop(stopCtx)
}

func ServeMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	gopool.Go(func(_ context.Context) {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(fmt.Sprintf("serve metrics on %s failed", addr), err)
		}
	})
	log.Info(fmt.Sprintf("metrics are served on %s/metrics", addr))
	return srv
}

func logEvent(e client.Event) {
	if e.Err != nil {
		log.Error(fmt.Sprintf("eureka client event %s, endpoint: %s", e.Type, e.Endpoint), e.Err)
		return
	}
	log.Debug(fmt.Sprintf("eureka client event %s, endpoint: %s", e.Type, e.Endpoint))
}
