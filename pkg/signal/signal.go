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
package signal

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apache/servicecomb-eureka-client/pkg/log"
)

// Wait blocks until SIGINT or SIGTERM arrives and returns it, or returns
// nil when ctx is done first.
func Wait(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Warn(fmt.Sprintf("received signal '%v'", sig))
		return sig
	case <-ctx.Done():
		return nil
	}
}

// ForceExitAfter terminates the process when done is not closed in time.
func ForceExitAfter(wait time.Duration, done <-chan struct{}) {
	go func() {
		select {
		case <-done:
		case <-time.After(wait):
			log.Warn(fmt.Sprintf("waiting for shutdown timed out(%s), force exit", wait))
			log.Sync()
			os.Exit(1)
		}
	}()
}
