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

package rest

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// GetClientTLSConfig builds the client side TLS settings, the CA file is
// only required when the registry certificate must be verified.
func GetClientTLSConfig(option URLClientOption) (*tls.Config, error) {
	cfg := &tls.Config{
		InsecureSkipVerify: !option.VerifyPeer,
		MinVersion:         tls.VersionTLS12,
	}

	if option.VerifyPeer && len(option.CAFile) > 0 {
		caCert, err := os.ReadFile(option.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read ca cert file %s failed: %w", option.CAFile, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("no certificate found in %s", option.CAFile)
		}
		cfg.RootCAs = pool
	}

	if len(option.CertFile) > 0 {
		cert, err := tls.LoadX509KeyPair(option.CertFile, option.CertKeyFile)
		if err != nil {
			return nil, fmt.Errorf("load X509 key pair from cert file %s with key file %s failed: %w",
				option.CertFile, option.CertKeyFile, err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}
