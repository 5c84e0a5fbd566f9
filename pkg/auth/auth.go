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

package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var ErrEmptyToken = errors.New("token provider returned an empty token")

// TokenProvider returns a bearer token for the next registry call.
// Implementations are asked once per call, caching is up to them.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

type Options struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
	// HTTPClient overrides the client used against TokenURL
	HTTPClient *http.Client
}

// ClientCredentials implements the OAuth2 client credentials grant,
// every Token call requests a new access token.
type ClientCredentials struct {
	cfg    *clientcredentials.Config
	client *http.Client
}

func NewClientCredentials(opts Options) (*ClientCredentials, error) {
	if len(opts.TokenURL) == 0 {
		return nil, errors.New("token url is required")
	}
	if len(opts.ClientID) == 0 {
		return nil, errors.New("client id is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &ClientCredentials{
		cfg: &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
			Scopes:       opts.Scopes,
		},
		client: client,
	}, nil
}

func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)
	t, err := c.cfg.Token(ctx)
	if err != nil {
		return "", err
	}
	if len(t.AccessToken) == 0 {
		return "", ErrEmptyToken
	}
	return t.AccessToken, nil
}
