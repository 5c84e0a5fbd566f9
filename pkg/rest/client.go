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
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var defaultURLClientOption = URLClientOption{
	Compressed:            true,
	VerifyPeer:            true,
	HandshakeTimeout:      10 * time.Second,
	ResponseHeaderTimeout: 30 * time.Second,
	RequestTimeout:        30 * time.Second,
	ConnsPerHost:          defaultConnsPerHost,
}

type URLClientOption struct {
	SSLEnabled            bool
	Compressed            bool
	VerifyPeer            bool
	CAFile                string
	CertFile              string
	CertKeyFile           string
	HandshakeTimeout      time.Duration
	ResponseHeaderTimeout time.Duration
	RequestTimeout        time.Duration
	ConnsPerHost          int
}

type gzipBodyReader struct {
	*gzip.Reader
	Body io.ReadCloser
}

func (w *gzipBodyReader) Close() error {
	w.Reader.Close()
	return w.Body.Close()
}

func NewGZipBodyReader(body io.ReadCloser) (io.ReadCloser, error) {
	reader, err := gzip.NewReader(body)
	if err != nil {
		return nil, err
	}
	return &gzipBodyReader{reader, body}, nil
}

// URLClient sends requests to absolute URLs, the registry endpoint is
// chosen by the caller for every call.
type URLClient struct {
	*http.Client

	TLS *tls.Config

	Cfg URLClientOption
}

// HttpDoWithContext returns a transport error only when no response
// arrived, any status code is handed back to the caller.
func (client *URLClient) HttpDoWithContext(ctx context.Context, method string, rawURL string, headers http.Header, body []byte) (*http.Response, error) {
	if headers == nil {
		headers = make(http.Header)
	}

	if _, ok := headers[HeaderHost]; !ok {
		parsedURL, err := url.Parse(rawURL)
		if err != nil {
			return nil, err
		}
		headers.Set(HeaderHost, parsedURL.Host)
	}
	if _, ok := headers[HeaderAccept]; !ok {
		headers.Set(HeaderAccept, AcceptAny)
	}
	if _, ok := headers[HeaderAcceptEncoding]; !ok && client.Cfg.Compressed {
		headers.Set(HeaderAcceptEncoding, "deflate, gzip")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header = headers

	DumpRequestOut(req)

	resp, err := client.Client.Do(req)
	if err != nil {
		return nil, err
	}

	DumpResponse(resp)

	if resp.Header.Get(HeaderContentEncoding) == "gzip" {
		reader, err := NewGZipBodyReader(resp.Body)
		if err != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, err
		}
		resp.Body = reader
	}

	return resp, nil
}

func debugMode() bool {
	return cast.ToBool(os.Getenv("DEBUG_MODE"))
}

func DumpRequestOut(req *http.Request) {
	if req == nil || !debugMode() {
		return
	}
	b, _ := httputil.DumpRequestOut(req, true)
	printLines(">", b)
}

func DumpResponse(resp *http.Response) {
	if resp == nil || !debugMode() {
		return
	}
	b, _ := httputil.DumpResponse(resp, true)
	printLines("<", b)
}

func printLines(prefix string, b []byte) {
	for _, line := range strings.Split(strings.TrimRight(string(b), "\r\n"), "\n") {
		fmt.Fprintln(os.Stderr, prefix, strings.TrimRight(line, "\r"))
	}
}

func DefaultURLClientOption() URLClientOption {
	return defaultURLClientOption
}

func setOptionDefaultValue(o *URLClientOption) URLClientOption {
	if o == nil {
		return defaultURLClientOption
	}

	option := *o
	if option.RequestTimeout <= 0 {
		option.RequestTimeout = defaultURLClientOption.RequestTimeout
	}
	if option.HandshakeTimeout <= 0 {
		option.HandshakeTimeout = defaultURLClientOption.HandshakeTimeout
	}
	if option.ResponseHeaderTimeout <= 0 {
		option.ResponseHeaderTimeout = defaultURLClientOption.ResponseHeaderTimeout
	}
	if option.ConnsPerHost <= 0 {
		option.ConnsPerHost = defaultURLClientOption.ConnsPerHost
	}
	return option
}

func GetURLClient(o URLClientOption) (*URLClient, error) {
	option := setOptionDefaultValue(&o)
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConnsPerHost:   option.ConnsPerHost,
		TLSHandshakeTimeout:   option.HandshakeTimeout,
		ResponseHeaderTimeout: option.ResponseHeaderTimeout,
		DisableCompression:    !option.Compressed,
	}
	client := &URLClient{
		Client: &http.Client{
			Transport: transport,
			Timeout:   option.RequestTimeout,
		},
		Cfg: option,
	}

	if option.SSLEnabled {
		cfg, err := GetClientTLSConfig(option)
		if err != nil {
			return nil, err
		}
		client.TLS = cfg
		transport.TLSClientConfig = cfg
	}
	return client, nil
}
