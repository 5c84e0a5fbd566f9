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

// Package eurekaerr holds the error taxonomy of the eureka client. Codes
// follow the errsvc scheme, the HTTP class times 1000 plus a sequence.
package eurekaerr

import (
	"errors"
	"fmt"

	"github.com/go-chassis/cari/pkg/errsvc"
)

const (
	ErrInvalidConfig    int32 = 400001
	ErrInvalidKey       int32 = 400002
	ErrUnauthorized     int32 = 401001
	ErrUnexpectedStatus int32 = 502001
	ErrTransport        int32 = 503001
	ErrDiscovery        int32 = 503002
)

var manager = errsvc.NewManager()

func init() {
	manager.MustRegisterMap(map[int32]string{
		ErrInvalidConfig:    "Invalid configuration",
		ErrInvalidKey:       "Invalid lookup key",
		ErrUnauthorized:     "Can not acquire auth token",
		ErrUnexpectedStatus: "Unexpected response from registry",
		ErrTransport:        "Registry is unreachable",
		ErrDiscovery:        "Registry endpoint discovery failed",
	})
}

// Error adds the registry response status and the underlying cause to
// an errsvc error.
type Error struct {
	Svc *errsvc.Error
	// Status is the HTTP status of the registry response, 0 when no
	// response arrived.
	Status int
	Cause  error
}

func (e *Error) Error() string {
	msg := e.Svc.Error()
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func NewError(code int32, detail string) *Error {
	return &Error{Svc: manager.NewError(code, detail)}
}

func NewErrorf(code int32, format string, args ...interface{}) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

func Wrap(code int32, detail string, cause error) *Error {
	e := NewError(code, detail)
	e.Cause = cause
	return e
}

// StatusError reports a registry response whose status was not expected.
func StatusError(op string, status int) *Error {
	e := NewErrorf(ErrUnexpectedStatus, "%s returned status %d", op, status)
	e.Status = status
	return e
}

// Svc returns the errsvc error in the chain of err, nil if there is none.
func Svc(err error) *errsvc.Error {
	var e *Error
	if errors.As(err, &e) {
		return e.Svc
	}
	var svc *errsvc.Error
	if errors.As(err, &svc) {
		return svc
	}
	return nil
}

func Code(err error) int32 {
	if svc := Svc(err); svc != nil {
		return svc.Code
	}
	return 0
}

func isCode(err error, code int32) bool {
	svc := Svc(err)
	return svc != nil && errsvc.IsErrEqualCode(svc, code)
}

func IsConfig(err error) bool {
	return isCode(err, ErrInvalidConfig)
}

func IsInput(err error) bool {
	return isCode(err, ErrInvalidKey)
}

func IsTransport(err error) bool {
	return isCode(err, ErrTransport)
}

func IsProtocol(err error) bool {
	return isCode(err, ErrUnexpectedStatus)
}

func IsDiscovery(err error) bool {
	return isCode(err, ErrDiscovery)
}

func IsAuth(err error) bool {
	return isCode(err, ErrUnauthorized)
}

// HasStatus tells whether err is a protocol error carrying status.
func HasStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && IsProtocol(e) && e.Status == status
}
