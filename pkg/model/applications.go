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

package model

import (
	"bytes"
	"encoding/json"
	"errors"
)

var ErrNoApplications = errors.New("registry payload has no applications")

// RegistryResponse is the body of a full registry fetch:
// {"applications": {"application": [...]}}.
type RegistryResponse struct {
	Applications *Applications `json:"applications"`
}

type Applications struct {
	AppsHashCode string          `json:"apps__hashcode,omitempty"`
	Application  ApplicationList `json:"application"`
}

type Application struct {
	Name     string       `json:"name"`
	Instance InstanceList `json:"instance"`
}

// ApplicationList decodes from a single application object as well as
// from an array of them.
type ApplicationList []Application

func (l *ApplicationList) UnmarshalJSON(data []byte) error {
	apps, err := oneOrMany[Application](data)
	if err != nil {
		return err
	}
	*l = apps
	return nil
}

// InstanceList decodes from a single instance object as well as from an
// array of them.
type InstanceList []Instance

func (l *InstanceList) UnmarshalJSON(data []byte) error {
	instances, err := oneOrMany[Instance](data)
	if err != nil {
		return err
	}
	*l = instances
	return nil
}

func oneOrMany[T any](data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '[' {
		var many []T
		if err := json.Unmarshal(data, &many); err != nil {
			return nil, err
		}
		return many, nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}

// DecodeApplications parses a registry fetch body.
func DecodeApplications(body []byte) ([]Application, error) {
	resp := &RegistryResponse{}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, err
	}
	if resp.Applications == nil {
		return nil, ErrNoApplications
	}
	return resp.Applications.Application, nil
}
