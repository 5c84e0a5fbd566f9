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

package config

import (
	"sort"
	"strings"
	"time"

	"github.com/go-chassis/go-archaius"
	"github.com/spf13/cast"
)

func lookup(key string, opts []Option) (interface{}, bool) {
	options := newOptions(key, opts)
	for _, k := range []string{options.ENV, key, options.Standby} {
		if archaius.Exist(k) {
			return archaius.Get(k), true
		}
	}
	return nil, false
}

// GetString return the string type value by specified key
func GetString(key, def string, opts ...Option) string {
	v, ok := lookup(key, opts)
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return strings.TrimSpace(s)
}

// GetBool return the boolean type value by specified key
func GetBool(key string, def bool, opts ...Option) bool {
	v, ok := lookup(key, opts)
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// GetInt return the int type value by specified key
func GetInt(key string, def int, opts ...Option) int {
	v, ok := lookup(key, opts)
	if !ok {
		return def
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return i
}

func GetFloat64(key string, def float64, opts ...Option) float64 {
	v, ok := lookup(key, opts)
	if !ok {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}
	return f
}

// GetDuration accepts duration strings like "30s" as well as plain
// numbers of milliseconds.
func GetDuration(key string, def time.Duration, opts ...Option) time.Duration {
	str := GetString(key, "", opts...)
	if str == "" {
		return def
	}
	if d, err := time.ParseDuration(str); err == nil {
		return d
	}
	ms, err := cast.ToInt64E(str)
	if err != nil {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// GetStringSlice reads a list, a string value is split by commas.
func GetStringSlice(key string, opts ...Option) []string {
	v, ok := lookup(key, opts)
	if !ok {
		return nil
	}
	return toStringSlice(v)
}

func toStringSlice(v interface{}) []string {
	var items []string
	if s, ok := v.(string); ok {
		items = strings.Split(s, ",")
	} else {
		items = cast.ToStringSlice(v)
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); len(item) > 0 {
			result = append(result, item)
		}
	}
	return result
}

// children returns the values below prefix keyed by the rest of their key.
func children(prefix string) map[string]interface{} {
	result := make(map[string]interface{})
	if m, err := cast.ToStringMapE(archaius.Get(prefix)); err == nil {
		for k, v := range m {
			result[k] = v
		}
	}
	prefix += "."
	for k, v := range archaius.GetConfigs() {
		if strings.HasPrefix(k, prefix) {
			result[strings.TrimPrefix(k, prefix)] = v
		}
	}
	return result
}

// GetStringMap collects the values below prefix, e.g. instance.metadata.*
func GetStringMap(prefix string) map[string]string {
	items := children(prefix)
	if len(items) == 0 {
		return nil
	}
	result := make(map[string]string, len(items))
	for k, v := range items {
		result[k] = cast.ToString(v)
	}
	return result
}

// GetStringSliceMap collects the lists below prefix.
func GetStringSliceMap(prefix string) map[string][]string {
	items := children(prefix)
	if len(items) == 0 {
		return nil
	}
	result := make(map[string][]string, len(items))
	for k, v := range items {
		result[k] = toStringSlice(v)
	}
	return result
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
