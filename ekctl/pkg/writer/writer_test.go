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
package writer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrinter struct {
	rows   [][]string
	sorter *RecordsSorter
}

func (p *fakePrinter) Flags(flags ...interface{}) []interface{} { return flags }
func (p *fakePrinter) PrintBody() [][]string                    { return p.rows }
func (p *fakePrinter) PrintTitle() []string                     { return []string{"NAME", "STATUS"} }
func (p *fakePrinter) Sorter() *RecordsSorter                   { return p.sorter }

func TestTimeFormat(t *testing.T) {
	assert.Equal(t, "30s", TimeFormat(30*time.Second))
	assert.Equal(t, "5m", TimeFormat(5*time.Minute))
	assert.Equal(t, "3h", TimeFormat(3*time.Hour))
	assert.Equal(t, "2d", TimeFormat(49*time.Hour))
}

func TestReshape(t *testing.T) {
	assert.Equal(t, []string{"abc", "abcdefgh..."}, Reshape(8, []string{"abc", "abcdefghijklmn"}))
}

func TestFprintTable(t *testing.T) {
	var buf bytes.Buffer
	FprintTable(&buf, &fakePrinter{rows: [][]string{{"b", "UP"}, {"a", "DOWN"}}})
	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Less(t, strings.Index(out, "DOWN"), strings.Index(out, "UP"))

	buf.Reset()
	FprintTable(&buf, &fakePrinter{
		rows: [][]string{{"a", "DOWN"}, {"b", "UP"}},
		sorter: NewRecordsSorter(func(r1, r2 []string) bool {
			return r1[1] > r2[1]
		}),
	})
	out = buf.String()
	assert.Less(t, strings.Index(out, "UP"), strings.Index(out, "DOWN"))
}

func TestFprint(t *testing.T) {
	v := map[string]string{"app": "DEMO"}

	var buf bytes.Buffer
	require.NoError(t, Fprint(&buf, FormatJSON, v))
	assert.Equal(t, "{\n  \"app\": \"DEMO\"\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, Fprint(&buf, FormatYAML, v))
	assert.Equal(t, "app: DEMO\n", buf.String())

	assert.Error(t, Fprint(&buf, "xml", v))
	assert.True(t, IsStructured(FormatYAML))
	assert.False(t, IsStructured(FormatWide))
}
