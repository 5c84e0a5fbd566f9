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
	"strconv"
	"strings"
	"time"

	"github.com/apache/servicecomb-eureka-client/ekctl/pkg/writer"
	"github.com/apache/servicecomb-eureka-client/pkg/model"
)

var (
	longInstanceTableHeader  = []string{"APP", "ID", "HOST", "IP", "PORT", "SECURE PORT", "STATUS", "VIP", "ZONE", "LEASE", "HOME PAGE"}
	shortInstanceTableHeader = []string{"APP", "ID", "HOST", "IP", "PORT", "STATUS", "VIP"}
	appTableHeader           = []string{"APP", "INSTANCES", "UP", "VIPS"}
)

type Record struct {
	model.Instance
}

func portString(p *model.Port) string {
	if p == nil || !p.Enabled {
		return ""
	}
	return strconv.Itoa(p.Port)
}

func (s *Record) PortString() string {
	return portString(s.Port)
}

func (s *Record) SecurePortString() string {
	return portString(s.SecurePort)
}

func (s *Record) LeaseString() string {
	if s.LeaseInfo == nil || s.LeaseInfo.DurationInSecs <= 0 {
		return ""
	}
	return writer.TimeFormat(time.Duration(s.LeaseInfo.DurationInSecs) * time.Second)
}

func (s *Record) Zone() string {
	return s.DataCenterInfo.Metadata[model.MetaAvailabilityZone]
}

func (s *Record) PrintBody(fmt string) []string {
	if fmt == writer.FormatWide {
		return []string{s.App, s.ID(), s.HostName, s.IPAddr, s.PortString(), s.SecurePortString(),
			string(s.Status), s.VipAddress, s.Zone(), s.LeaseString(), s.HomePageURL}
	}
	return []string{s.App, s.ID(), s.HostName, s.IPAddr, s.PortString(), string(s.Status), s.VipAddress}
}

type Printer struct {
	Records []*Record
	flags   []interface{}
}

func NewPrinter(instances []model.Instance) *Printer {
	p := &Printer{Records: make([]*Record, 0, len(instances))}
	for _, inst := range instances {
		p.Records = append(p.Records, &Record{Instance: inst})
	}
	return p
}

func (sp *Printer) SetOutputFormat(f string) {
	sp.Flags(strings.ToLower(f))
}

func (sp *Printer) Flags(flags ...interface{}) []interface{} {
	if len(flags) > 0 {
		sp.flags = flags
	}
	return sp.flags
}

func (sp *Printer) format() string {
	if len(sp.flags) == 0 {
		return ""
	}
	f, _ := sp.flags[0].(string)
	return f
}

func (sp *Printer) PrintBody() (slice [][]string) {
	for _, s := range sp.Records {
		slice = append(slice, s.PrintBody(sp.format()))
	}
	return
}

func (sp *Printer) PrintTitle() []string {
	if sp.format() == writer.FormatWide {
		return longInstanceTableHeader
	}
	return shortInstanceTableHeader
}

// Sorter orders by app, then by instance id.
func (sp *Printer) Sorter() *writer.RecordsSorter {
	return writer.NewRecordsSorter(func(row1, row2 []string) bool {
		if row1[0] != row2[0] {
			return row1[0] < row2[0]
		}
		return row1[1] < row2[1]
	})
}

// AppPrinter summarises the instances per application.
type AppPrinter struct {
	Apps  map[string][]model.Instance
	flags []interface{}
}

func NewAppPrinter(apps map[string][]model.Instance) *AppPrinter {
	return &AppPrinter{Apps: apps}
}

func (ap *AppPrinter) Flags(flags ...interface{}) []interface{} {
	if len(flags) > 0 {
		ap.flags = flags
	}
	return ap.flags
}

func (ap *AppPrinter) PrintBody() (slice [][]string) {
	for name, instances := range ap.Apps {
		up := 0
		seen := make(map[string]bool)
		var vips []string
		for i := range instances {
			if instances[i].IsUp() {
				up++
			}
			if vip := instances[i].VipAddress; len(vip) > 0 && !seen[vip] {
				seen[vip] = true
				vips = append(vips, vip)
			}
		}
		slice = append(slice, []string{name, strconv.Itoa(len(instances)), strconv.Itoa(up), strings.Join(vips, ",")})
	}
	return
}

func (ap *AppPrinter) PrintTitle() []string {
	return appTableHeader
}

func (ap *AppPrinter) Sorter() *writer.RecordsSorter {
	return nil
}
