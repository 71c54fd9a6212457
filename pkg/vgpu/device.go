/*
 * Copyright 2023 nebuly.com.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package vgpu

import (
	"fmt"
	"strings"
)

// deviceFields is the minimum number of fields of a device record
const deviceFields = 7

// Device is a physical (or virtual) device registered on a node by a device plugin.
//
// Wire format:
//
//	"<uuid>,<split-count>,<memory-mb>,<cores>,<type>,<numa>,<healthy>"
type Device struct {
	UUID string
	// SplitCount is the max number of tasks that can share the device
	SplitCount int
	MemoryMB   int
	// Cores is the device capacity expressed as a percentage
	Cores int
	Type  string
	Numa  int
	// Healthy is false for any encoded token other than "true"
	Healthy bool
}

// ParseDevice decodes a single device record. It returns a format error if the record
// has fewer than 7 fields or if any of the numeric fields is not an integer.
func ParseDevice(record string) (Device, error) {
	fields, err := splitFields(record, deviceFields, "device")
	if err != nil {
		return Device{}, err
	}
	splitCount, err := parseIntField(record, "split count", fields[1])
	if err != nil {
		return Device{}, err
	}
	memory, err := parseIntField(record, "memory", fields[2])
	if err != nil {
		return Device{}, err
	}
	cores, err := parseIntField(record, "cores", fields[3])
	if err != nil {
		return Device{}, err
	}
	numa, err := parseIntField(record, "numa", fields[5])
	if err != nil {
		return Device{}, err
	}
	return Device{
		UUID:       fields[0],
		SplitCount: splitCount,
		MemoryMB:   memory,
		Cores:      cores,
		Type:       fields[4],
		Numa:       numa,
		Healthy:    parseBoolField(fields[6]),
	}, nil
}

// String returns the device encoded as a device record
func (d Device) String() string {
	return fmt.Sprintf(
		"%s,%d,%d,%d,%s,%d,%t",
		d.UUID,
		d.SplitCount,
		d.MemoryMB,
		d.Cores,
		d.Type,
		d.Numa,
		d.Healthy,
	)
}

type DeviceList []Device

// ParseDeviceList decodes the value of a device registration annotation. An empty value
// results in an empty list. A single malformed record makes the whole value invalid:
// in that case no device is returned.
func ParseDeviceList(value string) (DeviceList, error) {
	devices, err := parseRecords(value, ParseDevice)
	if err != nil {
		return nil, err
	}
	return devices, nil
}

// String returns the list encoded as the value of a device registration annotation,
// in the same format written by device plugins (each record followed by a separator).
func (l DeviceList) String() string {
	var sb strings.Builder
	for _, d := range l {
		sb.WriteString(d.String())
		sb.WriteString(recordSeparator)
	}
	return sb.String()
}

func (l DeviceList) GetHealthy() DeviceList {
	result := make(DeviceList, 0)
	for _, d := range l {
		if d.Healthy {
			result = append(result, d)
		}
	}
	return result
}

func (l DeviceList) TotalMemoryMB() int {
	var res int
	for _, d := range l {
		res += d.MemoryMB
	}
	return res
}

// GroupByType groups the devices by their type, preserving their order
func (l DeviceList) GroupByType() map[string]DeviceList {
	result := make(map[string]DeviceList)
	for _, d := range l {
		if result[d.Type] == nil {
			result[d.Type] = make(DeviceList, 0)
		}
		result[d.Type] = append(result[d.Type], d)
	}
	return result
}
