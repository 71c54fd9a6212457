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

// allocationFields is the minimum number of fields of an allocation record
const allocationFields = 4

// Allocation is a device assigned by the scheduler to a container.
//
// Wire format:
//
//	"<uuid>,<type>,<memory-mb>,<cores>"
type Allocation struct {
	UUID     string
	Type     string
	MemoryMB int
	Cores    int
}

// ParseAllocation decodes a single allocation record. It returns a format error if the
// record has fewer than 4 fields or if memory or cores are not integers.
func ParseAllocation(record string) (Allocation, error) {
	fields, err := splitFields(record, allocationFields, "allocation")
	if err != nil {
		return Allocation{}, err
	}
	memory, err := parseIntField(record, "memory", fields[2])
	if err != nil {
		return Allocation{}, err
	}
	cores, err := parseIntField(record, "cores", fields[3])
	if err != nil {
		return Allocation{}, err
	}
	return Allocation{
		UUID:     fields[0],
		Type:     fields[1],
		MemoryMB: memory,
		Cores:    cores,
	}, nil
}

func (a Allocation) String() string {
	return fmt.Sprintf("%s,%s,%d,%d", a.UUID, a.Type, a.MemoryMB, a.Cores)
}

type AllocationList []Allocation

// ParseAllocationList decodes the value of the devices-to-allocate annotation of a Pod.
// An empty value results in an empty list; a single malformed record makes the whole
// value invalid.
func ParseAllocationList(value string) (AllocationList, error) {
	allocations, err := parseRecords(value, ParseAllocation)
	if err != nil {
		return nil, err
	}
	return allocations, nil
}

// String returns the list encoded in the same format written by the scheduler
func (l AllocationList) String() string {
	var sb strings.Builder
	for _, a := range l {
		sb.WriteString(a.String())
		sb.WriteString(recordSeparator)
	}
	return sb.String()
}

func (l AllocationList) TotalMemoryMB() int {
	var res int
	for _, a := range l {
		res += a.MemoryMB
	}
	return res
}

func (l AllocationList) TotalCores() int {
	var res int
	for _, a := range l {
		res += a.Cores
	}
	return res
}

// PodAllocations contains the allocations of each container of a Pod, in container order.
//
// Wire format:
//
//	"<container-0 allocations>;<container-1 allocations>;..."
type PodAllocations []AllocationList

// ParsePodAllocations decodes a per-container allocation value. Containers without
// devices are kept as empty lists so that indexes still match the Pod containers.
func ParsePodAllocations(value string) (PodAllocations, error) {
	res := make(PodAllocations, 0)
	if value == "" {
		return res, nil
	}
	for i, containerValue := range strings.Split(value, containerSeparator) {
		allocations, err := ParseAllocationList(containerValue)
		if err != nil {
			return nil, fmt.Errorf("container %d: %w", i, err)
		}
		res = append(res, allocations)
	}
	return res, nil
}

func (p PodAllocations) String() string {
	values := make([]string, len(p))
	for i, l := range p {
		values[i] = l.String()
	}
	return strings.Join(values, containerSeparator)
}

// Flatten returns the allocations of all the containers in a single list
func (p PodAllocations) Flatten() AllocationList {
	res := make(AllocationList, 0)
	for _, l := range p {
		res = append(res, l...)
	}
	return res
}
