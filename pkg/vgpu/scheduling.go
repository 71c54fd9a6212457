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
	"github.com/nebuly-ai/vgpu/pkg/api/hami.io/v1alpha1"
	v1 "k8s.io/api/core/v1"
)

// SchedulingInfo is the view of the devices assigned to a Pod and of its placement
type SchedulingInfo struct {
	// DevicesToAllocate is the raw value of the devices-to-allocate annotation
	DevicesToAllocate string
	// AssignedNode is the node selected by the scheduler, which may differ from NodeName
	// while the Pod is not bound yet
	AssignedNode string
	// ScheduleTime is the raw scheduling timestamp, never parsed
	ScheduleTime string
	PodPhase     v1.PodPhase
	// NodeName is the node the Pod is bound to
	NodeName         string
	AllocatedDevices AllocationList
}

// NewSchedulingInfo assembles the scheduling info of a Pod. The allocation value is
// decoded only if it is not empty; decoding errors are returned as they are.
func NewSchedulingInfo(devicesToAllocate, assignedNode, scheduleTime string, podPhase v1.PodPhase, nodeName string) (SchedulingInfo, error) {
	res := SchedulingInfo{
		DevicesToAllocate: devicesToAllocate,
		AssignedNode:      assignedNode,
		ScheduleTime:      scheduleTime,
		PodPhase:          podPhase,
		NodeName:          nodeName,
		AllocatedDevices:  make(AllocationList, 0),
	}
	if devicesToAllocate == "" {
		return res, nil
	}
	allocations, err := ParseAllocationList(devicesToAllocate)
	if err != nil {
		return SchedulingInfo{}, err
	}
	res.AllocatedDevices = allocations
	return res, nil
}

// SchedulingInfoFromPod assembles the scheduling info of the Pod from its annotations and
// status, using the default annotation prefix. Missing annotations are treated as empty.
func SchedulingInfoFromPod(pod v1.Pod) (SchedulingInfo, error) {
	return SchedulingInfoFromPodWithPrefix(v1alpha1.AnnotationPrefix, pod)
}

func SchedulingInfoFromPodWithPrefix(annotationPrefix string, pod v1.Pod) (SchedulingInfo, error) {
	keys := NewPodAnnotationKeys(annotationPrefix)
	return NewSchedulingInfo(
		pod.Annotations[keys.DevicesToAllocate],
		pod.Annotations[keys.AssignedNode],
		pod.Annotations[keys.AssignedTime],
		pod.Status.Phase,
		pod.Spec.NodeName,
	)
}

// IsAllocated returns true if the scheduler assigned at least one device to the Pod
func (s SchedulingInfo) IsAllocated() bool {
	return len(s.AllocatedDevices) > 0
}

// IsBound returns true if the Pod has been bound to the node selected by the scheduler
func (s SchedulingInfo) IsBound() bool {
	return s.NodeName != "" && s.NodeName == s.AssignedNode
}

// PodAnnotationKeys contains the keys of the Pod annotations written by the scheduler
type PodAnnotationKeys struct {
	DevicesToAllocate string
	AssignedNode      string
	AssignedTime      string
}

// NewPodAnnotationKeys returns the keys of the Pod annotations under the given prefix
func NewPodAnnotationKeys(annotationPrefix string) PodAnnotationKeys {
	return PodAnnotationKeys{
		DevicesToAllocate: annotationPrefix + v1alpha1.AnnotationDevicesToAllocateKeyword,
		AssignedNode:      annotationPrefix + v1alpha1.AnnotationAssignedNodeKeyword,
		AssignedTime:      annotationPrefix + v1alpha1.AnnotationAssignedTimeKeyword,
	}
}
