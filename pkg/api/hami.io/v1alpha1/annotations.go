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

package v1alpha1

import "fmt"

// AnnotationPrefix is the namespace shared by all the annotations exchanged between
// device plugins, scheduler and clients.
const AnnotationPrefix = "hami.io/"

const (
	// AnnotationNodeRegisterSuffix is appended to the device type in the node annotation
	// containing the devices registered by the device plugin.
	AnnotationNodeRegisterSuffix = "-register"
	// AnnotationNodeKeyword is the token following the prefix in every node annotation.
	AnnotationNodeKeyword = "node-"
	// AnnotationHandshakeKeyword identifies the liveness token written for a device type.
	AnnotationHandshakeKeyword = "node-handshake-"
)

const (
	AnnotationDevicesToAllocateKeyword = "devices-to-allocate"
	AnnotationAssignedNodeKeyword      = "vgpu-node"
	AnnotationAssignedTimeKeyword      = "vgpu-time"
)

const (
	// AnnotationDevicesToAllocate contains the devices the scheduler assigned to a Pod.
	AnnotationDevicesToAllocate = AnnotationPrefix + AnnotationDevicesToAllocateKeyword
	// AnnotationAssignedNode contains the name of the node selected by the scheduler.
	AnnotationAssignedNode = AnnotationPrefix + AnnotationAssignedNodeKeyword
	// AnnotationAssignedTime contains the time at which the scheduler assigned the devices.
	AnnotationAssignedTime = AnnotationPrefix + AnnotationAssignedTimeKeyword
)

// AnnotationNodeRegisterFormat is the format of the node annotation used by device plugins
// to register the devices of a given type.
//
// Format:
//
//	"hami.io/node-<device-type>-register"
//
// Example:
//
//	"hami.io/node-nvidia-register"
var AnnotationNodeRegisterFormat = fmt.Sprintf(
	"%s%s%%s%s",
	AnnotationPrefix,
	AnnotationNodeKeyword,
	AnnotationNodeRegisterSuffix,
)

// AnnotationNodeHandshakeFormat is the format of the node annotation containing the last
// handshake token of a given device type.
//
// Format:
//
//	"hami.io/node-handshake-<device-type>"
//
// Example:
//
//	"hami.io/node-handshake-nvidia"
var AnnotationNodeHandshakeFormat = fmt.Sprintf(
	"%s%s%%s",
	AnnotationPrefix,
	AnnotationHandshakeKeyword,
)
