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

package constant

import (
	v1 "k8s.io/api/core/v1"
	"time"
)

const (
	// ResourceGPU is the extended resource exposing the number of vGPUs requested by a container
	ResourceGPU v1.ResourceName = "nvidia.com/gpu"
	// ResourceGPUMemory is the extended resource exposing the device memory requested by a container, in MB
	ResourceGPUMemory v1.ResourceName = "nvidia.com/gpumem"
	// ResourceGPUCores is the extended resource exposing the percentage of device cores requested by a container
	ResourceGPUCores v1.ResourceName = "nvidia.com/gpucores"
)

const (
	// DeviceCoresLimit is the upper bound of the cores of a single device
	DeviceCoresLimit = 100
)

const (
	EnvVarAnnotationPrefix = "VGPU_ANNOTATION_PREFIX"
	EnvVarNodeSelector     = "VGPU_NODE_SELECTOR"
)

const (
	DefaultHandshakeTimeout = 60 * time.Second
	InventoryExporterName   = "inventory-exporter"
)
