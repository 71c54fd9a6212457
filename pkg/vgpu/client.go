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
	"context"
	"fmt"
	"github.com/nebuly-ai/vgpu/pkg/api/hami.io/v1alpha1"
	"github.com/nebuly-ai/vgpu/pkg/constant"
	"github.com/nebuly-ai/vgpu/pkg/util"
	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// Client reads the devices registered on the nodes of the cluster and the devices
// assigned to Pods. Every call reads the current state of the objects from the API server:
// decoded results are never cached.
type Client interface {
	// ListGPUNodes returns the nodes matching the label selector together with their devices.
	// An empty selector selects the nodes labeled with "gpu=on".
	ListGPUNodes(ctx context.Context, labelSelector string) ([]NodeInfo, error)

	GetNodeDevices(ctx context.Context, nodeName string) (InventoryMap, error)

	GetPodSchedulingInfo(ctx context.Context, namespace, name string) (SchedulingInfo, error)

	// CreateGPUPod creates a Pod with a single container requesting the devices specified by the request
	CreateGPUPod(ctx context.Context, request GPUPodRequest) (PodInfo, error)

	DeletePod(ctx context.Context, namespace, name string) error
}

type NodeInfo struct {
	Name        string
	Labels      map[string]string
	Annotations map[string]string
	Devices     InventoryMap
	// Err is set when the device annotations of the node could not be decoded
	Err error
}

type PodInfo struct {
	Name      string
	Namespace string
	UID       types.UID
	Phase     v1.PodPhase
	NodeName  string
}

func NewPodInfo(pod v1.Pod) PodInfo {
	return PodInfo{
		Name:      pod.Name,
		Namespace: pod.Namespace,
		UID:       pod.UID,
		Phase:     pod.Status.Phase,
		NodeName:  pod.Spec.NodeName,
	}
}

type GPUPodRequest struct {
	Name      string
	Namespace string
	Image     string
	// GPUCount is the number of devices requested by the container
	GPUCount int64
	// GPUMemoryMB is the device memory requested for each device, optional
	GPUMemoryMB *int64
	// GPUCores is the percentage of cores requested for each device, optional
	GPUCores *int64
	Command  []string
}

func (r GPUPodRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("pod name cannot be empty")
	}
	if r.Namespace == "" {
		return fmt.Errorf("pod namespace cannot be empty")
	}
	if r.Image == "" {
		return fmt.Errorf("container image cannot be empty")
	}
	if r.GPUCount < 1 {
		return fmt.Errorf("gpu count must be greater than 0, got %d", r.GPUCount)
	}
	if r.GPUMemoryMB != nil && *r.GPUMemoryMB < 0 {
		return fmt.Errorf("gpu memory cannot be negative, got %d", *r.GPUMemoryMB)
	}
	if r.GPUCores != nil && (*r.GPUCores < 0 || *r.GPUCores > constant.DeviceCoresLimit) {
		return fmt.Errorf("gpu cores must be between 0 and %d, got %d", constant.DeviceCoresLimit, *r.GPUCores)
	}
	return nil
}

// ResourceLimits returns the resource limits of the container requesting the devices
func (r GPUPodRequest) ResourceLimits() v1.ResourceList {
	limits := v1.ResourceList{
		constant.ResourceGPU: *resource.NewQuantity(r.GPUCount, resource.DecimalSI),
	}
	if r.GPUMemoryMB != nil {
		limits[constant.ResourceGPUMemory] = *resource.NewQuantity(*r.GPUMemoryMB, resource.DecimalSI)
	}
	if r.GPUCores != nil {
		limits[constant.ResourceGPUCores] = *resource.NewQuantity(*r.GPUCores, resource.DecimalSI)
	}
	return limits
}

func (r GPUPodRequest) Pod() v1.Pod {
	return v1.Pod{
		TypeMeta: metav1.TypeMeta{
			Kind:       "Pod",
			APIVersion: v1.SchemeGroupVersion.String(),
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      r.Name,
			Namespace: r.Namespace,
		},
		Spec: v1.PodSpec{
			Containers: []v1.Container{
				{
					Name:    r.Name,
					Image:   r.Image,
					Command: r.Command,
					Resources: v1.ResourceRequirements{
						Limits: r.ResourceLimits(),
					},
				},
			},
			RestartPolicy: v1.RestartPolicyNever,
		},
	}
}

// NewClient returns a Client reading the annotations under the given prefix.
// An empty prefix means the default one.
func NewClient(k8sClient client.Client, annotationPrefix string) Client {
	if annotationPrefix == "" {
		annotationPrefix = v1alpha1.AnnotationPrefix
	}
	return clusterClient{Client: k8sClient, annotationPrefix: annotationPrefix}
}

type clusterClient struct {
	client.Client
	annotationPrefix string
}

func (c clusterClient) ListGPUNodes(ctx context.Context, labelSelector string) ([]NodeInfo, error) {
	logger := log.FromContext(ctx)

	if labelSelector == "" {
		labelSelector = v1alpha1.DefaultNodeSelector
	}
	selector, err := labels.Parse(labelSelector)
	if err != nil {
		return nil, fmt.Errorf("invalid label selector %q: %w", labelSelector, err)
	}

	var nodeList v1.NodeList
	if err = c.List(ctx, &nodeList, client.MatchingLabelsSelector{Selector: selector}); err != nil {
		return nil, fmt.Errorf("error listing nodes: %w", err)
	}

	res := make([]NodeInfo, 0, len(nodeList.Items))
	for _, node := range nodeList.Items {
		nodeInfo := NodeInfo{
			Name:        node.Name,
			Labels:      util.CopyMap(node.Labels),
			Annotations: util.CopyMap(node.Annotations),
		}
		devices, err := ParseNodeAnnotationsWithPrefix(c.annotationPrefix, node.Annotations)
		if err != nil {
			logger.Error(err, "unable to decode node devices, skipping them", "node", node.Name)
			nodeInfo.Err = err
			devices = make(InventoryMap)
		}
		nodeInfo.Devices = devices
		res = append(res, nodeInfo)
	}
	logger.V(1).Info("listed GPU nodes", "selector", labelSelector, "nodes", len(res))

	return res, nil
}

func (c clusterClient) GetNodeDevices(ctx context.Context, nodeName string) (InventoryMap, error) {
	var node v1.Node
	if err := c.Get(ctx, client.ObjectKey{Name: nodeName}, &node); err != nil {
		return nil, err
	}
	devices, err := ParseNodeAnnotationsWithPrefix(c.annotationPrefix, node.Annotations)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", nodeName, err)
	}
	return devices, nil
}

func (c clusterClient) GetPodSchedulingInfo(ctx context.Context, namespace, name string) (SchedulingInfo, error) {
	var pod v1.Pod
	if err := c.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, &pod); err != nil {
		return SchedulingInfo{}, err
	}
	info, err := SchedulingInfoFromPodWithPrefix(c.annotationPrefix, pod)
	if err != nil {
		return SchedulingInfo{}, fmt.Errorf("pod %s/%s: %w", namespace, name, err)
	}
	return info, nil
}

func (c clusterClient) CreateGPUPod(ctx context.Context, request GPUPodRequest) (PodInfo, error) {
	logger := log.FromContext(ctx)

	if err := request.Validate(); err != nil {
		return PodInfo{}, err
	}
	pod := request.Pod()
	if err := c.Create(ctx, &pod); err != nil {
		return PodInfo{}, fmt.Errorf("error creating pod: %w", err)
	}
	logger.Info("created pod", "pod", pod.Name, "namespace", pod.Namespace)

	return NewPodInfo(pod), nil
}

func (c clusterClient) DeletePod(ctx context.Context, namespace, name string) error {
	logger := log.FromContext(ctx)

	pod := v1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
	}
	if err := c.Delete(ctx, &pod); err != nil {
		return fmt.Errorf("error deleting pod %s/%s: %w", namespace, name, err)
	}
	logger.Info("deleted pod", "pod", name, "namespace", namespace)

	return nil
}
