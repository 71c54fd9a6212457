package factory

import (
	"github.com/nebuly-ai/vgpu/pkg/constant"
	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type nodeBuilder struct {
	v1.Node
}

func (b *nodeBuilder) WithLabel(label, value string) *nodeBuilder {
	if b.Labels == nil {
		b.Labels = make(map[string]string)
	}
	b.Labels[label] = value
	return b
}

func (b *nodeBuilder) WithAnnotation(key, value string) *nodeBuilder {
	if b.Annotations == nil {
		b.Annotations = make(map[string]string)
	}
	b.Annotations[key] = value
	return b
}

func (b *nodeBuilder) Get() v1.Node {
	return b.Node
}

func BuildNode(name string) *nodeBuilder {
	node := v1.Node{
		TypeMeta: metav1.TypeMeta{
			Kind:       "Node",
			APIVersion: v1.SchemeGroupVersion.String(),
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: name,
		},
	}
	return &nodeBuilder{node}
}

type podBuilder struct {
	v1.Pod
}

func (b *podBuilder) WithContainer(c v1.Container) *podBuilder {
	b.Spec.Containers = append(b.Spec.Containers, c)
	return b
}

func (b *podBuilder) WithAnnotation(key, value string) *podBuilder {
	if b.Annotations == nil {
		b.Annotations = make(map[string]string)
	}
	b.Annotations[key] = value
	return b
}

func (b *podBuilder) WithNodeName(nodeName string) *podBuilder {
	b.Spec.NodeName = nodeName
	return b
}

func (b *podBuilder) WithPhase(phase v1.PodPhase) *podBuilder {
	b.Status.Phase = phase
	return b
}

func (b *podBuilder) Get() v1.Pod {
	return b.Pod
}

func BuildPod(namespace, name string) *podBuilder {
	pod := v1.Pod{
		TypeMeta: metav1.TypeMeta{
			Kind:       "Pod",
			APIVersion: v1.SchemeGroupVersion.String(),
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
	}
	return &podBuilder{pod}
}

type containerBuilder struct {
	v1.Container
}

func (b *containerBuilder) WithGPULimit(count int64) *containerBuilder {
	if b.Container.Resources.Limits == nil {
		b.Container.Resources.Limits = make(v1.ResourceList)
	}
	b.Container.Resources.Limits[constant.ResourceGPU] = *resource.NewQuantity(count, resource.DecimalSI)
	return b
}

func (b *containerBuilder) WithGPUMemoryLimit(gpuMemoryMB int64) *containerBuilder {
	if b.Container.Resources.Limits == nil {
		b.Container.Resources.Limits = make(v1.ResourceList)
	}
	b.Container.Resources.Limits[constant.ResourceGPUMemory] = *resource.NewQuantity(gpuMemoryMB, resource.DecimalSI)
	return b
}

func (b *containerBuilder) WithGPUCoresLimit(cores int64) *containerBuilder {
	if b.Container.Resources.Limits == nil {
		b.Container.Resources.Limits = make(v1.ResourceList)
	}
	b.Container.Resources.Limits[constant.ResourceGPUCores] = *resource.NewQuantity(cores, resource.DecimalSI)
	return b
}

func (b *containerBuilder) Get() v1.Container {
	return b.Container
}

func BuildContainer(name, image string) *containerBuilder {
	c := v1.Container{
		Name:  name,
		Image: image,
	}
	return &containerBuilder{c}
}
