//go:build integration

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

package inventoryexporter_test

import (
	"github.com/nebuly-ai/vgpu/pkg/api/hami.io/v1alpha1"
	"github.com/nebuly-ai/vgpu/pkg/test/factory"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	dto "github.com/prometheus/client_model/go"
	"time"
)

// nodeGauge returns the value of the gauge of the given node and device type, or nil if missing
func nodeGauge(metricName, nodeName, deviceType string) *float64 {
	families, err := registry.Gather()
	Expect(err).ToNot(HaveOccurred())
	for _, family := range families {
		if family.GetName() != metricName {
			continue
		}
		for _, metric := range family.GetMetric() {
			if hasLabels(metric, map[string]string{"node": nodeName, "type": deviceType}) {
				value := metric.GetGauge().GetValue()
				return &value
			}
		}
	}
	return nil
}

func hasLabels(metric *dto.Metric, expected map[string]string) bool {
	matched := 0
	for _, pair := range metric.GetLabel() {
		if v, ok := expected[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(expected)
}

var _ = Describe("Inventory Exporter", func() {
	const (
		timeout  = time.Second * 10
		interval = time.Second * 1
	)

	When("A GPU node registers its devices", func() {
		It("Should export its inventory", func() {
			By("By creating a node with device annotations")
			nodeName := "node-registered"
			node := factory.BuildNode(nodeName).
				WithLabel(v1alpha1.LabelGPUNode, "on").
				WithAnnotation("hami.io/node-nvidia-register", "GPU-0,10,24576,100,NVIDIA-A10,0,true:GPU-1,10,24576,100,NVIDIA-A10,0,true:").
				Get()
			Expect(k8sClient.Create(ctx, &node)).To(Succeed())

			By("Checking that the devices are exported")
			Eventually(func() *float64 {
				return nodeGauge("vgpu_node_devices", nodeName, "nvidia")
			}, timeout, interval).Should(HaveValue(Equal(2.0)))

			By("By deleting the node")
			Expect(k8sClient.Delete(ctx, &node)).To(Succeed())

			By("Checking that the node metrics are removed")
			Eventually(func() *float64 {
				return nodeGauge("vgpu_node_devices", nodeName, "nvidia")
			}, timeout, interval).Should(BeNil())
		})
	})

	When("A node is not selected", func() {
		It("Should not be exported", func() {
			By("By creating a node without the GPU label")
			nodeName := "node-not-selected"
			node := factory.BuildNode(nodeName).
				WithAnnotation("hami.io/node-nvidia-register", "GPU-0,10,24576,100,NVIDIA-A10,0,true:").
				Get()
			Expect(k8sClient.Create(ctx, &node)).To(Succeed())

			By("Checking that the node is never exported")
			Consistently(func() *float64 {
				return nodeGauge("vgpu_node_devices", nodeName, "nvidia")
			}, 3, interval).Should(BeNil())
		})
	})

	When("A node handshake keeps requesting", func() {
		It("Should become stale", func() {
			By("By creating a node with a requesting handshake")
			nodeName := "node-requesting"
			node := factory.BuildNode(nodeName).
				WithLabel(v1alpha1.LabelGPUNode, "on").
				WithAnnotation("hami.io/node-nvidia-register", "GPU-0,10,24576,100,NVIDIA-A10,0,true:").
				WithAnnotation("hami.io/node-handshake-nvidia", "Requesting_"+time.Now().UTC().Format("2006-01-02 15:04:05")).
				Get()
			Expect(k8sClient.Create(ctx, &node)).To(Succeed())

			By("Checking that the handshake is eventually reported as stale")
			Eventually(func() *float64 {
				return nodeGauge("vgpu_node_handshake_stale", nodeName, "nvidia")
			}, timeout, interval).Should(HaveValue(Equal(1.0)))
		})
	})
})
