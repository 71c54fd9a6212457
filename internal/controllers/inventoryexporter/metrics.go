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

package inventoryexporter

import (
	"github.com/nebuly-ai/vgpu/pkg/vgpu"
	"github.com/prometheus/client_golang/prometheus"
	"time"
)

const metricsNamespace = "vgpu"

type Metrics struct {
	devices          *prometheus.GaugeVec
	healthyDevices   *prometheus.GaugeVec
	memory           *prometheus.GaugeVec
	handshakeStale   *prometheus.GaugeVec
	annotationErrors *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	nodeTypeLabels := []string{"node", "type"}
	return &Metrics{
		devices: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "node_devices",
			Help:      "Number of devices registered on the node.",
		}, nodeTypeLabels),
		healthyDevices: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "node_healthy_devices",
			Help:      "Number of healthy devices registered on the node.",
		}, nodeTypeLabels),
		memory: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "node_memory_mb",
			Help:      "Total memory of the devices registered on the node, in MB.",
		}, nodeTypeLabels),
		handshakeStale: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "node_handshake_stale",
			Help:      "1 if the handshake of the device type is stale, 0 otherwise.",
		}, nodeTypeLabels),
		annotationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "node_annotation_errors_total",
			Help:      "Number of times the device annotations of the node could not be decoded.",
		}, []string{"node"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.devices,
		m.healthyDevices,
		m.memory,
		m.handshakeStale,
		m.annotationErrors,
	}
}

func (m *Metrics) Register(registerer prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveNode replaces the series of the node with the ones computed from its inventories
func (m *Metrics) ObserveNode(nodeName string, inventories vgpu.InventoryMap, now time.Time, handshakeTimeout time.Duration) {
	m.deleteNodeGauges(nodeName)
	for deviceType, inventory := range inventories {
		m.devices.WithLabelValues(nodeName, deviceType).Set(float64(len(inventory.Devices)))
		m.healthyDevices.WithLabelValues(nodeName, deviceType).Set(float64(len(inventory.Devices.GetHealthy())))
		m.memory.WithLabelValues(nodeName, deviceType).Set(float64(inventory.Devices.TotalMemoryMB()))
		var stale float64
		if inventory.GetHandshake().IsStale(now, handshakeTimeout) {
			stale = 1
		}
		m.handshakeStale.WithLabelValues(nodeName, deviceType).Set(stale)
	}
}

// ObserveInvalidNode drops the gauges of the node and counts the decoding failure
func (m *Metrics) ObserveInvalidNode(nodeName string) {
	m.deleteNodeGauges(nodeName)
	m.annotationErrors.WithLabelValues(nodeName).Inc()
}

// DeleteNode drops all the series of the node
func (m *Metrics) DeleteNode(nodeName string) {
	m.deleteNodeGauges(nodeName)
	m.annotationErrors.DeletePartialMatch(prometheus.Labels{"node": nodeName})
}

func (m *Metrics) deleteNodeGauges(nodeName string) {
	labels := prometheus.Labels{"node": nodeName}
	m.devices.DeletePartialMatch(labels)
	m.healthyDevices.DeletePartialMatch(labels)
	m.memory.DeletePartialMatch(labels)
	m.handshakeStale.DeletePartialMatch(labels)
}
