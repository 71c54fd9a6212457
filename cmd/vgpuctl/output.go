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

package main

import (
	"fmt"
	"github.com/nebuly-ai/vgpu/pkg/vgpu"
	"io"
	"sigs.k8s.io/yaml"
	"strings"
	"text/tabwriter"
	"time"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
)

type handshakeView struct {
	State string `json:"state"`
	Raw   string `json:"raw"`
	Stale bool   `json:"stale"`
}

type deviceView struct {
	UUID       string `json:"uuid"`
	Type       string `json:"type"`
	SplitCount int    `json:"splitCount"`
	MemoryMB   int    `json:"memoryMB"`
	Cores      int    `json:"cores"`
	Numa       int    `json:"numa"`
	Healthy    bool   `json:"healthy"`
}

type inventoryView struct {
	Type      string         `json:"type"`
	Handshake *handshakeView `json:"handshake,omitempty"`
	Devices   []deviceView   `json:"devices"`
}

type nodeView struct {
	Name        string          `json:"name"`
	Inventories []inventoryView `json:"inventories"`
	Error       string          `json:"error,omitempty"`
}

type allocationView struct {
	UUID     string `json:"uuid"`
	Type     string `json:"type"`
	MemoryMB int    `json:"memoryMB"`
	Cores    int    `json:"cores"`
}

type podView struct {
	Namespace    string           `json:"namespace"`
	Name         string           `json:"name"`
	Phase        string           `json:"phase"`
	NodeName     string           `json:"nodeName,omitempty"`
	AssignedNode string           `json:"assignedNode,omitempty"`
	ScheduleTime string           `json:"scheduleTime,omitempty"`
	Bound        bool             `json:"bound"`
	Allocations  []allocationView `json:"allocations"`
}

// printer renders the views either as a table or as YAML
type printer struct {
	out              io.Writer
	format           string
	now              time.Time
	handshakeTimeout time.Duration
}

func newPrinter(out io.Writer, format string, handshakeTimeout time.Duration) (printer, error) {
	if format != outputTable && format != outputYAML {
		return printer{}, fmt.Errorf("unsupported output format %q, must be one of %q, %q", format, outputTable, outputYAML)
	}
	return printer{out: out, format: format, now: time.Now(), handshakeTimeout: handshakeTimeout}, nil
}

func (p printer) inventoryViews(inventories vgpu.InventoryMap) []inventoryView {
	res := make([]inventoryView, 0, len(inventories))
	for _, deviceType := range inventories.Types() {
		inventory := inventories[deviceType]
		view := inventoryView{Type: deviceType, Devices: make([]deviceView, 0, len(inventory.Devices))}
		if inventory.HasHandshake() {
			handshake := inventory.GetHandshake()
			view.Handshake = &handshakeView{
				State: string(handshake.State),
				Raw:   handshake.Raw,
				Stale: handshake.IsStale(p.now, p.handshakeTimeout),
			}
		}
		for _, d := range inventory.Devices {
			view.Devices = append(view.Devices, deviceView{
				UUID:       d.UUID,
				Type:       d.Type,
				SplitCount: d.SplitCount,
				MemoryMB:   d.MemoryMB,
				Cores:      d.Cores,
				Numa:       d.Numa,
				Healthy:    d.Healthy,
			})
		}
		res = append(res, view)
	}
	return res
}

func (p printer) nodeView(node vgpu.NodeInfo) nodeView {
	view := nodeView{Name: node.Name, Inventories: p.inventoryViews(node.Devices)}
	if node.Err != nil {
		view.Error = node.Err.Error()
	}
	return view
}

func newPodView(namespace, name string, info vgpu.SchedulingInfo) podView {
	view := podView{
		Namespace:    namespace,
		Name:         name,
		Phase:        string(info.PodPhase),
		NodeName:     info.NodeName,
		AssignedNode: info.AssignedNode,
		ScheduleTime: info.ScheduleTime,
		Bound:        info.IsBound(),
		Allocations:  make([]allocationView, 0, len(info.AllocatedDevices)),
	}
	for _, a := range info.AllocatedDevices {
		view.Allocations = append(view.Allocations, allocationView{
			UUID:     a.UUID,
			Type:     a.Type,
			MemoryMB: a.MemoryMB,
			Cores:    a.Cores,
		})
	}
	return view
}

func (p printer) printYAML(obj interface{}) error {
	out, err := yaml.Marshal(obj)
	if err != nil {
		return err
	}
	_, err = p.out.Write(out)
	return err
}

func (p printer) PrintNodes(nodes []vgpu.NodeInfo) error {
	views := make([]nodeView, 0, len(nodes))
	for _, n := range nodes {
		views = append(views, p.nodeView(n))
	}
	if p.format == outputYAML {
		return p.printYAML(views)
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NODE\tTYPE\tDEVICES\tHEALTHY\tMEMORY(MB)\tHANDSHAKE\tSTALE\tERROR")
	for _, node := range views {
		if len(node.Inventories) == 0 {
			fmt.Fprintf(w, "%s\t-\t0\t0\t0\t-\t-\t%s\n", node.Name, valueOrDash(node.Error))
			continue
		}
		for _, inventory := range node.Inventories {
			var healthy, memory int
			for _, d := range inventory.Devices {
				if d.Healthy {
					healthy++
				}
				memory += d.MemoryMB
			}
			state, stale := "-", "-"
			if inventory.Handshake != nil {
				state = inventory.Handshake.State
				stale = fmt.Sprintf("%t", inventory.Handshake.Stale)
			}
			fmt.Fprintf(
				w,
				"%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
				node.Name,
				inventory.Type,
				len(inventory.Devices),
				healthy,
				memory,
				state,
				stale,
				valueOrDash(node.Error),
			)
		}
	}
	return w.Flush()
}

func (p printer) PrintNode(nodeName string, inventories vgpu.InventoryMap) error {
	view := nodeView{Name: nodeName, Inventories: p.inventoryViews(inventories)}
	if p.format == outputYAML {
		return p.printYAML(view)
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TYPE\tUUID\tMODEL\tSPLIT\tMEMORY(MB)\tCORES\tNUMA\tHEALTHY")
	for _, inventory := range view.Inventories {
		for _, d := range inventory.Devices {
			fmt.Fprintf(
				w,
				"%s\t%s\t%s\t%d\t%d\t%d\t%d\t%t\n",
				inventory.Type,
				d.UUID,
				d.Type,
				d.SplitCount,
				d.MemoryMB,
				d.Cores,
				d.Numa,
				d.Healthy,
			)
		}
	}
	return w.Flush()
}

func (p printer) PrintPod(namespace, name string, info vgpu.SchedulingInfo) error {
	view := newPodView(namespace, name, info)
	if p.format == outputYAML {
		return p.printYAML(view)
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "POD:\t%s/%s\n", view.Namespace, view.Name)
	fmt.Fprintf(w, "PHASE:\t%s\n", valueOrDash(view.Phase))
	fmt.Fprintf(w, "NODE:\t%s\n", valueOrDash(view.NodeName))
	fmt.Fprintf(w, "ASSIGNED NODE:\t%s\n", valueOrDash(view.AssignedNode))
	fmt.Fprintf(w, "SCHEDULE TIME:\t%s\n", valueOrDash(view.ScheduleTime))
	fmt.Fprintf(w, "BOUND:\t%t\n", view.Bound)
	if err := w.Flush(); err != nil {
		return err
	}
	if len(view.Allocations) == 0 {
		return nil
	}

	fmt.Fprintln(p.out)
	w = tabwriter.NewWriter(p.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "UUID\tTYPE\tMEMORY(MB)\tCORES")
	for _, a := range view.Allocations {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", a.UUID, a.Type, a.MemoryMB, a.Cores)
	}
	return w.Flush()
}

func valueOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
