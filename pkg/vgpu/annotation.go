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
	"github.com/nebuly-ai/vgpu/pkg/api/hami.io/v1alpha1"
	"github.com/nebuly-ai/vgpu/pkg/util"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	v1 "k8s.io/api/core/v1"
	"strings"
)

// KeyPattern matches annotation keys made of a literal prefix, a device type and a literal suffix.
type KeyPattern struct {
	Prefix string
	Suffix string
}

// RegisterKeyPattern returns the pattern of the device registration annotations
// under the given annotation prefix. Example: "hami.io/node-<type>-register".
func RegisterKeyPattern(annotationPrefix string) KeyPattern {
	return KeyPattern{
		Prefix: annotationPrefix + v1alpha1.AnnotationNodeKeyword,
		Suffix: v1alpha1.AnnotationNodeRegisterSuffix,
	}
}

// HandshakeKeyPattern returns the pattern of the handshake annotations
// under the given annotation prefix. Example: "hami.io/node-handshake-<type>".
func HandshakeKeyPattern(annotationPrefix string) KeyPattern {
	return KeyPattern{
		Prefix: annotationPrefix + v1alpha1.AnnotationHandshakeKeyword,
	}
}

// Match returns the device type captured between prefix and suffix, and true if the
// key matches the pattern. The captured device type is never empty.
func (p KeyPattern) Match(key string) (string, bool) {
	if len(key) <= len(p.Prefix)+len(p.Suffix) {
		return "", false
	}
	if !strings.HasPrefix(key, p.Prefix) || !strings.HasSuffix(key, p.Suffix) {
		return "", false
	}
	return key[len(p.Prefix) : len(key)-len(p.Suffix)], true
}

// Key returns the annotation key of the provided device type
func (p KeyPattern) Key(deviceType string) string {
	return p.Prefix + deviceType + p.Suffix
}

// Inventory is the view of the devices of a given type registered on a node
type Inventory struct {
	Type string
	// Handshake is the last handshake token, nil if the node does not expose any
	Handshake *string
	Devices   DeviceList
}

func (i Inventory) HasHandshake() bool {
	return i.Handshake != nil
}

// GetHandshake returns the parsed handshake token. If the inventory has no handshake,
// the returned handshake has state HandshakeStateUnknown.
func (i Inventory) GetHandshake() Handshake {
	if i.Handshake == nil {
		return Handshake{State: HandshakeStateUnknown}
	}
	return ParseHandshake(*i.Handshake)
}

// InventoryMap maps each device type to its inventory
type InventoryMap map[string]Inventory

// Types returns the device types of the map, sorted alphabetically
func (m InventoryMap) Types() []string {
	res := maps.Keys(m)
	slices.Sort(res)
	return res
}

func (m InventoryMap) getOrCreate(deviceType string) Inventory {
	if inventory, ok := m[deviceType]; ok {
		return inventory
	}
	return Inventory{Type: deviceType, Devices: make(DeviceList, 0)}
}

// ParseNodeAnnotations builds the inventory of each device type from the annotations
// of a node, using the default annotation prefix.
func ParseNodeAnnotations(annotations map[string]string) (InventoryMap, error) {
	return ParseNodeAnnotationsWithPrefix(v1alpha1.AnnotationPrefix, annotations)
}

// ParseNodeAnnotationsWithPrefix builds the inventory of each device type from the
// annotations of a node: registration annotations provide the devices, handshake
// annotations provide the handshake token. The two contributions are merged into the
// same inventory regardless of the order in which they are processed.
//
// A malformed registration value makes the whole node invalid and a format error
// referencing the annotation key is returned.
func ParseNodeAnnotationsWithPrefix(annotationPrefix string, annotations map[string]string) (InventoryMap, error) {
	res := make(InventoryMap)
	registerPattern := RegisterKeyPattern(annotationPrefix)
	handshakePattern := HandshakeKeyPattern(annotationPrefix)

	// Sort keys so that the reported error, if any, is always the same
	keys := maps.Keys(annotations)
	slices.Sort(keys)

	for _, key := range keys {
		value := annotations[key]
		if deviceType, ok := registerPattern.Match(key); ok {
			devices, err := ParseDeviceList(value)
			if err != nil {
				return nil, fmt.Errorf("annotation %s: %w", key, err)
			}
			inventory := res.getOrCreate(deviceType)
			inventory.Devices = devices
			res[deviceType] = inventory
		}
		if deviceType, ok := handshakePattern.Match(key); ok {
			inventory := res.getOrCreate(deviceType)
			inventory.Handshake = util.StringAddr(value)
			res[deviceType] = inventory
		}
	}

	return res, nil
}

// ParseNodeInventory returns the inventory of each device type registered on the node
func ParseNodeInventory(node v1.Node) (InventoryMap, error) {
	return ParseNodeAnnotations(node.Annotations)
}
