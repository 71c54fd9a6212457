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

package predicate_test

import (
	"github.com/nebuly-ai/vgpu/pkg/test/factory"
	"github.com/nebuly-ai/vgpu/pkg/util/predicate"
	"github.com/stretchr/testify/assert"
	"k8s.io/apimachinery/pkg/labels"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"testing"
)

func TestMatchingLabelSelector(t *testing.T) {
	selector, err := labels.Parse("gpu=on")
	assert.NoError(t, err)
	p := predicate.MatchingLabelSelector{Selector: selector}

	gpuNode := factory.BuildNode("node-1").WithLabel("gpu", "on").Get()
	cpuNode := factory.BuildNode("node-1").Get()

	assert.True(t, p.Create(event.CreateEvent{Object: &gpuNode}))
	assert.False(t, p.Create(event.CreateEvent{Object: &cpuNode}))
	assert.True(t, p.Delete(event.DeleteEvent{Object: &gpuNode}))
	assert.False(t, p.Generic(event.GenericEvent{Object: &cpuNode}))

	// Label removed: the update must still be notified
	assert.True(t, p.Update(event.UpdateEvent{ObjectOld: &gpuNode, ObjectNew: &cpuNode}))
	assert.True(t, p.Update(event.UpdateEvent{ObjectOld: &cpuNode, ObjectNew: &gpuNode}))
	assert.False(t, p.Update(event.UpdateEvent{ObjectOld: &cpuNode, ObjectNew: &cpuNode}))
}

func TestAnnotationsChangedPredicate(t *testing.T) {
	p := predicate.AnnotationsChangedPredicate{}

	oldNode := factory.BuildNode("node-1").WithAnnotation("hami.io/node-handshake-nvidia", "Requesting_2023-01-02 15:04:05").Get()
	sameNode := factory.BuildNode("node-1").WithAnnotation("hami.io/node-handshake-nvidia", "Requesting_2023-01-02 15:04:05").Get()
	newNode := factory.BuildNode("node-1").WithAnnotation("hami.io/node-handshake-nvidia", "Reported 2023-01-02 15:04:06").Get()

	assert.False(t, p.Update(event.UpdateEvent{ObjectOld: &oldNode, ObjectNew: &sameNode}))
	assert.True(t, p.Update(event.UpdateEvent{ObjectOld: &oldNode, ObjectNew: &newNode}))
}
