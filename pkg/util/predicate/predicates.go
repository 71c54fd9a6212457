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

package predicate

import (
	"github.com/google/go-cmp/cmp"
	"k8s.io/apimachinery/pkg/labels"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/predicate"
)

// AnnotationsChangedPredicate
type AnnotationsChangedPredicate struct {
	predicate.Funcs
}

func (p AnnotationsChangedPredicate) Update(updateEvent event.UpdateEvent) bool {
	return !cmp.Equal(updateEvent.ObjectOld.GetAnnotations(), updateEvent.ObjectNew.GetAnnotations())
}

// MatchingLabelSelector accepts the events of the objects whose labels match the selector.
// Updates are accepted if either the old or the new object matches, so that objects that
// stop matching the selector are still notified.
type MatchingLabelSelector struct {
	Selector labels.Selector
}

func (p MatchingLabelSelector) Create(event event.CreateEvent) bool {
	return p.Selector.Matches(labels.Set(event.Object.GetLabels()))
}

func (p MatchingLabelSelector) Delete(event event.DeleteEvent) bool {
	return p.Selector.Matches(labels.Set(event.Object.GetLabels()))
}

func (p MatchingLabelSelector) Update(event event.UpdateEvent) bool {
	return p.Selector.Matches(labels.Set(event.ObjectOld.GetLabels())) ||
		p.Selector.Matches(labels.Set(event.ObjectNew.GetLabels()))
}

func (p MatchingLabelSelector) Generic(event event.GenericEvent) bool {
	return p.Selector.Matches(labels.Set(event.Object.GetLabels()))
}
