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
	"context"
	"github.com/go-logr/logr"
	"github.com/nebuly-ai/vgpu/pkg/util/predicate"
	"github.com/nebuly-ai/vgpu/pkg/vgpu"
	v1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	ctrlpredicate "sigs.k8s.io/controller-runtime/pkg/predicate"
	"time"
)

// Reconciler exports as metrics the devices registered on the nodes matching the selector.
// The inventory of a node is decoded from its annotations at every reconciliation and
// never stored: the exporter does not write anything to the cluster.
type Reconciler struct {
	client.Client
	metrics          *Metrics
	selector         labels.Selector
	annotationPrefix string
	handshakeTimeout time.Duration
	now              func() time.Time
}

func NewReconciler(k8sClient client.Client, metrics *Metrics, selector labels.Selector, annotationPrefix string, handshakeTimeout time.Duration) Reconciler {
	return Reconciler{
		Client:           k8sClient,
		metrics:          metrics,
		selector:         selector,
		annotationPrefix: annotationPrefix,
		handshakeTimeout: handshakeTimeout,
		now:              time.Now,
	}
}

//+kubebuilder:rbac:groups=core,resources=nodes,verbs=get;list;watch

func (r *Reconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := klog.FromContext(ctx)

	var instance v1.Node
	if err := r.Client.Get(ctx, client.ObjectKey{Name: req.Name}, &instance); err != nil {
		if apierrors.IsNotFound(err) {
			logger.V(1).Info("node deleted, removing its metrics", "node", req.Name)
			r.metrics.DeleteNode(req.Name)
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	if !r.selector.Matches(labels.Set(instance.Labels)) {
		logger.V(1).Info("node does not match the selector anymore, removing its metrics", "node", instance.Name)
		r.metrics.DeleteNode(instance.Name)
		return ctrl.Result{}, nil
	}

	inventories, err := vgpu.ParseNodeAnnotationsWithPrefix(r.annotationPrefix, instance.Annotations)
	if err != nil {
		// Nothing to retry: the node gets reconciled again when its annotations change
		logger.Error(err, "unable to decode node devices", "node", instance.Name)
		r.metrics.ObserveInvalidNode(instance.Name)
		return ctrl.Result{}, nil
	}

	logInventories(logger.V(1), instance.Name, inventories)
	r.metrics.ObserveNode(instance.Name, inventories, r.now(), r.handshakeTimeout)

	// Requeue to re-evaluate handshakes that become stale over time
	return ctrl.Result{RequeueAfter: r.handshakeTimeout}, nil
}

func logInventories(logger logr.Logger, nodeName string, inventories vgpu.InventoryMap) {
	for _, deviceType := range inventories.Types() {
		inventory := inventories[deviceType]
		logger.Info(
			"exporting node devices",
			"node",
			nodeName,
			"type",
			deviceType,
			"devices",
			len(inventory.Devices),
			"healthy",
			len(inventory.Devices.GetHealthy()),
			"handshake",
			inventory.GetHandshake().State,
		)
	}
}

func (r *Reconciler) SetupWithManager(mgr ctrl.Manager, controllerName string) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(
			&v1.Node{},
			builder.WithPredicates(
				predicate.MatchingLabelSelector{Selector: r.selector},
				ctrlpredicate.Or(
					predicate.AnnotationsChangedPredicate{},
					ctrlpredicate.LabelChangedPredicate{},
				),
			),
		).
		Named(controllerName).
		Complete(r)
}
