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
	"flag"
	"github.com/nebuly-ai/vgpu/internal/controllers/inventoryexporter"
	configv1alpha1 "github.com/nebuly-ai/vgpu/pkg/api/vgpu.nebuly.com/config/v1alpha1"
	"github.com/nebuly-ai/vgpu/pkg/constant"
	"github.com/nebuly-ai/vgpu/pkg/util"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"os"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(configv1alpha1.AddToScheme(scheme))
}

func main() {
	// Setup CLI args
	var configFile string
	flag.StringVar(&configFile, "config", "",
		"The exporter will load its initial configuration from this file. "+
			"Omit this flag to use the default configuration values. "+
			"Command-line flags override configuration from this file.")
	opts := zap.Options{}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()
	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	ctx := ctrl.SetupSignalHandler()

	// Load config and setup controller manager
	var err error
	options := ctrl.Options{
		Scheme: scheme,
	}
	exporterConfig := configv1alpha1.ExporterConfig{}
	if configFile != "" {
		options, err = options.AndFrom(ctrl.ConfigFile().AtPath(configFile).OfKind(&exporterConfig))
		if err != nil {
			setupLog.Error(err, "unable to load the config file")
			os.Exit(1)
		}
	}
	exporterConfig.AnnotationPrefix = util.GetEnv(constant.EnvVarAnnotationPrefix, exporterConfig.AnnotationPrefix)
	exporterConfig.NodeSelector = util.GetEnv(constant.EnvVarNodeSelector, exporterConfig.NodeSelector)
	exporterConfig.FillDefaultValues()
	if err = exporterConfig.Validate(); err != nil {
		setupLog.Error(err, "invalid config")
		os.Exit(1)
	}
	setupLog.Info(
		"loaded config",
		"annotationPrefix",
		exporterConfig.AnnotationPrefix,
		"nodeSelector",
		exporterConfig.NodeSelector,
		"handshakeTimeout",
		exporterConfig.GetHandshakeTimeout(),
	)
	selector, err := labels.Parse(exporterConfig.NodeSelector)
	if err != nil {
		setupLog.Error(err, "unable to parse node selector")
		os.Exit(1)
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), options)
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}

	// Register metrics
	exporterMetrics := inventoryexporter.NewMetrics()
	if err = exporterMetrics.Register(metrics.Registry); err != nil {
		setupLog.Error(err, "unable to register metrics")
		os.Exit(1)
	}

	// Setup inventory exporter
	exporter := inventoryexporter.NewReconciler(
		mgr.GetClient(),
		exporterMetrics,
		selector,
		exporterConfig.AnnotationPrefix,
		exporterConfig.GetHandshakeTimeout(),
	)
	if err = exporter.SetupWithManager(mgr, constant.InventoryExporterName); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", constant.InventoryExporterName)
		os.Exit(1)
	}

	// Add health check endpoints to manager
	if err = mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err = mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	// Start manager
	setupLog.Info("starting manager")
	if err = mgr.Start(ctx); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}
