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
	"fmt"
	"github.com/nebuly-ai/vgpu/pkg/constant"
	"github.com/nebuly-ai/vgpu/pkg/util"
	"github.com/nebuly-ai/vgpu/pkg/vgpu"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"os"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"strings"
	"time"
)

var scheme = runtime.NewScheme()

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
}

// clientFactory builds the client used by the commands, reading annotations under the given prefix
type clientFactory func(annotationPrefix string) (vgpu.Client, error)

func newClusterClient(annotationPrefix string) (vgpu.Client, error) {
	restConfig, err := ctrl.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("unable to load kubeconfig: %w", err)
	}
	k8sClient, err := client.New(restConfig, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("unable to create kubernetes client: %w", err)
	}
	return vgpu.NewClient(k8sClient, annotationPrefix), nil
}

type rootOptions struct {
	output           string
	annotationPrefix string
	handshakeTimeout time.Duration
}

func newRootCommand(newClient clientFactory) *cobra.Command {
	opts := rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "vgpuctl",
		Short:         "Inspect the devices registered on the nodes and assigned to the pods",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().SortFlags = false
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "Output format, one of: table, yaml")
	rootCmd.PersistentFlags().StringVar(
		&opts.annotationPrefix,
		"annotation-prefix",
		util.GetEnv(constant.EnvVarAnnotationPrefix, ""),
		"Prefix of the device annotations, defaults to \"hami.io/\"",
	)
	rootCmd.PersistentFlags().DurationVar(
		&opts.handshakeTimeout,
		"handshake-timeout",
		constant.DefaultHandshakeTimeout,
		"Time after which a pending handshake request is considered stale",
	)

	// setup returns the client and the printer shared by all the sub-commands
	setup := func(cmd *cobra.Command) (vgpu.Client, printer, error) {
		p, err := newPrinter(cmd.OutOrStdout(), opts.output, opts.handshakeTimeout)
		if err != nil {
			return nil, printer{}, err
		}
		c, err := newClient(opts.annotationPrefix)
		if err != nil {
			return nil, printer{}, err
		}
		return c, p, nil
	}

	var selector string
	nodesCmd := &cobra.Command{
		Use:   "nodes",
		Short: "List the GPU nodes and a summary of their devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, p, err := setup(cmd)
			if err != nil {
				return err
			}
			nodes, err := c.ListGPUNodes(cmd.Context(), selector)
			if err != nil {
				return err
			}
			return p.PrintNodes(nodes)
		},
	}
	nodesCmd.Flags().StringVarP(
		&selector,
		"selector",
		"l",
		util.GetEnv(constant.EnvVarNodeSelector, ""),
		"Label selector of the GPU nodes, defaults to \"gpu=on\"",
	)

	nodeCmd := &cobra.Command{
		Use:   "node NAME",
		Short: "Show the devices registered on a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, p, err := setup(cmd)
			if err != nil {
				return err
			}
			inventories, err := c.GetNodeDevices(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return p.PrintNode(args[0], inventories)
		},
	}

	podCmd := &cobra.Command{
		Use:   "pod NAMESPACE/NAME",
		Short: "Show the devices assigned to a pod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			namespace, name, err := splitNamespacedName(args[0])
			if err != nil {
				return err
			}
			c, p, err := setup(cmd)
			if err != nil {
				return err
			}
			info, err := c.GetPodSchedulingInfo(cmd.Context(), namespace, name)
			if err != nil {
				return err
			}
			return p.PrintPod(namespace, name, info)
		},
	}

	rootCmd.AddCommand(nodesCmd, nodeCmd, podCmd)
	return rootCmd
}

func splitNamespacedName(s string) (string, string, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid pod reference %q, expected NAMESPACE/NAME", s)
	}
	return parts[0], parts[1], nil
}

func main() {
	opts := zap.Options{}
	opts.BindFlags(flag.CommandLine)
	rootCmd := newRootCommand(newClusterClient)
	// flag.CommandLine also carries the kubeconfig flag registered by controller-runtime
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	cobra.OnInitialize(func() {
		ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
	})

	if err := rootCmd.ExecuteContext(ctrl.SetupSignalHandler()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
