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

package v1alpha1

import (
	"errors"
	"fmt"
	hamiv1alpha1 "github.com/nebuly-ai/vgpu/pkg/api/hami.io/v1alpha1"
	"github.com/nebuly-ai/vgpu/pkg/constant"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	cfg "sigs.k8s.io/controller-runtime/pkg/config/v1alpha1"
	"strings"
	"time"
)

// +kubebuilder:object:root=true

type ExporterConfig struct {
	metav1.TypeMeta                        `json:",inline"`
	cfg.ControllerManagerConfigurationSpec `json:",inline"`
	// AnnotationPrefix is the prefix of the annotations containing the devices
	AnnotationPrefix string `json:"annotationPrefix,omitempty"`
	// NodeSelector selects the nodes whose devices are exported
	NodeSelector string `json:"nodeSelector,omitempty"`
	// HandshakeTimeoutSeconds is the time after which an unanswered handshake request
	// marks the devices of a node as stale
	HandshakeTimeoutSeconds time.Duration `json:"handshakeTimeoutSeconds,omitempty"`
}

func (c *ExporterConfig) FillDefaultValues() {
	if c.AnnotationPrefix == "" {
		c.AnnotationPrefix = hamiv1alpha1.AnnotationPrefix
	}
	if c.NodeSelector == "" {
		c.NodeSelector = hamiv1alpha1.DefaultNodeSelector
	}
	if c.HandshakeTimeoutSeconds == 0 {
		c.HandshakeTimeoutSeconds = constant.DefaultHandshakeTimeout / time.Second
	}
}

func (c *ExporterConfig) Validate() error {
	if !strings.HasSuffix(c.AnnotationPrefix, "/") {
		return fmt.Errorf("annotationPrefix must end with \"/\", got %q", c.AnnotationPrefix)
	}
	if _, err := labels.Parse(c.NodeSelector); err != nil {
		return fmt.Errorf("invalid nodeSelector: %w", err)
	}
	if c.HandshakeTimeoutSeconds.Seconds() <= 0 {
		return errors.New("handshakeTimeoutSeconds must be greater than 0")
	}
	return nil
}

// GetHandshakeTimeout returns the handshake timeout as a duration
func (c *ExporterConfig) GetHandshakeTimeout() time.Duration {
	return c.HandshakeTimeoutSeconds * time.Second
}

func init() {
	SchemeBuilder.Register(&ExporterConfig{})
}
