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
	"github.com/stretchr/testify/assert"
	"sigs.k8s.io/yaml"
	"testing"
	"time"
)

func TestExporterConfig_YamlDeserialization(t *testing.T) {
	input := `
apiVersion: config.vgpu.nebuly.com/v1alpha1
kind: ExporterConfig
health:
  healthProbeBindAddress: :8081
metrics:
  bindAddress: 127.0.0.1:8080
annotationPrefix: volcano.sh/
nodeSelector: accelerator in (gpu,npu)
handshakeTimeoutSeconds: 120
`
	var config ExporterConfig
	assert.NoError(t, yaml.Unmarshal([]byte(input), &config))
	config.FillDefaultValues()
	assert.NoError(t, config.Validate())
	assert.Equal(t, "volcano.sh/", config.AnnotationPrefix)
	assert.Equal(t, "accelerator in (gpu,npu)", config.NodeSelector)
	assert.Equal(t, 120*time.Second, config.GetHandshakeTimeout())
	assert.Equal(t, "127.0.0.1:8080", config.Metrics.BindAddress)
}

func TestExporterConfig_FillDefaultValues(t *testing.T) {
	config := ExporterConfig{}
	config.FillDefaultValues()
	assert.NoError(t, config.Validate())
	assert.Equal(t, "hami.io/", config.AnnotationPrefix)
	assert.Equal(t, "gpu=on", config.NodeSelector)
	assert.Equal(t, 60*time.Second, config.GetHandshakeTimeout())
}

func TestExporterConfig_Validate(t *testing.T) {
	testCases := []struct {
		name        string
		config      ExporterConfig
		expectedErr bool
	}{
		{
			name: "Prefix without trailing slash",
			config: ExporterConfig{
				AnnotationPrefix:        "hami.io",
				NodeSelector:            "gpu=on",
				HandshakeTimeoutSeconds: 10,
			},
			expectedErr: true,
		},
		{
			name: "Invalid selector",
			config: ExporterConfig{
				AnnotationPrefix:        "hami.io/",
				NodeSelector:            "gpu in (on",
				HandshakeTimeoutSeconds: 10,
			},
			expectedErr: true,
		},
		{
			name: "Negative timeout",
			config: ExporterConfig{
				AnnotationPrefix:        "hami.io/",
				NodeSelector:            "gpu=on",
				HandshakeTimeoutSeconds: -1,
			},
			expectedErr: true,
		},
		{
			name: "Valid config",
			config: ExporterConfig{
				AnnotationPrefix:        "hami.io/",
				NodeSelector:            "gpu=on",
				HandshakeTimeoutSeconds: 10,
			},
			expectedErr: false,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectedErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
