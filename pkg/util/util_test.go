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

package util

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestCopyMap(t *testing.T) {
	tests := []struct {
		name     string
		input    map[string]string
		expected map[string]string
	}{
		{
			name:     "nil map",
			input:    nil,
			expected: map[string]string{},
		},
		{
			name: "map with values",
			input: map[string]string{
				"hami.io/node-nvidia-register": "GPU-0,10,1024,100,A100,0,true:",
				"gpu":                          "on",
			},
			expected: map[string]string{
				"hami.io/node-nvidia-register": "GPU-0,10,1024,100,A100,0,true:",
				"gpu":                          "on",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CopyMap(tt.input)
			assert.Equal(t, tt.expected, res)
			res["new-key"] = "value"
			assert.NotContains(t, tt.input, "new-key")
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("VGPU_TEST_SET", "value")

	assert.Equal(t, "value", GetEnv("VGPU_TEST_SET", "fallback"))
	assert.Equal(t, "fallback", GetEnv("VGPU_TEST_UNSET", "fallback"))

	value, err := GetEnvOrError("VGPU_TEST_SET")
	assert.NoError(t, err)
	assert.Equal(t, "value", value)

	_, err = GetEnvOrError("VGPU_TEST_UNSET")
	assert.Error(t, err)
}

func TestAddr(t *testing.T) {
	s := StringAddr("token")
	assert.Equal(t, "token", *s)

	i := Int64Addr(3000)
	assert.Equal(t, int64(3000), *i)
}
