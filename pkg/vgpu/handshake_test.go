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

package vgpu_test

import (
	"github.com/nebuly-ai/vgpu/pkg/vgpu"
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func TestParseHandshake(t *testing.T) {
	testCases := []struct {
		name          string
		token         string
		expectedState vgpu.HandshakeState
		expectedTime  time.Time
	}{
		{
			name:          "Reported with monotonic clock",
			token:         "Reported 2023-01-02 15:04:05.123456789 +0000 UTC m=+12.000000001",
			expectedState: vgpu.HandshakeStateReported,
			expectedTime:  time.Date(2023, 1, 2, 15, 4, 5, 123456789, time.UTC),
		},
		{
			name:          "Requesting",
			token:         "Requesting_2025-01-07 00:00:00",
			expectedState: vgpu.HandshakeStateRequesting,
			expectedTime:  time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "Deleted",
			token:         "Deleted_2025-01-07 00:00:00",
			expectedState: vgpu.HandshakeStateDeleted,
			expectedTime:  time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "Known state with invalid time",
			token:         "Requesting_yesterday",
			expectedState: vgpu.HandshakeStateRequesting,
		},
		{
			name:          "Unknown token",
			token:         "169900000",
			expectedState: vgpu.HandshakeStateUnknown,
		},
		{
			name:          "Empty token",
			token:         "",
			expectedState: vgpu.HandshakeStateUnknown,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			handshake := vgpu.ParseHandshake(tt.token)
			assert.Equal(t, tt.expectedState, handshake.State)
			assert.Equal(t, tt.token, handshake.Raw)
			assert.True(t, tt.expectedTime.Equal(handshake.Time), "expected %s, got %s", tt.expectedTime, handshake.Time)
		})
	}
}

func TestHandshake_IsStale(t *testing.T) {
	now := time.Date(2025, 1, 7, 0, 0, 30, 0, time.UTC)
	timeout := 60 * time.Second

	testCases := []struct {
		name     string
		token    string
		now      time.Time
		expected bool
	}{
		{
			name:     "Reported",
			token:    "Reported 2020-01-07 00:00:00",
			now:      now,
			expected: false,
		},
		{
			name:     "Recent request",
			token:    "Requesting_2025-01-07 00:00:00",
			now:      now,
			expected: false,
		},
		{
			name:     "Request not answered within timeout",
			token:    "Requesting_2025-01-07 00:00:00",
			now:      now.Add(2 * time.Minute),
			expected: true,
		},
		{
			name:     "Request without valid time",
			token:    "Requesting_",
			now:      now,
			expected: true,
		},
		{
			name:     "Deleted",
			token:    "Deleted_2025-01-07 00:00:00",
			now:      now,
			expected: true,
		},
		{
			name:     "Unknown",
			token:    "foo",
			now:      now,
			expected: false,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, vgpu.ParseHandshake(tt.token).IsStale(tt.now, timeout))
		})
	}
}
