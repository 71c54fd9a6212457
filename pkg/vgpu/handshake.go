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
	"strings"
	"time"
)

type HandshakeState string

const (
	// HandshakeStateReported means the device plugin answered the last handshake request
	HandshakeStateReported HandshakeState = "Reported"
	// HandshakeStateRequesting means the scheduler asked the device plugin to report again
	HandshakeStateRequesting HandshakeState = "Requesting"
	// HandshakeStateDeleted means the devices of the node have been marked as removed
	HandshakeStateDeleted HandshakeState = "Deleted"
	HandshakeStateUnknown HandshakeState = "Unknown"
)

var handshakeTokenPrefixes = []struct {
	prefix string
	state  HandshakeState
}{
	{prefix: "Reported ", state: HandshakeStateReported},
	{prefix: "Requesting_", state: HandshakeStateRequesting},
	{prefix: "Deleted_", state: HandshakeStateDeleted},
}

var handshakeTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
}

// Handshake is the interpretation of a handshake token
type Handshake struct {
	State HandshakeState
	// Raw is the token as found in the annotation
	Raw string
	// Time is zero if the token does not contain a valid timestamp
	Time time.Time
}

// ParseHandshake interprets a handshake token. Tokens that do not match any known
// format have state HandshakeStateUnknown.
//
// Examples:
//
//	"Reported 2023-01-02 15:04:05.123456789 +0000 UTC m=+12.000000001"
//	"Requesting_2023-01-02 15:04:05"
//	"Deleted_2023-01-02 15:04:05"
func ParseHandshake(token string) Handshake {
	res := Handshake{State: HandshakeStateUnknown, Raw: token}
	for _, p := range handshakeTokenPrefixes {
		if !strings.HasPrefix(token, p.prefix) {
			continue
		}
		res.State = p.state
		if t, ok := parseHandshakeTime(strings.TrimPrefix(token, p.prefix)); ok {
			res.Time = t
		}
		return res
	}
	return res
}

func parseHandshakeTime(value string) (time.Time, bool) {
	// Drop the monotonic clock reading
	if i := strings.Index(value, " m="); i >= 0 {
		value = value[:i]
	}
	value = strings.TrimSpace(value)
	for _, layout := range handshakeTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsStale returns true if the devices the handshake refers to should not be trusted anymore:
// either they have been deleted or the device plugin did not answer a request within timeout.
func (h Handshake) IsStale(now time.Time, timeout time.Duration) bool {
	switch h.State {
	case HandshakeStateDeleted:
		return true
	case HandshakeStateRequesting:
		if h.Time.IsZero() {
			return true
		}
		return now.Sub(h.Time) > timeout
	default:
		return false
	}
}
