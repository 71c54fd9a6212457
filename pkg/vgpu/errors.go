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
	"errors"
	"fmt"
)

type errorCode string

const (
	errorCodeFormat errorCode = "invalid-format"
)

// FormatErr is returned when an annotation value does not respect the wire format:
// a record has fewer fields than required or a numeric field is not an integer.
var FormatErr = errorImpl{code: errorCodeFormat}

type Error interface {
	error
	IsFormatError() bool
}

type errorImpl struct {
	code errorCode
	err  error
}

func (e errorImpl) Error() string {
	if e.err == nil {
		return fmt.Sprintf("[code: %s]", e.code)
	}
	return fmt.Sprintf("[code: %s  err: %s]", e.code, e.err.Error())
}

func (e errorImpl) Unwrap() error {
	return e.err
}

func (e errorImpl) IsFormatError() bool {
	return e.code == errorCodeFormat
}

func (e errorImpl) Errorf(format string, args ...any) Error {
	e.err = fmt.Errorf(format, args...)
	return e
}

// IsFormatError returns true if err, or any error it wraps, is a format error
func IsFormatError(err error) bool {
	if err == nil {
		return false
	}
	var vgpuErr Error
	if !errors.As(err, &vgpuErr) {
		return false
	}
	return vgpuErr.IsFormatError()
}

func IgnoreFormatError(err error) error {
	if IsFormatError(err) {
		return nil
	}
	return err
}
