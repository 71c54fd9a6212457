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
	"strconv"
	"strings"
)

const (
	// recordSeparator separates the records of an annotation value
	recordSeparator = ":"
	// fieldSeparator separates the fields of a single record
	fieldSeparator = ","
	// containerSeparator separates the allocations of the containers of a Pod
	containerSeparator = ";"
)

// parseRecords splits an annotation value into its records and parses each of them
// with the provided function. Trailing separators and empty records are ignored.
// The first record that cannot be parsed aborts the whole decoding.
func parseRecords[T any](value string, parse func(record string) (T, error)) ([]T, error) {
	res := make([]T, 0)
	value = strings.TrimRight(value, recordSeparator)
	if value == "" {
		return res, nil
	}
	for _, record := range strings.Split(value, recordSeparator) {
		if record == "" {
			continue
		}
		r, err := parse(record)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, nil
}

// splitFields returns the fields of the record, failing if they are fewer than minFields
func splitFields(record string, minFields int, kind string) ([]string, error) {
	fields := strings.Split(record, fieldSeparator)
	if len(fields) < minFields {
		return nil, FormatErr.Errorf(
			"%s record %q: expected at least %d fields, got %d",
			kind,
			record,
			minFields,
			len(fields),
		)
	}
	return fields, nil
}

func parseIntField(record, name, value string) (int, error) {
	res, err := strconv.Atoi(value)
	if err != nil {
		return 0, FormatErr.Errorf("record %q: invalid %s %q: not an integer", record, name, value)
	}
	return res, nil
}

// parseBoolField never fails: any token other than "true" (case-insensitive) is false
func parseBoolField(value string) bool {
	return strings.EqualFold(value, "true")
}
