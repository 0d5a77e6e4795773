// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// RedactedStr is the placeholder written in place of secrets.
const RedactedStr = "<redacted>"

// RedactString replaces a non-empty string with RedactedStr
func RedactString(s string) string {
	if len(s) == 0 {
		return ""
	}

	return RedactedStr
}

// IsRedactedString checks if a value is the redaction placeholder
func IsRedactedString(value string) bool {
	return value == RedactedStr
}
