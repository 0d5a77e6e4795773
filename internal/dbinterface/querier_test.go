// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package dbinterface

import "testing"

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{n: 1, want: "?"},
		{n: 3, want: "?, ?, ?"},
		{n: 0, want: ""},
		{n: -2, want: ""},
	}

	for _, tt := range tests {
		if got := Placeholders(tt.n); got != tt.want {
			t.Fatalf("Placeholders(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
