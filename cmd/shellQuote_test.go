package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestShellQuote verifies that safe arguments pass through untouched and
// everything else is single-quoted with embedded quotes escaped. Assumes a
// POSIX remote shell.
func TestShellQuote(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "''"},
		{"plain", "plain"},
		{"hosts.byname", "hosts.byname"},
		{"/etc/yp.conf", "/etc/yp.conf"},
		{"user@host:22", "user@host:22"},
		{"two words", "'two words'"},
		{"$HOME", "'$HOME'"},
		{"a;rm -rf /", "'a;rm -rf /'"},
		{"it's", `'it'\''s'`},
		{"`tick`", "'`tick`'"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, shellQuote(tc.in), "input %q", tc.in)
	}
}
