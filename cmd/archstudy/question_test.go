package main

import (
	"testing"

	"github.com/spf13/cobra"
)

// Commands that index into args must refuse to run without them instead
// of panicking inside Run.
func TestCommandsRequireTheirArgs(t *testing.T) {
	cases := []struct {
		name string
		cmd  *cobra.Command
	}{
		{"question show", questionShowCmd},
		{"question delete", questionDeleteCmd},
		{"question import-csv", questionImportCSVCmd},
		{"export", exportCmd},
		{"import", importCmd},
		{"memo", memoCmd},
	}
	for _, tc := range cases {
		if err := tc.cmd.ValidateArgs(nil); err == nil {
			t.Errorf("%s: expected an argument-count error with no args", tc.name)
		}
		if err := tc.cmd.ValidateArgs([]string{"2023-1-1"}); err != nil {
			t.Errorf("%s: one arg should validate, got %v", tc.name, err)
		}
	}
}
