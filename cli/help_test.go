package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapText(t *testing.T) {
	assert.Equal(t, "one two\nthree", wrapText("one two three", 8))
	assert.Equal(t, "keep\nlines", wrapText("keep\nlines", 40))
}

func TestParseDescription(t *testing.T) {
	desc, ex := parseDescription("Switch env.\n\nExamples:\n  casemgmt env live")
	assert.Equal(t, "Switch env.", desc)
	assert.Equal(t, "casemgmt env live", ex)
}

func TestParseChoices(t *testing.T) {
	desc, choices := parseChoices("Field to set: payment_type, file_type, sheet_type")
	assert.Equal(t, "Field to set:", desc)
	assert.Equal(t, []string{"payment_type", "file_type", "sheet_type"}, choices)

	desc, choices = parseChoices("Output: a, b")
	assert.Equal(t, "Output: a, b", desc)
	assert.Nil(t, choices)
}

func TestStyledHelpListsCommandsAndFlags(t *testing.T) {
	root := NewStandardCommand("casemgmt", "Case management store")
	root.AddCommand(&cobra.Command{Use: "env", Short: "Switch environment", Run: func(*cobra.Command, []string) {}})
	ApplyStyledHelpRecursive(root)

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--help"})
	require.NoError(t, root.Execute())

	out := buf.String()
	assert.Contains(t, out, "CASEMGMT")
	assert.Contains(t, out, "env")
	assert.Contains(t, out, "Switch environment")
}

func TestGetOptions(t *testing.T) {
	root := NewStandardCommand("casemgmt", "x")
	require.NoError(t, root.ParseFlags([]string{"--json", "-c", "casemgmt.toml"}))
	opts := GetOptions(root)
	assert.True(t, opts.JSONOutput)
	assert.False(t, opts.Verbose)
	assert.Equal(t, "casemgmt.toml", opts.ConfigFile)
}
