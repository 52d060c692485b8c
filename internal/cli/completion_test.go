package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionBashGeneration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rootCmd.GenBashCompletion(&buf))
	output := buf.String()

	assert.Contains(t, output, "# bash completion for gpudash")
	assert.Contains(t, output, "__completeNoDesc", "should use dynamic completion")
	assert.Contains(t, output, "complete -o default -F __start_gpudash gpudash")
	assert.Contains(t, output, "_gpudash_status()")
	assert.Contains(t, output, "_gpudash_upload()")
	assert.Equal(t, strings.Count(output, "{"), strings.Count(output, "}"), "braces should be balanced")
}

func TestCompletionZshGeneration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rootCmd.GenZshCompletion(&buf))

	assert.Contains(t, buf.String(), "#compdef gpudash")
	assert.Contains(t, buf.String(), "_gpudash()")
}

func TestCompletionFishGeneration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rootCmd.GenFishCompletion(&buf, true))

	assert.Contains(t, buf.String(), "fish completion for gpudash")
	assert.Contains(t, buf.String(), "complete -c gpudash")
}

func TestCompletionPowershellGeneration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rootCmd.GenPowerShellCompletion(&buf))

	assert.Contains(t, strings.ToLower(buf.String()), "powershell completion")
	assert.Contains(t, buf.String(), "Register-ArgumentCompleter")
}

func TestCompletionCommandValidArgs(t *testing.T) {
	assert.Equal(t, []string{"bash", "zsh", "fish", "powershell"}, completionCmd.ValidArgs)
	assert.Error(t, completionCmd.Args(completionCmd, []string{"tcsh"}))
	assert.Error(t, completionCmd.Args(completionCmd, nil))
	assert.NoError(t, completionCmd.Args(completionCmd, []string{"zsh"}))
}
