package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := newRootCmd()
	var out, errBuf bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errBuf.String(), err
}

func TestParseTreeDefaultsToTreeFormat(t *testing.T) {
	out, _, err := runCmd(t, "parse-tree", "echo hi")
	require.NoError(t, err)
	assert.Contains(t, out, "SimpleCommand")
}

func TestParseTreeRejectsUnknownFormat(t *testing.T) {
	_, _, err := runCmd(t, "parse-tree", "-f", "bogus", "echo hi")
	require.Error(t, err)
	ec, ok := err.(exitCoder)
	require.True(t, ok, "error should implement exitCoder")
	assert.Equal(t, 2, ec.ExitCode())
}

func TestParseTreeRequiresAtLeastOneArg(t *testing.T) {
	_, _, err := runCmd(t, "parse-tree")
	require.Error(t, err)
	ec, ok := err.(exitCoder)
	require.True(t, ok)
	assert.Equal(t, 2, ec.ExitCode())
}

func TestParseTreeReportsLocatedParseError(t *testing.T) {
	_, _, err := runCmd(t, "parse-tree", ";;")
	require.Error(t, err)
	ec, ok := err.(exitCoder)
	require.True(t, ok)
	assert.Equal(t, 1, ec.ExitCode())
	assert.Contains(t, err.Error(), "psh:")
}

func TestShowASTPrintsPrettyFormat(t *testing.T) {
	out, _, err := runCmd(t, "show-ast", "echo hi")
	require.NoError(t, err)
	assert.Contains(t, out, "echo")
}

func TestASTDotIncludesRenderingHintAndDigraph(t *testing.T) {
	out, _, err := runCmd(t, "ast-dot", "echo hi")
	require.NoError(t, err)
	assert.Contains(t, out, "dot -Tpng")
	assert.Contains(t, out, "digraph")
}

func TestTrapListPrintsEveryKnownSignal(t *testing.T) {
	out, _, err := runCmd(t, "trap", "-l")
	require.NoError(t, err)
	assert.Contains(t, out, "INT")
	assert.Contains(t, out, "EXIT")
}

func TestTrapPrintShowsNoTrapsInitially(t *testing.T) {
	out, _, err := runCmd(t, "trap", "-p")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestTrapSetRejectsInvalidSignal(t *testing.T) {
	_, _, err := runCmd(t, "trap", "echo bye", "NOTASIGNAL")
	require.Error(t, err)
	ec, ok := err.(exitCoder)
	require.True(t, ok)
	assert.Equal(t, 1, ec.ExitCode())
}

func TestTrapSetRequiresActionAndSignal(t *testing.T) {
	_, _, err := runCmd(t, "trap", "onlyaction")
	require.Error(t, err)
	ec, ok := err.(exitCoder)
	require.True(t, ok)
	assert.Equal(t, 2, ec.ExitCode())
}

func TestDefaultFormatReadsEnv(t *testing.T) {
	t.Setenv("PSH_AST_FORMAT", "compact")
	assert.Equal(t, "compact", defaultFormat())
}

func TestDefaultFormatFallsBackToTree(t *testing.T) {
	t.Setenv("PSH_AST_FORMAT", "")
	assert.Equal(t, "tree", defaultFormat())
}
