package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psh-go/psh/ast"
)

// lineQueue adapts a fixed slice of lines into a LineReader, the shape
// every test below drives a Processor with.
func lineQueue(lines ...string) LineReader {
	i := 0
	return func() (string, bool) {
		if i >= len(lines) {
			return "", false
		}
		line := lines[i]
		i++
		return line, true
	}
}

type recordingExecutor struct {
	tops []*ast.TopLevel
	code int
	err  error
}

func (r *recordingExecutor) ExecuteTopLevel(top *ast.TopLevel) (int, error) {
	r.tops = append(r.tops, top)
	return r.code, r.err
}

func TestProcessorNextParsesASingleLineCommand(t *testing.T) {
	exec := &recordingExecutor{}
	p := NewProcessor("script.sh", exec)
	handled, err := p.Next(lineQueue("echo hi"))
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Len(t, exec.tops, 1)
}

func TestProcessorNextReportsEOFAsUnhandled(t *testing.T) {
	exec := &recordingExecutor{}
	p := NewProcessor("script.sh", exec)
	handled, err := p.Next(lineQueue())
	require.NoError(t, err)
	assert.False(t, handled, "handled should be false at EOF")
}

func TestProcessorAccumulatesIncompleteCommandAcrossLines(t *testing.T) {
	exec := &recordingExecutor{}
	p := NewProcessor("script.sh", exec)
	handled, err := p.Next(lineQueue("if true; then", "echo yes", "fi"))
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Len(t, exec.tops, 1)
}

func TestProcessorUnexpectedEOFMidCommandIsAnError(t *testing.T) {
	exec := &recordingExecutor{}
	p := NewProcessor("script.sh", exec)
	_, err := p.Next(lineQueue("if true; then"))
	assert.Error(t, err, "a command left incomplete at EOF should error")
}

func TestProcessorTrailingBackslashContinuesLine(t *testing.T) {
	exec := &recordingExecutor{}
	p := NewProcessor("script.sh", exec)
	handled, err := p.Next(lineQueue("echo one \\", "two"))
	require.NoError(t, err)
	require.True(t, handled)
	top := exec.tops[0]
	sl := top.Items[0].(*ast.StatementList)
	sc := sl.Statements[0].Pipelines[0].Commands[0].(*ast.SimpleCommand)
	assert.Equal(t, []string{"echo", "one", "two"}, sc.Args)
}

func TestProcessorSkipsLeadingBlankAndCommentLines(t *testing.T) {
	exec := &recordingExecutor{}
	p := NewProcessor("script.sh", exec)
	handled, err := p.Next(lineQueue("", "# a comment", "echo hi"))
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Len(t, exec.tops, 1)
}

func TestProcessorCapturesShebangOnFirstLine(t *testing.T) {
	exec := &recordingExecutor{}
	p := NewProcessor("script.sh", exec)
	_, err := p.Next(lineQueue("#!/usr/bin/env psh", "echo hi"))
	require.NoError(t, err)
	shebang, ok := p.Shebang()
	require.True(t, ok)
	assert.Equal(t, "/usr/bin/env psh", shebang)
}

func TestProcessorNoShebangWhenFirstLineIsNotOne(t *testing.T) {
	exec := &recordingExecutor{}
	p := NewProcessor("script.sh", exec)
	p.Next(lineQueue("echo hi"))
	_, ok := p.Shebang()
	assert.False(t, ok, "a script with no shebang line should report none")
}

func TestProcessorCollectsHeredocBody(t *testing.T) {
	exec := &recordingExecutor{}
	p := NewProcessor("script.sh", exec)
	handled, err := p.Next(lineQueue("cat <<EOF", "line one", "line two", "EOF"))
	require.NoError(t, err)
	require.True(t, handled)
	top := exec.tops[0]
	sl := top.Items[0].(*ast.StatementList)
	sc := sl.Statements[0].Pipelines[0].Commands[0].(*ast.SimpleCommand)
	r := sc.Redirects[0]
	assert.True(t, r.HasHeredoc)
	assert.Equal(t, "line one\nline two\n", r.HeredocContent)
}

func TestProcessorCollectsDashHeredocStrippingLeadingTabs(t *testing.T) {
	exec := &recordingExecutor{}
	p := NewProcessor("script.sh", exec)
	handled, err := p.Next(lineQueue("cat <<-EOF", "\t\tindented", "EOF"))
	require.NoError(t, err)
	require.True(t, handled)
	top := exec.tops[0]
	sl := top.Items[0].(*ast.StatementList)
	sc := sl.Statements[0].Pipelines[0].Commands[0].(*ast.SimpleCommand)
	assert.Equal(t, "indented\n", sc.Redirects[0].HeredocContent)
}

func TestProcessorHeredocUnterminatedIsAnError(t *testing.T) {
	exec := &recordingExecutor{}
	p := NewProcessor("script.sh", exec)
	_, err := p.Next(lineQueue("cat <<EOF", "body"))
	assert.Error(t, err, "a heredoc missing its delimiter should error")
}

func TestProcessorLastExitCodeReflectsExecutor(t *testing.T) {
	exec := &recordingExecutor{code: 7}
	p := NewProcessor("script.sh", exec)
	p.Next(lineQueue("false"))
	assert.Equal(t, 7, p.LastExitCode())
}

func TestProcessorLastExitCodeIsOneOnParseFailure(t *testing.T) {
	exec := &recordingExecutor{}
	p := NewProcessor("script.sh", exec)
	p.Next(lineQueue(";;"))
	assert.Equal(t, 1, p.LastExitCode())
}

func TestProcessorParseErrorIsLocatedWithFilenameAndLine(t *testing.T) {
	exec := &recordingExecutor{}
	p := NewProcessor("myscript.sh", exec)
	lr := lineQueue("echo hi", ";;")
	_, err := p.Next(lr)
	require.NoError(t, err, "first command should parse cleanly")

	_, err = p.Next(lr)
	require.Error(t, err, "stray ';;' should be a parse error")

	var located *LocatedError
	require.ErrorAs(t, err, &located)
	assert.Equal(t, "myscript.sh", located.Filename)
	assert.Contains(t, err.Error(), "myscript.sh:")
}

func TestProcessorRunStopsAtFirstError(t *testing.T) {
	exec := &recordingExecutor{}
	p := NewProcessor("script.sh", exec)
	err := p.Run(lineQueue("echo one", ";;", "echo two"))
	assert.Error(t, err, "Run should stop at the ';;' parse error")
	assert.Len(t, exec.tops, 1, "the second command should never dispatch")
}

func TestProcessorRunReturnsNilWhenInputExhaustedCleanly(t *testing.T) {
	exec := &recordingExecutor{}
	p := NewProcessor("script.sh", exec)
	err := p.Run(lineQueue("echo one", "echo two"))
	require.NoError(t, err)
	assert.Len(t, exec.tops, 2)
}

type recordingHistory struct {
	commands []string
}

func (h *recordingHistory) Record(command string) { h.commands = append(h.commands, command) }

func TestProcessorRecordsHistoryOnSuccessfulParse(t *testing.T) {
	exec := &recordingExecutor{}
	hist := &recordingHistory{}
	p := NewProcessor("script.sh", exec)
	p.History = hist
	p.Next(lineQueue("echo hi"))
	assert.Equal(t, []string{"echo hi"}, hist.commands)
}

type loopSignalExecutor struct{}

func (loopSignalExecutor) ExecuteTopLevel(*ast.TopLevel) (int, error) {
	return 1, &LoopControlSignal{Kind: "break", Level: 2}
}

func TestProcessorSurfacesLoopControlSignalAsLocatedError(t *testing.T) {
	p := NewProcessor("script.sh", loopSignalExecutor{})
	_, err := p.Next(lineQueue("break 2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "break")
}
