package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	actions []string
	code    int
	err     error
}

func (r *recordingRunner) RunTrapAction(action string) (int, error) {
	r.actions = append(r.actions, action)
	return r.code, r.err
}

func TestSetTrapAcceptsBareAndSigPrefixedNames(t *testing.T) {
	runner := &recordingRunner{}
	tt := NewTrapTable(runner)
	code, _ := tt.SetTrap("echo hup", []string{"HUP"})
	require.Equal(t, 0, code)
	code, _ = tt.SetTrap("echo int", []string{"SIGINT"})
	require.Equal(t, 0, code)
	assert.Len(t, tt.ShowTraps(nil), 2)
}

func TestSetTrapAcceptsPseudoSignals(t *testing.T) {
	tt := NewTrapTable(&recordingRunner{})
	code, _ := tt.SetTrap("cleanup", []string{"EXIT"})
	assert.Equal(t, 0, code)
}

func TestSetTrapAcceptsNumericSignalSpec(t *testing.T) {
	tt := NewTrapTable(&recordingRunner{})
	// SIGINT is 2 on every platform x/sys/unix supports.
	code, _ := tt.SetTrap("echo int", []string{"2"})
	require.Equal(t, 0, code)
	assert.Len(t, tt.ShowTraps([]string{"INT"}), 1)
}

func TestSetTrapRejectsUnknownSignal(t *testing.T) {
	tt := NewTrapTable(&recordingRunner{})
	code, bad := tt.SetTrap("echo x", []string{"NOTASIGNAL"})
	assert.Equal(t, 1, code)
	assert.Equal(t, "NOTASIGNAL", bad)
}

func TestSetTrapRejectsAllSpecsWhenAnyIsInvalid(t *testing.T) {
	tt := NewTrapTable(&recordingRunner{})
	tt.SetTrap("echo x", []string{"NOTASIGNAL", "HUP"})
	assert.Empty(t, tt.ShowTraps(nil), "none of the batch should apply when one spec is invalid")
}

func TestSetTrapDashResetsHandler(t *testing.T) {
	tt := NewTrapTable(&recordingRunner{})
	tt.SetTrap("echo hup", []string{"HUP"})
	tt.SetTrap("-", []string{"HUP"})
	assert.Empty(t, tt.ShowTraps([]string{"HUP"}))
}

func TestShowTrapsFormatsQuotedActionAndName(t *testing.T) {
	tt := NewTrapTable(&recordingRunner{})
	tt.SetTrap(`echo "bye"`, []string{"TERM"})
	lines := tt.ShowTraps(nil)
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "trap -- "))
	assert.True(t, strings.HasSuffix(lines[0], " TERM"))
}

func TestListSignalsIncludesPseudoSignalsWithZeroNumber(t *testing.T) {
	infos := ListSignals()
	var exit *SignalInfo
	for i := range infos {
		if infos[i].Name == "EXIT" {
			exit = &infos[i]
		}
	}
	require.NotNil(t, exit, "ListSignals should include EXIT")
	assert.Equal(t, 0, exit.Number)
}

func TestListSignalsSortedByNumberThenName(t *testing.T) {
	infos := ListSignals()
	for i := 1; i < len(infos); i++ {
		prev, cur := infos[i-1], infos[i]
		assert.LessOrEqual(t, prev.Number, cur.Number, "ListSignals should be sorted by number")
		if prev.Number == cur.Number {
			assert.LessOrEqual(t, prev.Name, cur.Name, "equal-number entries should be sorted by name")
		}
	}
}

func TestExecuteTrapRunsActionThroughRunner(t *testing.T) {
	runner := &recordingRunner{}
	tt := NewTrapTable(runner)
	tt.SetTrap("echo bye", []string{"TERM"})
	require.NoError(t, tt.ExecuteTrap("TERM"))
	assert.Equal(t, []string{"echo bye"}, runner.actions)
}

func TestExecuteTrapNoopWhenUnset(t *testing.T) {
	runner := &recordingRunner{}
	tt := NewTrapTable(runner)
	require.NoError(t, tt.ExecuteTrap("TERM"))
	assert.Empty(t, runner.actions)
}

func TestExecuteTrapPreservesLastExitCodeForNonExitSignal(t *testing.T) {
	runner := &recordingRunner{}
	tt := NewTrapTable(runner)
	tt.SetTrap("echo bye", []string{"TERM"})
	tt.SetLastExitCode(42)
	tt.ExecuteTrap("TERM")
	assert.Equal(t, 42, tt.lastExitCode)
}

func TestExecuteExitTrapRunsExitHandler(t *testing.T) {
	runner := &recordingRunner{}
	tt := NewTrapTable(runner)
	tt.SetTrap("cleanup", []string{"EXIT"})
	require.NoError(t, tt.ExecuteExitTrap())
	assert.Equal(t, []string{"cleanup"}, runner.actions)
}

func TestExecuteErrTrapOnlyRunsOnNonZeroExit(t *testing.T) {
	runner := &recordingRunner{}
	tt := NewTrapTable(runner)
	tt.SetTrap("echo err", []string{"ERR"})
	require.NoError(t, tt.ExecuteErrTrap(0))
	assert.Empty(t, runner.actions)
	require.NoError(t, tt.ExecuteErrTrap(1))
	assert.Len(t, runner.actions, 1)
}
