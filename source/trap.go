package source

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// signalTable resolves POSIX signal names to their host-specific numbers
// via golang.org/x/sys/unix, grounded on
// original_source/psh/core/trap_manager.py's name/number table but reading
// the numbers off the running OS instead of a hand-maintained constant
// list (spec.md §B domain-stack entry).
var signalTable = map[string]int{
	"HUP": int(unix.SIGHUP), "INT": int(unix.SIGINT), "QUIT": int(unix.SIGQUIT),
	"ILL": int(unix.SIGILL), "TRAP": int(unix.SIGTRAP), "ABRT": int(unix.SIGABRT),
	"BUS": int(unix.SIGBUS), "FPE": int(unix.SIGFPE), "KILL": int(unix.SIGKILL),
	"USR1": int(unix.SIGUSR1), "SEGV": int(unix.SIGSEGV), "USR2": int(unix.SIGUSR2),
	"PIPE": int(unix.SIGPIPE), "ALRM": int(unix.SIGALRM), "TERM": int(unix.SIGTERM),
	"CHLD": int(unix.SIGCHLD), "CONT": int(unix.SIGCONT), "STOP": int(unix.SIGSTOP),
	"TSTP": int(unix.SIGTSTP), "TTIN": int(unix.SIGTTIN), "TTOU": int(unix.SIGTTOU),
	"URG": int(unix.SIGURG), "XCPU": int(unix.SIGXCPU), "XFSZ": int(unix.SIGXFSZ),
	"VTALRM": int(unix.SIGVTALRM), "PROF": int(unix.SIGPROF), "WINCH": int(unix.SIGWINCH),
	"IO": int(unix.SIGIO), "SYS": int(unix.SIGSYS),
}

var numberToName = func() map[int]string {
	out := make(map[int]string, len(signalTable))
	for name, num := range signalTable {
		out[num] = name
	}
	return out
}()

// pseudoSignals are trap handles not tied to a real OS signal (spec.md
// Glossary "Pseudo-signal").
var pseudoSignals = map[string]bool{"EXIT": true, "DEBUG": true, "ERR": true}

// resolveSignal canonicalizes a user-supplied signal spec — a bare name
// ("HUP"), a "SIG"-prefixed name ("SIGHUP"), a pseudo-signal name, or a
// decimal signal number as a string (supplemented per SPEC_FULL.md §C.5,
// grounded on trap_manager.py accepting numeric strings) — to its
// canonical bare name, or reports it unresolvable.
func resolveSignal(spec string) (string, bool) {
	upper := strings.ToUpper(spec)
	if pseudoSignals[upper] {
		return upper, true
	}
	upper = strings.TrimPrefix(upper, "SIG")
	if _, ok := signalTable[upper]; ok {
		return upper, true
	}
	if n, err := strconv.Atoi(spec); err == nil {
		if name, ok := numberToName[n]; ok {
			return name, true
		}
	}
	return "", false
}

// ActionRunner is the narrow executor collaborator a TrapTable hands
// trap action source text to (spec.md §4.13 "delegates the action text
// to the executor collaborator with history disabled").
type ActionRunner interface {
	RunTrapAction(source string) (exitCode int, err error)
}

// TrapTable is the process-wide trap_handlers data model of spec.md
// "Trap table (data model only)": a mapping from canonical signal name
// to action text, with no signal-delivery mechanism of its own.
type TrapTable struct {
	handlers     map[string]string
	runner       ActionRunner
	lastExitCode int
}

// NewTrapTable builds an empty TrapTable that delegates trap action
// execution to runner.
func NewTrapTable(runner ActionRunner) *TrapTable {
	return &TrapTable{handlers: make(map[string]string), runner: runner}
}

// SetTrap validates every signal spec in signals and then sets their
// action: "-" resets (unsets) the trap, any other string (including
// empty, which means ignore) becomes the stored action. Returns 0 on
// success, 1 if any signal spec was invalid — none of the specs are
// applied in that case, mirroring set_trap's validate-then-apply shape.
func (t *TrapTable) SetTrap(action string, signals []string) (exitCode int, invalid string) {
	canonical := make([]string, len(signals))
	for i, s := range signals {
		name, ok := resolveSignal(s)
		if !ok {
			return 1, s
		}
		canonical[i] = name
	}
	for _, name := range canonical {
		if action == "-" {
			delete(t.handlers, name)
		} else {
			t.handlers[name] = action
		}
	}
	return 0, ""
}

// ShowTraps returns "trap -- <quoted-action> <NAME>" lines for every
// currently-set trap, filtered to signals if non-empty, in sorted
// signal order.
func (t *TrapTable) ShowTraps(signals []string) []string {
	names := signals
	if len(names) == 0 {
		for name := range t.handlers {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	var out []string
	for _, raw := range names {
		name, ok := resolveSignal(raw)
		if !ok {
			continue
		}
		action, set := t.handlers[name]
		if !set {
			continue
		}
		out = append(out, fmt.Sprintf("trap -- %s %s", strconv.Quote(action), name))
	}
	return out
}

// SignalInfo is one row of `trap -l`'s listing.
type SignalInfo struct {
	Name   string
	Number int
}

// ListSignals returns every known signal name with its numeric value,
// including the pseudo-signals (whose Number is 0), sorted by number
// then name.
func ListSignals() []SignalInfo {
	var out []SignalInfo
	for name, num := range signalTable {
		out = append(out, SignalInfo{Name: name, Number: num})
	}
	for _, name := range []string{"EXIT", "DEBUG", "ERR"} {
		out = append(out, SignalInfo{Name: name, Number: 0})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ExecuteTrap looks up name's action and, if set and non-empty, runs it
// through the runner; absent or empty actions are a no-op. For signals
// other than EXIT, the processor's last exit code is preserved across
// the trap's own execution.
func (t *TrapTable) ExecuteTrap(name string) error {
	action, ok := t.handlers[name]
	if !ok || action == "" {
		return nil
	}
	saved := t.lastExitCode
	_, err := t.runner.RunTrapAction(action)
	if err != nil {
		logger.Warn("trap: error executing trap for " + name + ": " + err.Error())
	}
	if name != "EXIT" {
		t.lastExitCode = saved
	}
	return err
}

// ExecuteExitTrap runs the EXIT pseudo-signal's trap, if any.
func (t *TrapTable) ExecuteExitTrap() error { return t.ExecuteTrap("EXIT") }

// ExecuteDebugTrap runs the DEBUG pseudo-signal's trap, if any.
func (t *TrapTable) ExecuteDebugTrap() error { return t.ExecuteTrap("DEBUG") }

// ExecuteErrTrap runs the ERR pseudo-signal's trap, but only when
// exitCode is non-zero.
func (t *TrapTable) ExecuteErrTrap(exitCode int) error {
	if exitCode == 0 {
		return nil
	}
	return t.ExecuteTrap("ERR")
}

// SetLastExitCode records the processor's current last exit code so
// ExecuteTrap can restore it around a non-EXIT trap's own execution.
func (t *TrapTable) SetLastExitCode(code int) { t.lastExitCode = code }
