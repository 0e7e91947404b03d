package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"slices"
	"strings"
)

// Mode selects whether goldens are compared against or rewritten.
type Mode int

const (
	ModeCheck Mode = iota
	ModeApply
)

// parseMode maps the positional argument to a mode. Only the literal
// "apply" selects apply mode.
func parseMode(arg string) Mode {
	if arg == "apply" {
		return ModeApply
	}
	return ModeCheck
}

func (m Mode) String() string {
	if m == ModeApply {
		return "apply"
	}
	return "check"
}

// Verdict is the outcome of a single fixture.
type Verdict int

const (
	VerdictPass Verdict = iota
	VerdictFail
	VerdictUpdated
)

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "good"
	case VerdictFail:
		return "bad"
	case VerdictUpdated:
		return "updated"
	}
	return fmt.Sprintf("Verdict(%d)", int(v))
}

// Result is the outcome of running one fixture.
type Result struct {
	ID       string
	Expected string // golden text, normalized when the suite normalizes
	Actual   string // compiler output, normalized when the suite normalizes
	Verdict  Verdict
}

// Passed reports whether the result counts towards the passed total.
// Updated goldens count as passing.
func (r *Result) Passed() bool {
	return r.Verdict != VerdictFail
}

// InvocationError is returned when the compiler could not be started.
type InvocationError struct {
	Command []string
	Err     error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("running %s: %v", strings.Join(e.Command, " "), e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// caseRunner runs the fixtures of one suite.
type caseRunner struct {
	suite Suite
	store fixtureStore
	mode  Mode
	log   *slog.Logger
}

// run executes the compiler on one fixture and compares its output with the
// golden file, or replaces the golden file in apply mode.
func (r *caseRunner) run(ctx context.Context, id string) (*Result, error) {
	actual, err := r.invoke(ctx, r.store.inputPath(id))
	if err != nil {
		return nil, err
	}

	golden, err := r.store.readGolden(id)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ID:       id,
		Expected: string(golden),
		Actual:   actual,
	}
	if r.suite.Normalize {
		res.Expected = normalize(res.Expected)
		res.Actual = normalize(res.Actual)
	}

	if r.mode == ModeApply {
		if err := r.store.writeGolden(id, []byte(res.Actual)); err != nil {
			return nil, err
		}
		res.Verdict = VerdictUpdated
		return res, nil
	}

	if res.Actual == res.Expected {
		res.Verdict = VerdictPass
	} else {
		res.Verdict = VerdictFail
	}
	return res, nil
}

// invoke runs the suite command with input appended and returns its
// standard output. The exit status and standard error are not part of the
// result; only a failure to run the process is an error.
func (r *caseRunner) invoke(ctx context.Context, input string) (string, error) {
	args := append(slices.Clone(r.suite.Command[1:]), input)
	cmd := exec.CommandContext(ctx, r.suite.Command[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Debug("invoking compiler", "suite", r.suite.Name, "args", cmd.Args)
	err := cmd.Run()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		r.log.Debug("ignoring exit status", "input", input, "code", exitErr.ExitCode())
		err = nil
	}
	if err != nil {
		return "", &InvocationError{Command: cmd.Args, Err: err}
	}

	if stderr.Len() > 0 {
		r.log.Debug("discarding compiler stderr", "input", input, "bytes", stderr.Len())
	}
	return stdout.String(), nil
}
