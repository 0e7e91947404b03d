package main

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const mixedFixtures = `
-- c.in --
3
-- c.out --
==== Echo ====
3
-- a.in --
1
-- a.out --
==== Echo ====
1
-- b.in --
2
-- b.out --
==== Echo ====
two
`

func runFixtures(t *testing.T, root string, normalize bool, links bool, mode Mode) (Summary, string, error) {
	t.Helper()
	var buf bytes.Buffer
	s := Suite{Name: "test", Root: root, Command: fakeCommand(links), Normalize: normalize}
	sum, err := runSuite(context.Background(), s, mode, newReporter(&buf), discardLogger())
	return sum, buf.String(), err
}

func TestRunSuiteCounts(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir, mixedFixtures)

	sum, out, err := runFixtures(t, dir, false, false, ModeCheck)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Summary{Passed: 2, Failed: 1, Total: 3}, sum); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}

	var tags []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "[") {
			tags = append(tags, line)
		}
	}
	if diff := cmp.Diff([]string{"[good] a", "[bad] b", "[good] c"}, tags); diff != "" {
		t.Errorf("report order mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasSuffix(out, "Passed: 2, failed: 1, total: 3\n") {
		t.Errorf("report does not end with the summary:\n%s", out)
	}
}

func TestRunSuiteEmpty(t *testing.T) {
	sum, out, err := runFixtures(t, t.TempDir(), false, false, ModeCheck)
	if err != nil {
		t.Fatal(err)
	}
	if sum != (Summary{}) {
		t.Errorf("Summary = %+v, want zero", sum)
	}
	if out != "Passed: 0, failed: 0, total: 0\n" {
		t.Errorf("report = %q", out)
	}
}

func TestRunSuiteCheckLeavesGoldensAlone(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir, mixedFixtures)
	before := readFile(t, filepath.Join(dir, "b.out"))

	if _, _, err := runFixtures(t, dir, false, false, ModeCheck); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(dir, "b.out")); got != before {
		t.Errorf("check mode modified b.out: %q", got)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir, mixedFixtures)

	sum, out, err := runFixtures(t, dir, true, true, ModeApply)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Summary{Passed: 3, Total: 3}, sum); diff != "" {
		t.Errorf("apply Summary mismatch (-want +got):\n%s", diff)
	}
	if strings.Contains(out, "[bad]") {
		t.Errorf("apply mode reported a failure:\n%s", out)
	}

	first := map[string]string{}
	for _, id := range []string{"a", "b", "c"} {
		first[id] = readFile(t, filepath.Join(dir, id+".out"))
	}
	if got, want := first["b"], "==== Echo ====\n2\n"; got != want {
		t.Errorf("b.out after apply = %q, want %q", got, want)
	}

	if _, _, err := runFixtures(t, dir, true, true, ModeApply); err != nil {
		t.Fatal(err)
	}
	for id, want := range first {
		if got := readFile(t, filepath.Join(dir, id+".out")); got != want {
			t.Errorf("%s.out changed on second apply: %q, want %q", id, got, want)
		}
	}

	sum, out, err = runFixtures(t, dir, true, true, ModeCheck)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Failed != 0 || sum.Passed != 3 {
		t.Errorf("check after apply = %+v, report:\n%s", sum, out)
	}
}

func TestRunSuiteMissingGolden(t *testing.T) {
	for _, mode := range []Mode{ModeCheck, ModeApply} {
		t.Run(mode.String(), func(t *testing.T) {
			dir := t.TempDir()
			writeFixtures(t, dir, "-- div.in --\n6 / 2\n")

			_, out, err := runFixtures(t, dir, false, false, mode)
			if !errors.Is(err, fs.ErrNotExist) {
				t.Fatalf("runSuite() error = %v, want fs.ErrNotExist", err)
			}
			if out != "" {
				t.Errorf("report = %q, want nothing", out)
			}
			if _, err := os.Stat(filepath.Join(dir, "div.out")); !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("div.out was created")
			}
		})
	}
}

func TestRunSuiteInvocationError(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string) string
	}{
		{
			name: "missing",
			setup: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "no-such-compiler")
			},
		},
		{
			name: "not executable",
			setup: func(t *testing.T, dir string) string {
				path := filepath.Join(dir, "cringe")
				if err := os.WriteFile(path, []byte("#!/bin/sh\necho hi\n"), 0644); err != nil {
					t.Fatal(err)
				}
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			root := filepath.Join(dir, "fixtures")
			writeFixtures(t, root, "-- add.in --\n-- add.out --\n")

			s := Suite{Name: "test", Root: root, Command: []string{tt.setup(t, dir)}}
			var buf bytes.Buffer
			_, err := runSuite(context.Background(), s, ModeCheck, newReporter(&buf), discardLogger())

			var invErr *InvocationError
			if !errors.As(err, &invErr) {
				t.Fatalf("runSuite() error = %v, want *InvocationError", err)
			}
			if got := invErr.Command[len(invErr.Command)-1]; got != filepath.Join(root, "add.in") {
				t.Errorf("InvocationError.Command ends with %q, want the fixture input", got)
			}
			if buf.Len() != 0 {
				t.Errorf("report = %q, want nothing", buf.String())
			}
		})
	}
}

func TestRunSuiteArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.txtar")
	if err := os.WriteFile(path, []byte(mixedFixtures), 0644); err != nil {
		t.Fatal(err)
	}

	sum, _, err := runFixtures(t, path, true, true, ModeCheck)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Summary{Passed: 2, Failed: 1, Total: 3}, sum); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}

	if _, _, err := runFixtures(t, path, true, true, ModeApply); err != nil {
		t.Fatal(err)
	}
	sum, out, err := runFixtures(t, path, true, true, ModeCheck)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Failed != 0 {
		t.Errorf("check after apply failed:\n%s", out)
	}
	if got := readFile(t, path); !strings.Contains(got, "-- b.out --\n==== Echo ====\n2\n") {
		t.Errorf("archive not rewritten:\n%s", got)
	}
}

func TestRunSuiteArchiveOutputWithoutNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.txtar")
	archive := "-- x.in --\n#nonl\n-- x.out --\nstale\n"
	if err := os.WriteFile(path, []byte(archive), 0644); err != nil {
		t.Fatal(err)
	}

	_, out, err := runFixtures(t, path, true, true, ModeApply)
	if err == nil || !strings.Contains(err.Error(), "no trailing newline") {
		t.Fatalf("apply error = %v, want trailing newline error", err)
	}
	if strings.Contains(out, "[updated]") {
		t.Errorf("apply reported an update it could not store:\n%s", out)
	}
	if got := readFile(t, path); got != archive {
		t.Errorf("archive rewritten:\n%s", got)
	}

	// The same output in a directory suite round-trips.
	dir := t.TempDir()
	writeFixtures(t, dir, archive)
	if _, _, err := runFixtures(t, dir, true, true, ModeApply); err != nil {
		t.Fatal(err)
	}
	sum, out, err := runFixtures(t, dir, true, true, ModeCheck)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Failed != 0 {
		t.Errorf("check after apply failed:\n%s", out)
	}
}

func TestRunStopsAtFirstFatalSuite(t *testing.T) {
	good := t.TempDir()
	writeFixtures(t, good, mixedFixtures)
	broken := t.TempDir()
	writeFixtures(t, broken, "-- div.in --\n")

	cfg := runConfig{
		suites: []Suite{
			{Name: "first", Root: good, Command: fakeCommand(false)},
			{Name: "broken", Root: broken, Command: fakeCommand(false)},
			{Name: "never", Root: good, Command: fakeCommand(false)},
		},
	}
	var buf bytes.Buffer
	failed, err := run(context.Background(), cfg, &buf, discardLogger())
	if err == nil || !strings.Contains(err.Error(), "suite broken: fixture div") {
		t.Fatalf("run() error = %v, want failure in suite broken", err)
	}
	if failed != 1 {
		t.Errorf("run() failed = %d, want 1", failed)
	}
	if n := strings.Count(buf.String(), "Passed:"); n != 1 {
		t.Errorf("got %d summaries, want 1:\n%s", n, buf.String())
	}
}
