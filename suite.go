package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// runConfig is the immutable description of one harness run.
type runConfig struct {
	suites []Suite
	mode   Mode
}

// run executes every suite in order and returns the number of failed
// fixtures. The first fatal error stops the run.
func run(ctx context.Context, cfg runConfig, w io.Writer, log *slog.Logger) (int, error) {
	rep := newReporter(w)
	failed := 0
	for _, s := range cfg.suites {
		sum, err := runSuite(ctx, s, cfg.mode, rep, log)
		if err != nil {
			return failed, err
		}
		failed += sum.Failed
	}
	return failed, nil
}

// runSuite runs every fixture of s in lexicographic order and prints the
// summary. On error no summary is printed.
func runSuite(ctx context.Context, s Suite, mode Mode, rep *reporter, log *slog.Logger) (sum Summary, err error) {
	if len(s.Command) == 0 {
		return Summary{}, fmt.Errorf("suite %s: no command", s.Name)
	}

	store, err := openStore(s.Root)
	if err != nil {
		return Summary{}, fmt.Errorf("suite %s: %w", s.Name, err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("suite %s: %w", s.Name, cerr)
		}
	}()

	ids, err := store.fixtures()
	if err != nil {
		return Summary{}, fmt.Errorf("suite %s: %w", s.Name, err)
	}
	log.Debug("running suite", "suite", s.Name, "root", s.Root, "mode", mode, "fixtures", len(ids))

	runner := &caseRunner{suite: s, store: store, mode: mode, log: log}
	for _, id := range ids {
		res, err := runner.run(ctx, id)
		if err != nil {
			return Summary{}, fmt.Errorf("suite %s: fixture %s: %w", s.Name, id, err)
		}
		rep.result(res)
		sum.add(res)
	}

	rep.summary(sum)
	return sum, nil
}
