// harness is a golden-master regression runner for a command-line compiler.
//
// For every suite it lists the `<stem>.in` fixtures in the suite root, runs
// the compiler on each one, and compares the compiler's standard output
// against the stored `<stem>.out` transcript.
//
// Usage:
//
//	harness [flags] [apply]
//
// Without arguments every fixture is checked and mismatches are printed as a
// diff of the expected (` - |`) and actual (` + |`) text:
//
//	[good] add
//	[bad] sub
//
//	 - |==== Diagnostics ====
//	 - |5 - 2
//	 - |
//
//	 + |==== Diagnostics ====
//	 + |5 - 3
//	 + |
//
//	Passed: 1, failed: 1, total: 2
//
// With the literal argument apply, the golden files are rewritten from the
// current compiler output instead:
//
//	harness apply
//
// Suites are read from a YAML file with --config:
//
//	suites:
//	  - name: parsing
//	    root: tests/parsing
//	    command: [build/source/main/cringe, --std, "1", --no-links]
//	  - name: legacy
//	    root: tests/legacy.txtar
//	    command: [build/legacy/cringe, --std, "1"]
//	    normalize: true
//
// A root ending in .txtar is an archive whose members are the fixtures.
//
// The exit status is 0 when every fixture passed, 1 when any fixture failed
// and 2 when the run was aborted.
package main
