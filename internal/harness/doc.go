// Package harness runs scripted checks against a library whose internal
// invariant checks abort with fatal faults, and survives those faults.
//
// Ordinary test drivers die when the code under test panics. This harness
// wraps every check in a fault interceptor: a panic raised while a check is
// armed is consumed, converted into a single recorded failure naming the
// fault class, and the run continues with the next check. Statements (side
// effects between checks) are not protected: a fault outside a check is a
// genuine crash.
//
// # Script Format
//
// A run is a Script: named Phases, each an ordered list of Steps. Steps are
// built with three constructors:
//
//	harness.State("f = forth.New(...)", func() { ... })   // side effect
//	harness.Check("f.Pop() == 4", func() bool { ... })     // protected check
//	harness.Must("f != nil", func() bool { ... })          // mandatory check
//
// A failed Check records a failure and continues. A failed Must stops the
// run immediately: the summary of checks completed so far is reported and
// Run returns a *MustError, which the CLI maps to a non-zero exit.
//
// Step constructors capture their caller's file and line so failure report
// lines point at the step's declaration site.
//
// # Scenario Files
//
// Scripts can also be loaded from YAML scenario files:
//
//	name: arithmetic
//	description: "basic arithmetic words"
//	setup:
//	  - eval: ": double 2 * ;"
//	checks:
//	  - eval: "21 double"
//	    expect: [42]
//	  - eval: "bogus-word"
//	    expect_error: true
//
// Each check evaluates a source string on a fresh interpreter shared across
// the scenario and pops expected values top-first. Checks with must: true
// become mandatory checks.
//
// # Concurrency
//
// The harness is strictly single-threaded. One Runner owns one Interceptor,
// one Ledger and one Reporter; the armed flag is exclusive to the check
// currently executing. Nothing here is safe for concurrent use.
package harness
