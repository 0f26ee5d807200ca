// Package validation judges candidate source code with a per-language
// battery of static-analysis, style, and security tools.
//
// Each tool runs in its own short-lived container with the same isolation
// posture as execution, but with the source directory mounted read-write
// so compilers can emit artifacts. Tool output is escalated into
// diagnostics by a keyword heuristic; the verdict passes iff no tool
// escalated anything. A crashing tool becomes a diagnostic itself and
// never blocks judgment of the remaining tools.
//
// The keyword heuristic is a textual contract with the underlying tools
// and is deliberately pluggable: verdicts are not guaranteed stable
// across tool-version changes.
package validation
