// Package sandbox provides secure execution of untrusted, generated code.
//
// Each invocation writes the candidate source to a fresh scratch
// directory and launches one single-use container with no network access,
// a hard memory ceiling, a CPU ceiling, and a wall-clock timeout. The
// scratch directory is mounted read-only for execution; validation tools
// reuse the same primitive with a read-write mount. Supported backends
// are Docker, Podman, and (for development only) direct local execution.
//
// Faults inside a run are absorbed into a failed ExecuteResult rather
// than propagated; only an unreachable container runtime is fatal, and
// that is surfaced at construction time.
package sandbox
