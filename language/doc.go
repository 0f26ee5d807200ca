// Package language defines the closed set of runtimes the agent can
// generate, execute, and validate code for.
//
// A single registry entry carries everything a runtime needs across the
// pipeline: detection aliases, the container image, the canonical source
// file name, the container run command, and the validation tool battery.
// Adding a language means registering one complete Spec; detection,
// execution, and validation all consult the same entry.
package language
