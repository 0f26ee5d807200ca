// Package agent drives the bounded synthesize-execute-validate retry
// loop for a single problem.
//
// One session sequences the synthesis collaborator, an optional critique
// pass, sandboxed execution, and the validation battery, feeding each
// failure's diagnostics back into the next synthesis attempt. The
// iteration ceiling always wins: an exhausted session terminates with
// the best candidate it produced, never with an empty result.
package agent
