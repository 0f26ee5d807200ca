// Package llm adapts the external generative-model collaborators.
//
// Synthesis turns a problem statement into candidate source code;
// critique reviews a candidate and either authorizes it with the PASS
// sentinel or returns failing feedback. Both are modeled strictly as
// request/response capabilities over an OpenAI-compatible chat API; the
// model's internal behavior is not specified here.
package llm
