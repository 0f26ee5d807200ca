// Package assignment turns one submitted assignment file into solved
// questions.
//
// Parsing splits the file into shared metadata (subject, assignment
// number, student identity fields) and an ordered list of independent
// questions, each with its own detected target language and requirement
// list. The batch driver then runs one retry session per question,
// concurrently up to a worker limit, and collects the results in
// question order for the external document renderer.
package assignment
