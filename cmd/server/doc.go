// Package main is the entry point for the Codeforge MCP server.
//
// The Codeforge server implements a Model Context Protocol (MCP) server
// that turns natural-language problem statements into validated programs:
// an LLM synthesizes candidate code, isolated containers execute it, and
// per-language tool batteries judge it, with failing diagnostics fed back
// into bounded retry. The server supports both stdio and HTTP transports.
//
// The application uses Uber's fx framework for dependency injection and
// lifecycle management, with zap for structured logging and viper for
// configuration.
package main
