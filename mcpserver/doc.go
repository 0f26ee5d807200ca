// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package implements an MCP-compliant server that exposes the
// code synthesis pipeline as tools. It uses the mark3labs/mcp-go library to
// handle the protocol details and provides three tools:
//
//   - execute_sandboxed_code runs user-supplied source in an isolated container
//   - generate_code drives one synthesize-execute-validate retry session
//   - solve_assignment parses a multi-question file and solves every question
//
// The server supports both stdio and HTTP transports as configured by the
// application configuration.
//
// Usage:
//
//	server, err := mcpserver.New(cfg, logger, executor, sessions, batches, registry)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = server.ServeStdio() // or server.ServeHTTP()
package mcpserver
