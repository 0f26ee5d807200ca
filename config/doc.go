// Package config provides application configuration management.
//
// The config package handles loading and validation of the application's
// configuration from YAML files and CODEFORGE_* environment variables. It
// covers server settings, sandbox and validation resource envelopes, the
// synthesis provider, retry session tunables, and the batch worker pool.
//
// Usage:
//
//	cfg, err := config.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Server transport: %s\n", cfg.Server.Transport)
package config
