package sandbox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/forgeworks/codeforge/language"
)

// pingTimeout bounds the runtime availability check at construction.
const pingTimeout = 10 * time.Second

// NewExecutor creates the sandbox executor for the configured backend.
// Container backends are pinged immediately: an unreachable runtime is an
// infrastructure failure that aborts construction, since no job could
// execute.
func NewExecutor(logger *zap.Logger, config *Config, registry *language.Registry, backend string, enableLocal bool) (Executor, error) {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	switch backend {
	case "docker":
		executor := NewDockerExecutor(logger, config, registry)
		if err := executor.Ping(ctx); err != nil {
			return nil, err
		}
		return executor, nil
	case "podman":
		executor := NewPodmanExecutor(logger, config, registry)
		if err := executor.Ping(ctx); err != nil {
			return nil, err
		}
		return executor, nil
	case "local":
		if !enableLocal {
			return nil, fmt.Errorf("local backend requested but not enabled; set sandbox.enable_local_backend")
		}
		return NewLocalExecutor(logger, config, registry), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}
