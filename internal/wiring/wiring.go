// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/pack/internal/adapters/config"
	_ "go.trai.ch/pack/internal/adapters/dts"
	_ "go.trai.ch/pack/internal/adapters/esbuild"
	_ "go.trai.ch/pack/internal/adapters/fs"
	_ "go.trai.ch/pack/internal/adapters/logger"
	_ "go.trai.ch/pack/internal/adapters/metrics"
	_ "go.trai.ch/pack/internal/adapters/shell"
	_ "go.trai.ch/pack/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/pack/internal/app"
	_ "go.trai.ch/pack/internal/engine/orchestrator"
)
