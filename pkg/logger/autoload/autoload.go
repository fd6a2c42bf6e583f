// Package autoload initializes the global logger from LOG_* environment
// variables. Blank-import it from main.
package autoload

import (
	configx "github.com/waritnan/marque/pkg/config"
	logx "github.com/waritnan/marque/pkg/logger"
)

func init() {
	cfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*cfg)
}
