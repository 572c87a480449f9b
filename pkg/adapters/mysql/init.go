// Package mysql provides a MySQL database adapter for QueryCanvas.
//
// This file registers the MySQL adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/okuyamashin/querycanvas/pkg/adapters/mysql"
package mysql

import (
	"log/slog"

	"github.com/okuyamashin/querycanvas/pkg/adapter"
)

func init() {
	adapter.Register("mysql", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
