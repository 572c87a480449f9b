// Command querycanvas runs read-only SQL canvases with display directives.
package main

import (
	"os"

	"github.com/okuyamashin/querycanvas/internal/cli"

	// Database drivers register themselves with the adapter registry.
	_ "github.com/okuyamashin/querycanvas/pkg/adapters/duckdb"
	_ "github.com/okuyamashin/querycanvas/pkg/adapters/mysql"
	_ "github.com/okuyamashin/querycanvas/pkg/adapters/postgres"
	_ "github.com/okuyamashin/querycanvas/pkg/adapters/sqlite"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
