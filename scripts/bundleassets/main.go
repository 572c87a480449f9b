// Package main minifies the workbench static assets in place.
//
// The workbench embeds whatever is under internal/workbench/static at
// compile time, so run this right before building a release binary. The
// minified output is a build artifact, not something to commit.
//
// Usage:
//
//	go run ./scripts/bundleassets [-dir internal/workbench/static]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
)

func main() {
	dir := flag.String("dir", "internal/workbench/static", "directory holding the assets to minify")
	flag.Parse()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Failed to read asset directory: %v", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		var loader api.Loader
		switch filepath.Ext(entry.Name()) {
		case ".js":
			loader = api.LoaderJS
		case ".css":
			loader = api.LoaderCSS
		default:
			continue
		}

		path := filepath.Join(*dir, entry.Name())
		if err := minifyFile(path, loader); err != nil {
			log.Fatalf("Failed to minify %s: %v", path, err)
		}
	}
}

func minifyFile(path string, loader api.Loader) error {
	src, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the -dir flag
	if err != nil {
		return err
	}

	result := api.Transform(string(src), api.TransformOptions{
		Loader:            loader,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		Target:            api.ES2020,
	})

	if len(result.Errors) > 0 {
		var errMsg string
		for _, e := range result.Errors {
			if e.Location != nil {
				errMsg += fmt.Sprintf("%s:%d:%d: %s\n", path, e.Location.Line, e.Location.Column, e.Text)
				continue
			}
			errMsg += e.Text + "\n"
		}
		return fmt.Errorf("esbuild errors:\n%s", errMsg)
	}

	if err := os.WriteFile(path, result.Code, 0o644); err != nil { //nolint:gosec // G306: static assets are world-readable
		return err
	}

	log.Printf("Minified %s: %d -> %d bytes", path, len(src), len(result.Code))
	return nil
}
