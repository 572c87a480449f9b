// Package canvas loads .sql canvas files and their display directives.
//
// A canvas is a plain SQL file whose leading /** */ comment may carry
// display directives. The file stays valid SQL for any other tool; this
// package only reads, never rewrites.
package canvas

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/okuyamashin/querycanvas/pkg/directive"
)

// namePattern matches a title comment, e.g. -- name: Monthly Sales
var namePattern = regexp.MustCompile(`(?m)^--[ \t]*name:[ \t]*(.+)$`)

// Canvas is one loaded .sql file.
type Canvas struct {
	// Name is the path relative to the canvases dir, slash-separated,
	// without the .sql extension. Empty for files loaded by direct path.
	Name string

	// Title is the first -- name: comment, or the file's base name.
	Title string

	// Path is the absolute file path.
	Path string

	// SQL is the full file content, directive comment included. The
	// server sees it unchanged; directives ride along as a comment.
	SQL string

	// Options holds the parsed display directives (never nil).
	Options *directive.Options

	// Hash identifies the content revision.
	Hash string

	ModTime time.Time
}

// Load reads and parses one canvas file.
func Load(path string) (*Canvas, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve canvas path: %w", err)
	}

	content, err := os.ReadFile(absPath) //nolint:gosec // G304: path comes from config or CLI args
	if err != nil {
		return nil, fmt.Errorf("failed to read canvas %s: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat canvas %s: %w", path, err)
	}

	sql := string(content)
	c := &Canvas{
		Path:    absPath,
		SQL:     sql,
		Options: directive.Parse(sql),
		Hash:    computeHash(sql),
		ModTime: info.ModTime(),
	}
	c.Title = extractTitle(sql, absPath)
	return c, nil
}

// extractTitle returns the first -- name: comment, or the base file name.
func extractTitle(sql, path string) string {
	if m := namePattern.FindStringSubmatch(sql); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return title
		}
	}
	return strings.TrimSuffix(filepath.Base(path), ".sql")
}

// computeHash generates a SHA256 hash of content.
func computeHash(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:8]) // Use first 8 bytes for brevity
}
