// Package enum walks scan targets and feeds their lines to the engine.
package enum

import (
	"context"

	"github.com/praetorian-inc/policyscan/pkg/types"
)

// LineFunc receives one line of a file. lineNumber is 1-based and lc holds
// the configured number of surrounding lines. It may be called from several
// goroutines at once; lines of a single file arrive in order.
type LineFunc func(path string, lineNumber int, line string, lc *types.LineContext) error

// Enumerator discovers content to scan from a source.
type Enumerator interface {
	// Enumerate yields every line of every eligible file.
	Enumerate(ctx context.Context, fn LineFunc) error
}

// Config for enumeration.
type Config struct {
	// Root is the starting path for enumeration. It may be a single file.
	Root string

	// IncludeHidden includes hidden files/directories (starting with .).
	IncludeHidden bool

	// MaxFileSize is the maximum file size to process (0 = no limit).
	MaxFileSize int64

	// FollowSymlinks follows symbolic links.
	FollowSymlinks bool

	// Exclude holds doublestar globs matched against the slash-separated path
	// relative to Root and against the base name.
	Exclude []string

	// ContextLines is the number of lines before and after each line handed
	// to the callback.
	ContextLines int

	// Workers is the number of parallel file readers (0 = NumCPU).
	Workers int
}
