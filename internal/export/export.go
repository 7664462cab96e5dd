// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/zrxarchit/codearc-tui/internal/model"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for session exporters.
type Exporter interface {
	// Export converts a session to the target format and returns the
	// content.
	Export(session *model.ChatSession) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g. ".txt").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	// Default: current working directory.
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       ".",
		OpenAfterExport: false,
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports a session to a file using the given exporter.
// The filename derives from the session title; if that name is taken, a
// numeric suffix is probed until a free one is found rather than
// overwriting. Returns the output file path.
func ExportToFile(session *model.ChatSession, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(session)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	base := sanitizeFilename(session.Title)
	outputPath, err := freePath(opts.OutputDir, base, exporter.FileExtension())
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		if err := openFile(outputPath); err != nil {
			// Non-fatal, the file was still created.
			fmt.Fprintf(os.Stderr, "Warning: could not open file: %v\n", err)
		}
	}

	return outputPath, nil
}

// freePath probes "<base><ext>", then "<base> (1)<ext>", "<base> (2)<ext>"
// and so on until an unused name is found.
func freePath(dir, base, ext string) (string, error) {
	for i := 0; ; i++ {
		name := base + ext
		if i > 0 {
			name = fmt.Sprintf("%s (%d)%s", base, i, ext)
		}
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		} else if err != nil {
			return "", fmt.Errorf("probe filename: %w", err)
		}
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in
// filenames on either Windows or Unix.
func sanitizeFilename(s string) string {
	maxLen := 50
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := []rune{}
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "chat"
	}
	return string(result)
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
