package scanner

import (
	"path/filepath"
	"strings"
)

// textExtensions is the set of file extensions recognized as ingestible
// text or source code. Matching is case-insensitive.
var textExtensions = map[string]bool{
	// Source code
	".go": true, ".py": true, ".pyi": true,
	".ts": true, ".tsx": true, ".mts": true,
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".java": true, ".rs": true, ".rb": true, ".php": true,
	".c": true, ".h": true, ".cpp": true, ".cc": true, ".cxx": true,
	".hpp": true, ".hxx": true, ".cs": true,
	".swift": true, ".kt": true, ".kts": true, ".scala": true, ".sc": true,
	".sh": true, ".bash": true, ".zsh": true,
	".sql": true, ".proto": true, ".lua": true, ".r": true, ".ex": true,
	".exs": true, ".erl": true, ".hs": true, ".zig": true, ".dart": true,
	// Markup and config
	".md": true, ".markdown": true, ".rst": true, ".txt": true, ".text": true,
	".html": true, ".htm": true, ".css": true, ".scss": true, ".sass": true,
	".less": true, ".xml": true, ".svg": true,
	".yaml": true, ".yml": true, ".json": true, ".toml": true, ".ini": true,
	".cfg": true, ".conf": true, ".properties": true, ".env": true,
	".tf": true, ".tfvars": true, ".csv": true, ".tsv": true,
}

// textFilenames are extensionless files recognized as text by name.
var textFilenames = map[string]bool{
	"dockerfile": true,
	"makefile":   true,
	"license":    true,
	"readme":     true,
	"notice":     true,
}

// isRecognizedText reports whether a filename passes the extension allowlist.
func isRecognizedText(name string) bool {
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		return textExtensions[ext]
	}
	return textFilenames[strings.ToLower(name)]
}
