// Package filex holds small filesystem helpers for the operator console.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureSubdDir creates base/dirName (base defaults to the working
// directory) and returns its absolute path.
func EnsureSubdDir(base, dirName string) (string, error) {
	if base == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		base = cwd
	}

	dir := filepath.Join(base, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// FootageFileName builds a file name for a downloaded tape, e.g.
// "VT-0003_ch02.mp4". Path separators and spaces in number are replaced.
func FootageFileName(number string, chapter int, ext string) string {
	number = strings.TrimSpace(number)
	if number == "" {
		number = "tape"
	}
	number = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':':
			return '_'
		}
		return r
	}, number)

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if chapter < 1 {
		chapter = 1
	}
	return fmt.Sprintf("%s_ch%02d%s", number, chapter, ext)
}
