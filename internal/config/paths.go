package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrNoSourcePath is returned when a paths file holds no usable line.
var ErrNoSourcePath = errors.New("no valid path found")

var commentPrefixes = []string{"#", "//", "--"}

// ReadSourcePath returns the first line of the paths file that is neither
// blank nor a comment.
func ReadSourcePath(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot open paths file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || isComment(line) {
			continue
		}
		return line, nil
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("reading paths file %s: %w", path, err)
	}
	return "", fmt.Errorf("%w in file: %s", ErrNoSourcePath, path)
}

func isComment(line string) bool {
	for _, p := range commentPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// ResolveSource returns the explicit source path, falling back to the paths file.
func ResolveSource(cfg Config) (string, error) {
	if cfg.Source.Path != "" {
		return cfg.Source.Path, nil
	}
	file := cfg.Source.File
	if file == "" {
		file = DefaultPathsFile
	}
	return ReadSourcePath(file)
}

// ParseInterval accepts a bare integer as minutes, or a Go duration.
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("%w: interval must be positive, got %d", ErrInvalid, n)
		}
		return time.Duration(n) * time.Minute, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: interval %q: %v", ErrInvalid, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: interval must be positive, got %s", ErrInvalid, d)
	}
	return d, nil
}
