package migrate

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	annotUp        = "-- +goose Up"
	annotDown      = "-- +goose Down"
	annotStmtBegin = "-- +goose StatementBegin"
	annotStmtEnd   = "-- +goose StatementEnd"
)

// ValidateDir checks every .sql file in dir: the filename carries a unique
// 14 digit version, Up precedes Down, and StatementBegin/End pairs are
// balanced inside each section. All problems are reported together.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var errs error
	seen := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name))
			continue
		}
		if prev, ok := seen[m[1]]; ok {
			errs = multierr.Append(errs, fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name))
		}
		seen[m[1]] = name

		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if err := checkAnnotations(body); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errs
}

func checkAnnotations(body []byte) error {
	var upLine, downLine, open, openedAt int
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, annotUp):
			upLine = n
		case strings.HasPrefix(line, annotDown):
			if open > 0 {
				return fmt.Errorf("StatementBegin at line %d is not closed before Down", openedAt)
			}
			downLine = n
		case strings.HasPrefix(line, annotStmtBegin):
			if open > 0 {
				return fmt.Errorf("nested StatementBegin at line %d", n)
			}
			open, openedAt = 1, n
		case strings.HasPrefix(line, annotStmtEnd):
			if open == 0 {
				return fmt.Errorf("StatementEnd at line %d without StatementBegin", n)
			}
			open = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	switch {
	case upLine == 0:
		return fmt.Errorf("missing %q", annotUp)
	case downLine == 0:
		return fmt.Errorf("missing %q", annotDown)
	case downLine < upLine:
		return fmt.Errorf("%q must come before %q", annotUp, annotDown)
	case open > 0:
		return fmt.Errorf("StatementBegin at line %d is never closed", openedAt)
	}
	return nil
}
