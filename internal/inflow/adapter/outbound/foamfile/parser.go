package foamfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	ErrMalformed     = errors.New("malformed foamFile data")
	ErrNotStructured = errors.New("points do not form a structured grid")
)

// Parse reads a list written in foamFile format: an optional FoamFile header
// dictionary, an optional average value, the entry count, then one entry
// per line between parentheses. Entries are either "(a b c)" tuples or bare
// scalars. Line comments and block comments, such as the banner OpenFOAM
// puts at the top of every file, are skipped.
func Parse(r io.Reader) ([][]float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	inComment := false
	next := func() (string, bool) {
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			if !inComment && strings.HasPrefix(strings.TrimSpace(line), "//") {
				continue
			}
			line, inComment = stripBlockComments(line, inComment)
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "//") {
				continue
			}
			return line, true
		}
		return "", false
	}
	malformed := func(format string, args ...any) error {
		return fmt.Errorf("%w: line %d: %s", ErrMalformed, lineNo, fmt.Sprintf(format, args...))
	}

	var count int
	for {
		line, ok := next()
		if !ok {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			if inComment {
				return nil, fmt.Errorf("%w: unterminated block comment", ErrMalformed)
			}
			return nil, fmt.Errorf("%w: missing entry count", ErrMalformed)
		}

		if strings.HasPrefix(line, "FoamFile") {
			if err := skipDictionary(line, next); err != nil {
				return nil, malformed("%v", err)
			}
			continue
		}
		if strings.HasPrefix(line, "(") {
			// Average value of a vectorAverageField, not part of the list.
			continue
		}

		n, err := strconv.Atoi(line)
		if err != nil || n < 0 {
			return nil, malformed("expected entry count, got %q", line)
		}
		count = n
		break
	}

	if line, ok := next(); !ok || line != "(" {
		return nil, malformed("expected '(' after entry count")
	}

	rows := make([][]float64, 0, count)
	for len(rows) < count {
		line, ok := next()
		if !ok {
			return nil, fmt.Errorf("%w: expected %d entries, got %d", ErrMalformed, count, len(rows))
		}
		if line == ")" {
			return nil, malformed("expected %d entries, got %d", count, len(rows))
		}
		row, err := parseEntry(line)
		if err != nil {
			return nil, malformed("%v", err)
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, malformed("entry has %d components, expected %d", len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}

	if line, ok := next(); !ok || line != ")" {
		return nil, malformed("expected ')' after %d entries", count)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadFile parses the foamFile list stored at path.
func ReadFile(path string) ([][]float64, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rows, nil
}

func parseEntry(line string) ([]float64, error) {
	if strings.HasPrefix(line, "(") {
		if !strings.HasSuffix(line, ")") {
			return nil, fmt.Errorf("unterminated tuple %q", line)
		}
		line = strings.TrimSuffix(strings.TrimPrefix(line, "("), ")")
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty entry")
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		out[i] = v
	}
	return out, nil
}

func skipDictionary(first string, next func() (string, bool)) error {
	depth := strings.Count(first, "{") - strings.Count(first, "}")
	opened := depth > 0
	for !opened || depth > 0 {
		line, ok := next()
		if !ok {
			return fmt.Errorf("unterminated FoamFile header")
		}
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if strings.Contains(line, "{") {
			opened = true
		}
	}
	return nil
}

// stripBlockComments removes /* */ comments from line. open tells whether
// the line starts inside a comment; the returned flag whether it ends in one.
func stripBlockComments(line string, open bool) (string, bool) {
	var b strings.Builder
	for {
		if open {
			end := strings.Index(line, "*/")
			if end < 0 {
				return b.String(), true
			}
			line = line[end+2:]
			open = false
		}
		start := strings.Index(line, "/*")
		if start < 0 {
			b.WriteString(line)
			return b.String(), false
		}
		b.WriteString(line[:start])
		line = line[start+2:]
		open = true
	}
}
