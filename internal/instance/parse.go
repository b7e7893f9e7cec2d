package instance

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseError reports malformed instance input. It is fatal to the caller.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "<input>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %s", loc, e.Line, e.Msg)
	}
	return fmt.Sprintf("parse %s: %s", loc, e.Msg)
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// tokenReader walks whitespace-separated integers across lines, remembering
// the line each token came from. Blank lines are skipped.
type tokenReader struct {
	sc     *bufio.Scanner
	path   string
	line   int
	fields []string
}

func (r *tokenReader) errorf(format string, args ...any) error {
	return &ParseError{Path: r.path, Line: r.line, Msg: fmt.Sprintf(format, args...)}
}

// nextLine advances to the next non-blank line.
func (r *tokenReader) nextLine() error {
	for r.sc.Scan() {
		r.line++
		f := strings.Fields(r.sc.Text())
		if len(f) > 0 {
			r.fields = f
			return nil
		}
	}
	if err := r.sc.Err(); err != nil {
		return &ParseError{Path: r.path, Line: r.line, Msg: err.Error()}
	}
	return io.EOF
}

func (r *tokenReader) int(what string) (int, error) {
	for len(r.fields) == 0 {
		if err := r.nextLine(); err != nil {
			if errors.Is(err, io.EOF) {
				return 0, r.errorf("unexpected end of input reading %s", what)
			}
			return 0, err
		}
	}
	tok := r.fields[0]
	r.fields = r.fields[1:]
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, r.errorf("%s: %q is not an integer", what, tok)
	}
	return v, nil
}

func (r *tokenReader) ints(n int, what string) ([]int, error) {
	out := make([]int, n)
	for i := range out {
		v, err := r.int(fmt.Sprintf("%s[%d]", what, i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Parse reads an instance in the line-oriented format: m, n, the m
// capacities, the n sizes, then the (n+1)x(n+1) distance matrix row by row.
// name is used for error messages and as the instance name.
func Parse(rd io.Reader, name string) (*Instance, error) {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	r := &tokenReader{sc: sc, path: name}

	m, err := r.int("courier count")
	if err != nil {
		return nil, err
	}
	if m < 1 {
		return nil, r.errorf("courier count must be positive, got %d", m)
	}
	n, err := r.int("item count")
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, r.errorf("item count must be non-negative, got %d", n)
	}
	caps, err := r.ints(m, "capacity")
	if err != nil {
		return nil, err
	}
	sizes, err := r.ints(n, "size")
	if err != nil {
		return nil, err
	}
	dist := make([][]int, n+1)
	for i := range dist {
		row, err := r.ints(n+1, fmt.Sprintf("distance row %d", i))
		if err != nil {
			return nil, err
		}
		dist[i] = row
	}
	if len(r.fields) > 0 {
		return nil, r.errorf("unexpected trailing token %q", r.fields[0])
	}
	if err := r.nextLine(); err == nil {
		return nil, r.errorf("unexpected trailing token %q", r.fields[0])
	} else if !errors.Is(err, io.EOF) {
		return nil, err
	}

	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	in, err := New(stem, caps, sizes, dist)
	if err != nil {
		return nil, &ParseError{Path: name, Msg: err.Error()}
	}
	return in, nil
}

// ParseFile opens and parses the instance at path.
func ParseFile(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Msg: err.Error()}
	}
	defer f.Close()
	return Parse(f, path)
}
