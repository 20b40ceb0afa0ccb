package loader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// lineParser walks a text payload line by line and tracks the position for errors and warnings.
type lineParser struct {
	path     string
	kind     string
	line     int
	warnings []string
}

// parse dispatches every non-empty, non-comment line to parseLine as its keyword and arguments.
func (p *lineParser) parse(data []byte, parseLine func(keyword string, fields []string) error) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	p.line = 0
	for scanner.Scan() {
		p.line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := parseLine(fields[0], fields[1:]); err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				return err
			}
			return p.formatError("%v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return &ParseError{Path: p.path, Line: p.line, Err: err}
	}
	return nil
}

func (p *lineParser) formatError(format string, args ...any) error {
	return &ParseError{Path: p.path, Line: p.line, Err: fmt.Errorf(format, args...)}
}

func (p *lineParser) appendWarn(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf("%s(%d): %s", p.kind, p.line, fmt.Sprintf(format, args...)))
}

// floats parses exactly n leading fields.
func (p *lineParser) floats(keyword string, fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, p.formatError("'%s' with less than %d fields", keyword, n)
	}
	out := make([]float32, n)
	for i, f := range fields[:n] {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, p.formatError("'%s' parse float error: %q", keyword, f)
		}
		out[i] = float32(v)
	}
	return out, nil
}
