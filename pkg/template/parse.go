package template

import "strings"

// Parse decomposes a raw string into literal and expression segments.
// Unterminated or garbled expressions fail with a MalformedTemplateError
// naming the byte offset; everything outside delimiters is passed through
// verbatim.
func Parse(source string) (*Template, error) {
	t := &Template{source: source}

	pos := 0
	literalStart := 0
	for pos < len(source) {
		if source[pos] != '{' || pos+1 >= len(source) {
			pos++
			continue
		}

		var closer string
		switch source[pos+1] {
		case '{':
			closer = "}}"
		case '%':
			closer = "%}"
		default:
			pos++
			continue
		}

		end := strings.Index(source[pos+2:], closer)
		if end < 0 {
			return nil, &MalformedTemplateError{
				Offset: pos,
				Reason: "unterminated " + source[pos:pos+2] + " expression",
			}
		}
		body := source[pos+2 : pos+2+end]

		var expr Expression
		var err error
		if closer == "}}" {
			expr, err = parseVariableRef(body, pos)
		} else {
			expr, err = parseFunctionCall(body, pos)
		}
		if err != nil {
			return nil, err
		}

		if literalStart < pos {
			t.segments = append(t.segments, Segment{
				Offset: literalStart,
				Text:   source[literalStart:pos],
			})
		}
		t.segments = append(t.segments, Segment{Offset: pos, Expr: expr})

		pos += 2 + end + 2
		literalStart = pos
	}

	if literalStart < len(source) {
		t.segments = append(t.segments, Segment{
			Offset: literalStart,
			Text:   source[literalStart:],
		})
	}
	return t, nil
}

// parseVariableRef parses the body of a {{ }} expression: a dot-separated
// identifier path, whitespace-trimmed.
func parseVariableRef(body string, offset int) (Expression, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, &MalformedTemplateError{Offset: offset, Reason: "empty variable reference"}
	}

	path := strings.Split(trimmed, ".")
	for _, part := range path {
		if part == "" {
			return nil, &MalformedTemplateError{Offset: offset, Reason: "empty path segment in " + trimmed}
		}
		if !isIdentifier(part) {
			return nil, &MalformedTemplateError{Offset: offset, Reason: "invalid identifier " + part}
		}
	}
	return &VariableRef{Path: path}, nil
}

// parseFunctionCall parses the body of a {% %} expression: a function name
// followed by a comma-separated list of quoted or bare arguments.
func parseFunctionCall(body string, offset int) (Expression, error) {
	s := strings.TrimSpace(body)
	if s == "" {
		return nil, &MalformedTemplateError{Offset: offset, Reason: "empty function call"}
	}

	nameEnd := strings.IndexAny(s, " \t")
	name := s
	rest := ""
	if nameEnd >= 0 {
		name = s[:nameEnd]
		rest = strings.TrimSpace(s[nameEnd:])
	}
	if !isIdentifier(name) {
		return nil, &MalformedTemplateError{Offset: offset, Reason: "invalid function name " + name}
	}

	call := &FunctionCall{Name: name}
	for rest != "" {
		arg, remainder, err := parseArgument(rest, offset)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		remainder = strings.TrimSpace(remainder)
		if remainder == "" {
			break
		}
		if remainder[0] != ',' {
			return nil, &MalformedTemplateError{Offset: offset, Reason: "expected comma between arguments"}
		}
		rest = strings.TrimSpace(remainder[1:])
		if rest == "" {
			return nil, &MalformedTemplateError{Offset: offset, Reason: "trailing comma in argument list"}
		}
	}
	return call, nil
}

// parseArgument consumes one argument from the front of s and returns the
// remainder. Quoted arguments run to the next single quote; bare arguments
// run to the next comma.
func parseArgument(s string, offset int) (Argument, string, error) {
	if s[0] == '\'' {
		end := strings.IndexByte(s[1:], '\'')
		if end < 0 {
			return Argument{}, "", &MalformedTemplateError{Offset: offset, Reason: "unterminated quoted argument"}
		}
		return Argument{Value: s[1 : 1+end], Quoted: true}, s[end+2:], nil
	}

	end := strings.IndexByte(s, ',')
	raw := s
	rest := ""
	if end >= 0 {
		raw = s[:end]
		rest = s[end:]
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return Argument{}, "", &MalformedTemplateError{Offset: offset, Reason: "empty argument"}
	}
	return Argument{Value: value}, rest, nil
}

// isIdentifier reports whether s is a valid identifier: one or more ASCII
// letters, digits, underscores, or hyphens.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}
