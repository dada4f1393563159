package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncState int

const (
	inCode jsoncState = iota
	inString
	inStringEscape
	inLineComment
	inBlockComment
)

// normalizeJSONC blanks out comments and trailing commas so the result is
// plain JSON. Every byte keeps its offset, and newlines survive, so decoder
// positions still point at the user's file.
func normalizeJSONC(content string) (string, error) {
	out := []byte(content)
	state := inCode
	pendingComma := -1

	blank := func(i int) {
		if out[i] != '\n' && out[i] != '\r' && out[i] != '\t' {
			out[i] = ' '
		}
	}

	for i := 0; i < len(out); i++ {
		ch := out[i]
		switch state {
		case inString:
			switch ch {
			case '\\':
				state = inStringEscape
			case '"':
				state = inCode
			}
		case inStringEscape:
			state = inString
		case inLineComment:
			if ch == '\n' || ch == '\r' {
				state = inCode
				continue
			}
			blank(i)
		case inBlockComment:
			if ch == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				i++
				state = inCode
				continue
			}
			blank(i)
		default:
			switch {
			case ch == '"':
				pendingComma = -1
				state = inString
			case ch == '/' && i+1 < len(out) && out[i+1] == '/':
				out[i], out[i+1] = ' ', ' '
				i++
				state = inLineComment
			case ch == '/' && i+1 < len(out) && out[i+1] == '*':
				out[i], out[i+1] = ' ', ' '
				i++
				state = inBlockComment
			case ch == ',':
				pendingComma = i
			case ch == '}' || ch == ']':
				if pendingComma >= 0 {
					out[pendingComma] = ' '
				}
				pendingComma = -1
			case ch == ' ' || ch == '\n' || ch == '\r' || ch == '\t':
			default:
				pendingComma = -1
			}
		}
	}

	if state == inBlockComment {
		return "", errors.New("unterminated block comment in JSONC")
	}
	return string(out), nil
}

// decodeStrict decodes exactly one JSON value into v, rejecting unknown
// fields and trailing documents, with errors positioned by line and column.
func decodeStrict(content string, v any) error {
	decoder := json.NewDecoder(strings.NewReader(content))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return positioned(content, err)
	}

	var extra json.RawMessage
	switch err := decoder.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err == nil:
		return positioned(content, errors.New("multiple JSON values are not allowed"))
	default:
		return positioned(content, err)
	}
}

func positioned(content string, err error) error {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return err
	}
	line, col := lineCol(content, offset)
	return fmt.Errorf("line %d column %d: %w", line, col, err)
}

// lineCol maps a decoder offset (one past the offending byte) to 1-based
// line and column.
func lineCol(content string, offset int64) (int, int) {
	end := int(max(min(offset, int64(len(content)))-1, 0))
	prefix := content[:end]
	line := strings.Count(prefix, "\n") + 1
	col := end - strings.LastIndexByte(prefix, '\n')
	return line, col
}
