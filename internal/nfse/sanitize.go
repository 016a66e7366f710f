package nfse

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrNoJSONFound means the completion has no '{' or no '}' at all.
	ErrNoJSONFound = errors.New("no json object found in completion")
	// ErrEmptyObject means the span parsed to {}; nothing to merge.
	ErrEmptyObject = errors.New("completion json object is empty")
)

// MalformedJSONError carries the decoder diagnostic for the sliced span.
type MalformedJSONError struct {
	Err error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed json in completion: %v", e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

// ExtractJSON slices text from the first '{' to the last '}' (inclusive) and
// decodes it. There is no brace balancing: prose containing stray braces, or
// a completion with more than one object, yields a MalformedJSONError.
// Numbers are kept as json.Number so they can be rendered verbatim.
func ExtractJSON(text string) (map[string]any, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < 0 {
		return nil, ErrNoJSONFound
	}
	if end < start {
		return nil, &MalformedJSONError{Err: fmt.Errorf("closing brace at %d precedes opening brace at %d", end, start)}
	}

	dec := json.NewDecoder(strings.NewReader(text[start : end+1]))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, &MalformedJSONError{Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &MalformedJSONError{Err: errors.New("unexpected data after top-level object")}
	}
	if len(out) == 0 {
		return nil, ErrEmptyObject
	}
	return out, nil
}
