package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// StateKey is the global the client reads the initial state from.
const StateKey = "__INITIAL_STATE__"

const statePrefix = "window." + StateKey + "="

// SerializeState renders state as the inline boot expression
// window.__INITIAL_STATE__=<json>. The JSON encoder escapes "<", ">" and
// "&", so the result is safe inside a script element.
func SerializeState(state any) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("serialize state: %w", err)
	}
	return statePrefix + string(data), nil
}

var (
	// ErrNoState is returned by ParseState for scripts that carry no snapshot.
	ErrNoState = errors.New("render: script does not assign " + StateKey)

	// ErrInvalidState is returned by ParseState when the assigned payload is
	// not valid JSON.
	ErrInvalidState = errors.New("render: invalid " + StateKey + " payload")
)

// ParseState extracts the JSON payload of a script written by
// SerializeState.
func ParseState(script string) (json.RawMessage, error) {
	s := strings.TrimSpace(script)
	if !strings.HasPrefix(s, statePrefix) {
		return nil, ErrNoState
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, statePrefix), ";")
	if !json.Valid([]byte(s)) {
		return nil, ErrInvalidState
	}
	return json.RawMessage(s), nil
}
