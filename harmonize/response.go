package harmonize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var errEmptyResponse = errors.New("label service returned an empty response")

// batchResult is the outcome of one service call: either items or err is set.
type batchResult struct {
	items []resultItem
	err   error
}

func (r batchResult) ok() bool { return r.err == nil }

// parseResponse decodes the service text into result items.
// Field names are matched case-insensitively by encoding/json.
func parseResponse(raw string) ([]resultItem, error) {
	payload := stripCodeFences(raw)
	if payload == "" {
		return nil, errEmptyResponse
	}

	var items []resultItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("label service responded with invalid JSON: %w", err)
	}
	return items, nil
}

// Some models send us ```json [...]``` instead of just JSON.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimLeftFunc(s, unicode.IsLetter) // language tag
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
