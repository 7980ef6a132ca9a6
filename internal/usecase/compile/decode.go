package compile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/talentdex/talentdex/internal/domain"
)

// decodeStrict parses an LLM response into v, rejecting unknown fields and
// trailing garbage. Any failure maps to ErrMalformedCompilerOutput: a partial
// parse is never accepted, the caller retries or falls back instead.
func decodeStrict(raw string, v any) error {
	payload := stripFences(raw)
	if payload == "" {
		return fmt.Errorf("empty response: %w", domain.ErrMalformedCompilerOutput)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode response: %v: %w", err, domain.ErrMalformedCompilerOutput)
	}
	if dec.More() {
		return fmt.Errorf("trailing content after JSON object: %w", domain.ErrMalformedCompilerOutput)
	}
	return nil
}

// stripFences removes a markdown code fence if the model wrapped its JSON in
// one, which chat models do even when told not to.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
