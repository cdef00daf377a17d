package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Reserved wire keys. Payloads must not use them.
const (
	KeyError       = "_error"
	KeyDescription = "_description"
)

// Result is the typed form of a result message. On the wire it is a single
// flat JSON object: the payload fields plus "_error" and, when set,
// "_description".
type Result struct {
	Payload     Payload
	Code        ErrorCode
	Description string
}

func Success(p Payload) Result {
	return Result{Payload: p, Code: NoErr}
}

func Failure(code ErrorCode, message string) Result {
	return Result{Code: code, Description: message}
}

func (r Result) OK() bool { return r.Code == NoErr }

// Collisions lists payload keys that clash with the reserved keys, sorted.
func (r Result) Collisions() []string {
	var out []string
	for _, k := range []string{KeyError, KeyDescription} {
		if _, ok := r.Payload[k]; ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// MarshalJSON writes the reserved fields last so they always win over a
// colliding payload key.
func (r Result) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Payload)+2)
	for k, v := range r.Payload {
		if k == KeyError || k == KeyDescription {
			continue
		}
		m[k] = v
	}
	m[KeyError] = int(r.Code)
	if r.Description != "" {
		m[KeyDescription] = r.Description
	}
	return json.Marshal(m)
}

func (r *Result) UnmarshalJSON(data []byte) error {
	p, err := DecodePayload(data)
	if err != nil {
		return err
	}

	code, ok := p[KeyError]
	if !ok {
		return fmt.Errorf("result: missing %s", KeyError)
	}
	n, ok := code.(json.Number)
	if !ok {
		return fmt.Errorf("result: %s is not a number", KeyError)
	}
	c, err := n.Int64()
	if err != nil {
		return fmt.Errorf("result: decode %s: %w", KeyError, err)
	}
	r.Code = ErrorCode(c)

	r.Description = ""
	if d, ok := p[KeyDescription]; ok {
		if r.Description, ok = d.(string); !ok {
			return fmt.Errorf("result: %s is not a string", KeyDescription)
		}
	}

	delete(p, KeyError)
	delete(p, KeyDescription)
	if p == nil {
		p = Payload{}
	}
	r.Payload = p
	return nil
}
