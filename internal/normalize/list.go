// Package normalize turns loosely shaped record fields coming from the remote store
// into canonical values for display and matching.
package normalize

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Outcome is the result of one parse strategy: either Parsed or Unparsed.
type Outcome interface {
	outcome()
}

// Parsed carries a successfully interpreted sequence.
type Parsed []string

// Unparsed means the strategy could not interpret the value.
type Unparsed struct {
	Reason string
}

func (Parsed) outcome()   {}
func (Unparsed) outcome() {}

// Observer is notified when a value could not be interpreted by any strategy.
type Observer func(raw json.RawMessage, reason string)

type strategy func(raw json.RawMessage) Outcome

// strategies are tried in order; the first Parsed wins.
var strategies = []strategy{
	parseAbsent,
	parseArray,
	parseObject,
	parseString,
}

// Parse runs every strategy in order and returns the first Parsed outcome.
// When nothing matches the last Unparsed is returned.
func Parse(raw json.RawMessage) Outcome {
	var last Outcome = Unparsed{Reason: "no strategy matched"}
	for _, try := range strategies {
		result := try(raw)
		if parsed, ok := result.(Parsed); ok {
			return parsed
		}
		last = result
	}
	return last
}

// List returns the field as an ordered sequence of trimmed non-empty strings.
// It never fails: anything it cannot interpret yields an empty sequence.
func List(raw json.RawMessage) []string {
	return ListObserved(raw, nil)
}

// ListObserved is List with a hook for values that degraded to empty.
func ListObserved(raw json.RawMessage, observe Observer) []string {
	switch result := Parse(raw).(type) {
	case Parsed:
		return []string(result)
	case Unparsed:
		if observe != nil {
			observe(raw, result.Reason)
		}
	}
	return []string{}
}

// ListFromString normalizes a plain string the same way a JSON string value is normalized.
func ListFromString(value string) []string {
	raw, err := json.Marshal(value)
	if err != nil {
		return []string{}
	}
	return List(raw)
}

func parseAbsent(raw json.RawMessage) Outcome {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Parsed{}
	}
	return Unparsed{Reason: "value present"}
}

func parseArray(raw json.RawMessage) Outcome {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return Unparsed{Reason: "not an array"}
	}
	return Parsed(collect(items))
}

func parseObject(raw json.RawMessage) Outcome {
	values, ok := objectValues(raw)
	if !ok {
		return Unparsed{Reason: "not an object"}
	}

	flat := make([]json.RawMessage, 0, len(values))
	for _, value := range values {
		var nested []json.RawMessage
		if err := json.Unmarshal(value, &nested); err == nil {
			flat = append(flat, nested...)
			continue
		}
		flat = append(flat, value)
	}

	return Parsed(collect(flat))
}

func parseString(raw json.RawMessage) Outcome {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return Unparsed{Reason: "unsupported value type"}
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err == nil {
		return Parsed(collect(items))
	}

	for _, sep := range []string{",", ";", "\n"} {
		if strings.Contains(text, sep) {
			return Parsed(splitTrim(text, sep))
		}
	}

	if trimmed := strings.TrimSpace(text); trimmed != "" {
		return Parsed{trimmed}
	}
	return Parsed{}
}

func splitTrim(text, sep string) []string {
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// collect stringifies elements and drops falsy ones (null, false, 0, "").
func collect(items []json.RawMessage) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if text, ok := scalarText(item); ok {
			out = append(out, text)
		}
	}
	return out
}

func scalarText(item json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) == 0 {
		return "", false
	}

	switch trimmed[0] {
	case 'n', 'f':
		return "", false
	case 't':
		return "true", true
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return "", false
		}
		text = strings.TrimSpace(text)
		return text, text != ""
	case '[', '{':
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err != nil {
			return "", false
		}
		return compact.String(), true
	default:
		number, err := strconv.ParseFloat(string(trimmed), 64)
		if err != nil || number == 0 {
			return "", false
		}
		return string(trimmed), true
	}
}

type keyedValue struct {
	key   string
	index int
	value json.RawMessage
}

// objectValues returns the values of a JSON object in JavaScript enumeration order:
// integer-like keys ascending first, then the remaining keys in document order.
func objectValues(raw json.RawMessage) ([]json.RawMessage, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, false
	}

	var entries []keyedValue
	for dec.More() {
		keyTok, errKey := dec.Token()
		if errKey != nil {
			return nil, false
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if errVal := dec.Decode(&value); errVal != nil {
			return nil, false
		}
		entries = append(entries, keyedValue{key: key, index: len(entries), value: value})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ni, iIsIndex := arrayIndex(entries[i].key)
		nj, jIsIndex := arrayIndex(entries[j].key)
		switch {
		case iIsIndex && jIsIndex:
			return ni < nj
		case iIsIndex != jIsIndex:
			return iIsIndex
		default:
			return entries[i].index < entries[j].index
		}
	})

	values := make([]json.RawMessage, len(entries))
	for i, entry := range entries {
		values[i] = entry.value
	}
	return values, true
}

func arrayIndex(key string) (uint64, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	return n, err == nil
}
