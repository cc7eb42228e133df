package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// UserAgent is sent with every request to the remote store.
const UserAgent = "staff-directory/1.0 (+https://github.com/Houeta/staff-directory)"

// Field names used by the remote store. Several fields arrive under either a snake_case or
// a camelCase name depending on which code path wrote them.
const (
	KeyEmpID            = "empid"
	KeyID               = "id"
	KeyName             = "name"
	KeyEmail            = "email"
	KeyRole             = "role"
	KeyOtherRole        = "otherRole"
	KeyOtherRoleSnake   = "other_role"
	KeyCluster          = "cluster"
	KeyLocation         = "location"
	KeyCurrentProject   = "current_project"
	KeyCurrentProjectCC = "currentProject"
	KeyAvailability     = "availability"
	KeyHours            = "hours_available"
	KeyHoursCC          = "hoursAvailable"
	KeyFromDate         = "from_date"
	KeyFromDateCC       = "fromDate"
	KeyToDate           = "to_date"
	KeyToDateCC         = "toDate"
	KeySkills           = "current_skills"
	KeySkillsCC         = "currentSkills"
	KeyInterests        = "interests"
	KeyPrevious         = "previous_projects"
	KeyPreviousCC       = "previousProjects"
	KeyUpdatedAt        = "updated_at"
	KeyUpdatedAtCC      = "updatedAt"
)

var (
	jsonNull        = json.RawMessage("null")
	jsonEmptyString = json.RawMessage(`""`)
	jsonEmptyList   = json.RawMessage("[]")
)

// Record is an employee document exactly as the remote store returned it.
// The client never trusts its shape, so values stay raw until a caller asks for them.
type Record map[string]json.RawMessage

// DecodeRecord parses a JSON object into a Record.
func DecodeRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	if rec == nil {
		rec = Record{}
	}
	return rec, nil
}

// RecordFrom converts any JSON-serializable object into a Record.
func RecordFrom(value any) (Record, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return DecodeRecord(data)
}

// Clone returns a copy whose values do not share memory with r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for key, value := range r {
		out[key] = append(json.RawMessage(nil), value...)
	}
	return out
}

// Set stores value under key, encoding it as JSON.
func (r Record) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode field %q: %w", key, err)
	}
	r[key] = data
	return nil
}

// Lookup returns the value of the first alias that is present and not null.
func (r Record) Lookup(aliases ...string) (json.RawMessage, bool) {
	for _, alias := range aliases {
		value, ok := r[alias]
		if ok && !isNull(value) {
			return value, true
		}
	}
	return nil, false
}

// String returns the first present alias as text. Numbers and booleans are returned
// verbatim; anything else yields "".
func (r Record) String(aliases ...string) string {
	value, ok := r.Lookup(aliases...)
	if !ok {
		return ""
	}
	return rawText(value)
}

// ID returns the record identity: "empid", falling back to "id".
func (r Record) ID() string {
	if id := r.String(KeyEmpID); id != "" {
		return id
	}
	return r.String(KeyID)
}

// IsEmpty reports whether key is absent or holds null, "", [] or {}.
func (r Record) IsEmpty(key string) bool {
	value, ok := r[key]
	if !ok {
		return true
	}
	switch string(bytes.TrimSpace(value)) {
	case "", "null", `""`, "[]", "{}":
		return true
	}
	return false
}

// Keys reports the keys present in the record.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	return keys
}

func isNull(value json.RawMessage) bool {
	trimmed := bytes.TrimSpace(value)
	return len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull)
}

func rawText(value json.RawMessage) string {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return ""
	}
	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return ""
		}
		return strings.TrimSpace(text)
	case '[', '{', 'n':
		return ""
	default:
		return string(trimmed)
	}
}
