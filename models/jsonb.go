package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SplitData is the opaque per-policy numeric map attached to an expense,
// stored as jsonb so it round-trips byte-exact. It is decoded lazily by the
// ledger package; malformed content is a ledger concern, not a storage error.
type SplitData json.RawMessage

func (d SplitData) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return string(d), nil
}

func (d *SplitData) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*d = append((*d)[0:0], v...)
	case string:
		*d = SplitData(v)
	default:
		return fmt.Errorf("cannot scan %T into SplitData", value)
	}
	return nil
}

func (d SplitData) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

func (d *SplitData) UnmarshalJSON(data []byte) error {
	if d == nil {
		return errors.New("models.SplitData: UnmarshalJSON on nil pointer")
	}
	*d = append((*d)[0:0], data...)
	return nil
}

func (SplitData) GormDataType() string {
	return "jsonb"
}

// UUIDSlice is an ordered list of user IDs stored as a jsonb array.
// Order matters: the split calculator assigns rounding remainders to the
// first participant.
type UUIDSlice []uuid.UUID

func (s UUIDSlice) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *UUIDSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into UUIDSlice", value)
	}
	return json.Unmarshal(raw, s)
}

func (UUIDSlice) GormDataType() string {
	return "jsonb"
}
