package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexID is an identifier the backend sometimes encodes as a JSON string.
type FlexID int64

// UnmarshalJSON accepts 12, "12" and null.
func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*id = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*id = FlexID(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexID(n)
	return nil
}

// Int64 returns the numeric value.
func (id FlexID) Int64() int64 { return int64(id) }

// String formats the id in base 10.
func (id FlexID) String() string { return strconv.FormatInt(int64(id), 10) }
