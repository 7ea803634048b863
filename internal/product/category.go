package product

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// CategoryID holds categoriaID exactly as the client sent it, as a JSON
// token: `10` for a number, `"10"` for a string. Values that carry no id
// (absent, null, false, 0, "") decode to the empty CategoryID, which is
// what "required" rejects.
type CategoryID string

func (c CategoryID) MarshalJSON() ([]byte, error) {
	if c == "" {
		return []byte("null"), nil
	}
	return []byte(c), nil
}

func (c *CategoryID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*c = ""
		return nil
	}

	switch data[0] {
	case 'n', 'f':
		// null, false
		*c = ""
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*c = ""
			return nil
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("categoriaID: %w", err)
		}
		if f == 0 {
			*c = ""
			return nil
		}
	default:
		return fmt.Errorf("categoriaID: unsupported json value %s", data)
	}

	*c = CategoryID(data)
	return nil
}

// String returns the id without JSON quoting.
func (c CategoryID) String() string {
	var s string
	if err := json.Unmarshal([]byte(c), &s); err == nil {
		return s
	}
	return string(c)
}
