package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt accepts a JSON number or a numeric string. Kiosk firmware sends
// employee numbers and PINs either way. Set is false for null or "".
type FlexInt struct {
	Value int64
	Set   bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = FlexInt{}
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*f = FlexInt{}
			return nil
		}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrNotInteger, raw)
	}
	*f = FlexInt{Value: v, Set: true}
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(f.Value, 10)), nil
}

// Ptr returns nil when the value was absent.
func (f FlexInt) Ptr() *int64 {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}
