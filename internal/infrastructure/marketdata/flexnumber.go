package marketdata

import (
	"encoding/json"
	"strconv"
)

// flexNumber handles provider values that may be a number, a numeric
// string, "N/A", an empty string, or null. Anything unparseable stays
// invalid rather than collapsing to zero.
type flexNumber struct {
	Value float64
	Valid bool
}

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	f.Value, f.Valid = 0, false

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.Value, f.Valid = num, true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			return nil
		}
		if num, err := strconv.ParseFloat(s, 64); err == nil {
			f.Value, f.Valid = num, true
		}
		return nil
	}

	// null or any other shape: stay invalid.
	return nil
}
