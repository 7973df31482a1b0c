package vital

import (
	"encoding/json"
	"strconv"
	"time"
)

// MeasurementEvent is one batch of physical-sign readings from a single
// device. Sign values arrive as loosely typed JSON and are parsed to
// numbers at evaluation time; a value that fails to parse is treated as
// absent for that sign.
type MeasurementEvent struct {
	CustomerID string                 `json:"customer_id"`
	DeviceSN   string                 `json:"device_sn"`
	Signs      map[string]interface{} `json:"signs"`
	Timestamp  time.Time              `json:"timestamp"`
}

// SignValue looks up one physical sign and parses it as a decimal
// number. The second return value is false when the sign is absent or
// the value is not numeric.
func (e MeasurementEvent) SignValue(sign string) (float64, bool) {
	raw, ok := e.Signs[sign]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
