package alerting

import (
	"strconv"
	"strings"
	"time"

	"github.com/c360/vitalstream/types/vital"
)

// defaultAlertMessage is used when a rule carries no message template.
const defaultAlertMessage = "Abnormal health measurement detected"

// nullPlaceholder is substituted for identifiers missing from the event.
// Downstream consumers expect the literal string, not an empty field.
const nullPlaceholder = "null"

// timestampLayout renders the {timestamp} token.
const timestampLayout = "2006-01-02 15:04:05"

// formatNumber renders a float the shortest way that round-trips, so
// "98" stays "98" rather than "98.000000".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatMessage renders an alert message from a rule template. Supported
// tokens are {device_sn}, {customer_id}, {value} and {timestamp}; the
// value token is only substituted when a current value is supplied, and
// the timestamp is the formatting instant, not the event timestamp.
// Unrecognized tokens are left unchanged.
func formatMessage(template string, event vital.MeasurementEvent, value *float64, at time.Time) string {
	if template == "" {
		return defaultAlertMessage
	}

	deviceSN := event.DeviceSN
	if deviceSN == "" {
		deviceSN = nullPlaceholder
	}
	customerID := event.CustomerID
	if customerID == "" {
		customerID = nullPlaceholder
	}

	msg := strings.ReplaceAll(template, "{device_sn}", deviceSN)
	msg = strings.ReplaceAll(msg, "{customer_id}", customerID)
	if value != nil {
		msg = strings.ReplaceAll(msg, "{value}", formatNumber(*value))
	}
	msg = strings.ReplaceAll(msg, "{timestamp}", at.Format(timestampLayout))
	return msg
}
