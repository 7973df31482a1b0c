package alerting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/c360/vitalstream/types/vital"
)

func TestFormatMessageTokens(t *testing.T) {
	event := vital.MeasurementEvent{CustomerID: "cust-1", DeviceSN: "sn-42"}
	at := time.Date(2026, 8, 26, 15, 4, 5, 0, time.Local)

	got := formatMessage("Device {device_sn} for {customer_id}: value {value} at {timestamp}",
		event, fptr(98.5), at)
	assert.Equal(t, "Device sn-42 for cust-1: value 98.5 at 2026-08-26 15:04:05", got)
}

func TestFormatMessageEmptyTemplate(t *testing.T) {
	got := formatMessage("", vital.MeasurementEvent{}, nil, time.Now())
	assert.Equal(t, defaultAlertMessage, got)
}

func TestFormatMessageMissingIdentifiers(t *testing.T) {
	got := formatMessage("{device_sn}/{customer_id}", vital.MeasurementEvent{}, nil, time.Now())
	assert.Equal(t, "null/null", got)
}

func TestFormatMessageValueOnlyWhenSupplied(t *testing.T) {
	event := vital.MeasurementEvent{CustomerID: "c", DeviceSN: "d"}
	got := formatMessage("value={value}", event, nil, time.Now())
	assert.Equal(t, "value={value}", got)
}

func TestFormatMessageUnknownTokenUnchanged(t *testing.T) {
	event := vital.MeasurementEvent{CustomerID: "c", DeviceSN: "d"}
	got := formatMessage("{mystery} {customer_id}", event, nil, time.Now())
	assert.Equal(t, "{mystery} c", got)
}

func TestFormatMessageWholeNumberValue(t *testing.T) {
	got := formatMessage("{value}", vital.MeasurementEvent{}, fptr(110), time.Now())
	assert.Equal(t, "110", got)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "98", formatNumber(98))
	assert.Equal(t, "98.5", formatNumber(98.5))
	assert.Equal(t, "0.1", formatNumber(0.1))
}
