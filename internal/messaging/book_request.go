package messaging

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Abhishek-Anvekar/healthcare/internal/delivery/dto"
)

// bookRequestWire is the inbound book-request schema. Version 0 (absent)
// and 1 are accepted. The booking intake is an independently deployed
// service, so alternate key names its older builds emit are tolerated:
// bookingId/appointmentId for the reference, patientPhone/patientMobile for
// the contact, and patientId as either a JSON number or a string.
type bookRequestWire struct {
	Version         int             `json:"version"`
	BookingID       string          `json:"bookingId"`
	AppointmentID   string          `json:"appointmentId"`
	DoctorID        string          `json:"doctorId"`
	PatientID       json.RawMessage `json:"patientId"`
	StartTime       string          `json:"startTime"`
	DurationMinutes json.RawMessage `json:"durationMinutes"`
	SlotID          string          `json:"slotId"`
	Notes           string          `json:"notes"`
	PatientPhone    string          `json:"patientPhone"`
	PatientMobile   string          `json:"patientMobile"`
}

const maxBookRequestVersion = 1

// DecodeBookRequest turns a raw book-request message into a booking request.
// The returned reference is the producer's booking/appointment id, used for
// parking and logging. Decode failures must be parked by the caller, not
// dropped.
func DecodeBookRequest(body []byte) (*dto.BookAppointmentRequest, string, error) {
	var wire bookRequestWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, "", fmt.Errorf("malformed book request: %w", err)
	}

	ref := wire.BookingID
	if ref == "" {
		ref = wire.AppointmentID
	}

	if wire.Version > maxBookRequestVersion {
		return nil, ref, fmt.Errorf("unsupported book request version %d", wire.Version)
	}
	if wire.DoctorID == "" {
		return nil, ref, fmt.Errorf("book request missing doctorId")
	}

	patientID, err := decodeScalarString(wire.PatientID)
	if err != nil || patientID == "" {
		return nil, ref, fmt.Errorf("book request has unusable patientId: %v", err)
	}

	startTime, err := parseStartTime(wire.StartTime)
	if err != nil {
		return nil, ref, fmt.Errorf("book request has unusable startTime %q: %w", wire.StartTime, err)
	}

	duration, err := decodeScalarInt(wire.DurationMinutes)
	if err != nil || duration <= 0 {
		return nil, ref, fmt.Errorf("book request has unusable durationMinutes: %v", err)
	}

	phone := wire.PatientPhone
	if phone == "" {
		phone = wire.PatientMobile
	}

	return &dto.BookAppointmentRequest{
		DoctorID:        wire.DoctorID,
		PatientID:       patientID,
		StartTime:       startTime,
		DurationMinutes: duration,
		SlotID:          wire.SlotID,
		Notes:           wire.Notes,
		PatientPhone:    phone,
	}, ref, nil
}

// decodeScalarString accepts a JSON string or number.
func decodeScalarString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("value is missing")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("value %s is neither string nor number", string(raw))
}

// decodeScalarInt accepts a JSON number or a numeric string.
func decodeScalarInt(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("value is missing")
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.Atoi(strings.TrimSpace(s))
	}
	return 0, fmt.Errorf("value %s is not numeric", string(raw))
}

// parseStartTime accepts RFC3339 or a zone-less ISO-8601 local timestamp, the
// format the legacy intake emits.
func parseStartTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", value)
}
