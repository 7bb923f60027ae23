package event

// Notify event type discriminators consumed by the notification dispatcher.
const (
	TypeAppointmentCreated     = "APPOINTMENT_CREATED"
	TypeAppointmentConfirmed   = "APPOINTMENT_CONFIRMED"
	TypeAppointmentRejected    = "APPOINTMENT_REJECTED"
	TypeAppointmentCancelled   = "APPOINTMENT_CANCELLED"
	TypeAppointmentRescheduled = "APPOINTMENT_RESCHEDULED"
	TypeAppointmentCompleted   = "APPOINTMENT_COMPLETED"
)

// Notify is the generic payload published on the notify topic after every
// transition. StartTime is RFC3339; consumers must be idempotent because
// delivery is at-least-once and unordered.
type Notify struct {
	Type          string `json:"type"`
	AppointmentID string `json:"appointmentId"`
	DoctorID      string `json:"doctorId"`
	PatientID     string `json:"patientId"`
	StartTime     string `json:"startTime"`
}

// Confirmed carries the doctor display name, fetched at confirm time, for
// downstream notification templating.
type Confirmed struct {
	AppointmentID string `json:"appointmentId"`
	DoctorID      string `json:"doctorId"`
	PatientID     string `json:"patientId"`
	PatientPhone  string `json:"patientPhone"`
	StartTime     string `json:"startTime"`
	FullName      string `json:"fullName"`
}

type Rejected struct {
	AppointmentID string `json:"appointmentId"`
	Reason        string `json:"reason"`
	PatientPhone  string `json:"patientPhone"`
}

type Cancelled struct {
	AppointmentID string `json:"appointmentId"`
	ByDoctor      bool   `json:"byDoctor"`
	PatientPhone  string `json:"patientPhone"`
}
