package presence

import "time"

// Recognised actions. Any other non-empty action string is accepted as
// free-form and only subject to the duplicate and arrival checks.
const (
	ActionArrival    = "ARRIVAL"
	ActionPauseStart = "PAUSE_START"
	ActionPauseEnd   = "PAUSE_END"
	ActionDeparture  = "DEPARTURE"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Origin methods.
const (
	OriginQRCode = "QR_CODE"
	OriginBadge  = "BADGE"
	OriginManual = "MANUAL"
)

// Event is one recorded presence action. Name and RegistrationNumber are
// snapshots taken when the event was recorded. Date is YYYY-MM-DD and Time
// is HH:MM:SS, both in server-local time.
type Event struct {
	ID                 string    `json:"id"`
	EmployeeID         *string   `json:"employeeId"`
	Name               string    `json:"name"`
	RegistrationNumber string    `json:"registrationNumber"`
	Date               string    `json:"date"`
	Time               string    `json:"time"`
	Action             string    `json:"action"`
	Status             string    `json:"status"`
	Note               string    `json:"note"`
	OriginMethod       string    `json:"originMethod"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"-"`
}

// Stats aggregates active events.
type Stats struct {
	Total   int64 `json:"total"`
	Today   int64 `json:"today"`
	Success int64 `json:"success"`
	Failed  int64 `json:"failed"`
}

// Filter narrows List. Empty fields are ignored.
type Filter struct {
	Date       string
	Query      string
	EmployeeID string
}
