package domain

import "encoding/json"

// ============================================================
// Notifications
// ============================================================

// SMSResult tags how an SMS dispatch ended. Dispatch never fails with an
// error; every failure mode is one of these values.
type SMSResult string

const (
	SMSSent             SMSResult = "sent"
	SMSSimulatedSuccess SMSResult = "simulated_success"
	SMSProviderError    SMSResult = "provider_error"
	SMSFetchBlocked     SMSResult = "fetch_blocked"
)

// SMSOutcome is the tagged result of one SMS dispatch.
type SMSOutcome struct {
	Result     SMSResult       `json:"result"`
	StatusCode int             `json:"status_code,omitempty"`
	Details    string          `json:"details,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Delivered reports whether the provider (or the simulator) accepted the message.
func (o SMSOutcome) Delivered() bool {
	return o.Result == SMSSent || o.Result == SMSSimulatedSuccess
}

// EmailOutcome is the result of a welcome email. Email is always simulated.
type EmailOutcome struct {
	Status int    `json:"status"`
	Text   string `json:"text"`
}

// BroadcastReport tallies a bulk SMS run.
type BroadcastReport struct {
	Recipients int               `json:"recipients"`
	Delivered  int               `json:"delivered"`
	Outcomes   map[SMSResult]int `json:"outcomes"`
}
