package models

// Inquiry is a lead-capture request as understood by the intake
// collaborator. The chat flow fills the first block from the embedded
// command; the remaining fields exist for parity with the contact form and
// stay empty when the chat did not collect them.
type Inquiry struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	EventType string `json:"event_type"`
	EventDate string `json:"event_date,omitempty"`
	Message   string `json:"message,omitempty"`

	Location        string `json:"location,omitempty"`
	Budget          string `json:"budget,omitempty"`
	GuestCount      string `json:"guest_count,omitempty"`
	ServiceInterest string `json:"service_interest,omitempty"`
}
