package jobs

import (
	"encoding/json"
	"errors"
	"time"
)

// TypeLeadNotification alerts the sales team about a freshly captured
// lead. The payload is ID-based plus the contact fields the notifier
// needs; everything else is loaded from the store if required.
const TypeLeadNotification = "lead.notification"

var ErrInvalidPayload = errors.New("invalid job payload")

type LeadNotificationPayload struct {
	LeadID        string    `json:"leadId"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	ResourceID    string    `json:"resourceId"`
	ResourceTitle string    `json:"resourceTitle"`
	CapturedAt    time.Time `json:"capturedAt"`
}

func (p LeadNotificationPayload) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

func ParseLeadNotification(raw json.RawMessage) (LeadNotificationPayload, error) {
	var p LeadNotificationPayload

	if err := json.Unmarshal(raw, &p); err != nil {
		return LeadNotificationPayload{}, ErrInvalidPayload
	}

	if p.LeadID == "" || p.Email == "" {
		return LeadNotificationPayload{}, ErrInvalidPayload
	}

	return p, nil
}
