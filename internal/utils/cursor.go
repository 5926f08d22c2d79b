package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

type LeadCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

func EncodeLeadCursor(createdAt time.Time, id string) (string, error) {
	b, err := json.Marshal(LeadCursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeLeadCursor(cursor string) (LeadCursor, error) {
	if cursor == "" {
		return LeadCursor{}, errors.New("empty cursor")
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return LeadCursor{}, err
	}

	var c LeadCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return LeadCursor{}, err
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		return LeadCursor{}, errors.New("invalid cursor payload")
	}
	return c, nil
}
