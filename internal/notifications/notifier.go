package notifications

import "context"

type SendLeadAlertInput struct {
	LeadID        string
	Name          string
	Email         string
	Phone         string
	ResourceID    string
	ResourceTitle string
}

type Notifier interface {
	SendLeadAlert(ctx context.Context, input SendLeadAlertInput) error
}
