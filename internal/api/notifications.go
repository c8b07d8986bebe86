package api

import (
	"context"
	"net/http"
)

// List returns the user's notifications, newest first.
func (s NotificationsService) List(ctx context.Context) ([]Notification, error) {
	return sendBody[[]Notification](ctx, s.Client, Call{
		Endpoint: EndpointNotifications,
		Method:   http.MethodGet,
	})
}

// SetEnabled turns push notifications on or off for the account.
func (s NotificationsService) SetEnabled(ctx context.Context, enabled bool) error {
	status := 0
	if enabled {
		status = 1
	}
	return s.Do(ctx, Call{
		Endpoint: EndpointNotificationToggle,
		Method:   http.MethodPut,
		Params:   NewParams("is_notification", status),
	}, nil)
}
