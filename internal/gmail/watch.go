package gmail

import (
	"context"
	"fmt"
	"time"

	gmail "google.golang.org/api/gmail/v1"
)

// WatchStatus reports an active push notification registration.
type WatchStatus struct {
	HistoryID  uint64
	Expiration time.Time
}

// Watch registers a Cloud Pub/Sub push channel for new mail carrying the
// label. Gmail expires registrations after about a week, so callers re-arm
// this on a schedule.
func (c *Client) Watch(ctx context.Context, labelID, topic string) (*WatchStatus, error) {
	req := &gmail.WatchRequest{TopicName: topic}
	if labelID != "" {
		req.LabelIds = []string{labelID}
	}

	resp, err := c.svc.Users.Watch("me", req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("Watch: %w", err)
	}

	status := &WatchStatus{
		HistoryID:  resp.HistoryId,
		Expiration: time.UnixMilli(resp.Expiration),
	}
	c.log.Info().
		Uint64("history_id", status.HistoryID).
		Time("expiration", status.Expiration).
		Str("topic", topic).
		Msg("gmail watch registered")
	return status, nil
}

// StopWatch tears down the push channel.
func (c *Client) StopWatch(ctx context.Context) error {
	if err := c.svc.Users.Stop("me").Context(ctx).Do(); err != nil {
		return fmt.Errorf("StopWatch: %w", err)
	}
	return nil
}
