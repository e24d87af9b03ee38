package mq

import (
	"context"
	"time"
)

// UpdateNotifier announces dataset changes on the exchange.
type UpdateNotifier struct {
	pub Sender
}

// NewUpdateNotifier creates a notifier that publishes schedule updates.
func NewUpdateNotifier(pub Sender) *UpdateNotifier {
	return &UpdateNotifier{pub: pub}
}

// NotifyUpdated publishes a schedule.updated message. Failures are logged;
// the fetcher keeps serving the new dataset either way.
func (n *UpdateNotifier) NotifyUpdated(ctx context.Context, region, hash, update string, groups []string) {
	msg := ScheduleUpdatedMsg{
		Region:      region,
		ContentHash: hash,
		Update:      update,
		Groups:      groups,
		When:        time.Now().UTC(),
	}
	if err := n.pub.Publish(ctx, RoutingScheduleUpdated, msg); err != nil {
		log.Errorf("failed to publish update for region %s: %v", region, err)
	}
}

// RenderRequester asks workers to build views.
type RenderRequester struct {
	pub Sender
}

// NewRenderRequester creates a requester that publishes render requests.
func NewRenderRequester(pub Sender) *RenderRequester {
	return &RenderRequester{pub: pub}
}

// Request publishes a render request. correlationID is echoed back on the
// matching schedule.views message.
func (r *RenderRequester) Request(ctx context.Context, correlationID string, msg RenderRequestMsg) error {
	return r.pub.PublishReply(ctx, RoutingRenderRequest, correlationID, msg)
}
