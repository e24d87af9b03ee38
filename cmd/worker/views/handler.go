package views

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"no-lights-schedule/internal/logger"
	"no-lights-schedule/internal/metrics"
	"no-lights-schedule/internal/mq"
	"no-lights-schedule/internal/outage"
	"no-lights-schedule/internal/render"
)

// Store is the part of the fetcher the worker needs.
type Store interface {
	Get(region string) (*outage.Entry, error)
	Refresh(ctx context.Context, region string) (bool, error)
}

// Handler answers render requests with rendered views and keeps its
// datasets in step with schedule.updated announcements.
type Handler struct {
	store        Store
	pub          mq.Sender
	defaultGroup string
	metrics      metrics.Recorder
	log          logger.Logger
}

// NewHandler creates a render worker handler.
func NewHandler(store Store, pub mq.Sender, defaultGroup string, rec metrics.Recorder) *Handler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Handler{
		store:        store,
		pub:          pub,
		defaultGroup: defaultGroup,
		metrics:      rec,
		log:          logger.New("views"),
	}
}

// Listen consumes render requests and update announcements until ctx is
// cancelled.
func (h *Handler) Listen(ctx context.Context, consumer *mq.Consumer) error {
	requests, err := consumer.Consume(mq.QueueRenderRequest)
	if err != nil {
		return fmt.Errorf("consume render requests: %w", err)
	}
	updates, err := consumer.Subscribe(mq.RoutingScheduleUpdated)
	if err != nil {
		return fmt.Errorf("consume schedule updates: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-requests:
			if !ok {
				return nil
			}
			settle(d, h.HandleRender(ctx, d.Body, d.CorrelationId))
		case d, ok := <-updates:
			if !ok {
				return nil
			}
			settle(d, h.HandleUpdated(ctx, d.Body))
		}
	}
}

// settle acks handled deliveries and drops undecodable ones.
func settle(d amqp.Delivery, err error) {
	if err != nil {
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

// HandleRender renders one request and publishes the views, or the reason
// there are none, on schedule.views. Only malformed messages return an error.
func (h *Handler) HandleRender(ctx context.Context, body []byte, correlationID string) error {
	var req mq.RenderRequestMsg
	if err := json.Unmarshal(body, &req); err != nil {
		h.log.Warnf("bad render request: %v", err)
		return fmt.Errorf("decode render request: %w", err)
	}

	reply := mq.ViewsReadyMsg{Region: req.Region, Mode: req.Mode, Day: req.Day, Group: req.Group}
	views, hash, err := h.render(req)
	if err != nil {
		h.log.Warnf("render %s/%s failed: %v", req.Region, req.Mode, err)
		reply.Error = err.Error()
	} else {
		reply.Views = views
		reply.ContentHash = hash
	}
	if err := h.pub.PublishReply(ctx, mq.RoutingViewsReady, correlationID, reply); err != nil {
		h.log.Errorf("publish views for %s: %v", req.Region, err)
	}
	return nil
}

func (h *Handler) render(req mq.RenderRequestMsg) (json.RawMessage, string, error) {
	mode, err := render.ParseMode(req.Mode)
	if err != nil {
		return nil, "", err
	}
	day, err := render.ParseDay(req.Day)
	if err != nil {
		return nil, "", err
	}
	e, err := h.store.Get(req.Region)
	if err != nil {
		return nil, "", err
	}
	containers := make([]render.Container, len(req.Containers))
	for i, c := range req.Containers {
		containers[i] = render.Container(c)
	}

	start := time.Now()
	res, err := render.Render(e.Dataset, render.Options{Mode: mode, Day: day}, render.Request{
		Group:        req.Group,
		DefaultGroup: h.defaultGroup,
		Containers:   containers,
	})
	if err != nil {
		return nil, "", err
	}
	h.metrics.Render(string(mode), time.Since(start))

	data, err := json.Marshal(res)
	if err != nil {
		return nil, "", fmt.Errorf("marshal views: %w", err)
	}
	return data, e.ContentHash, nil
}

// HandleUpdated refreshes the announced region unless the worker already
// holds that dataset version.
func (h *Handler) HandleUpdated(ctx context.Context, body []byte) error {
	var msg mq.ScheduleUpdatedMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		h.log.Warnf("bad update message: %v", err)
		return fmt.Errorf("decode update: %w", err)
	}
	if e, err := h.store.Get(msg.Region); err == nil && e.ContentHash == msg.ContentHash {
		return nil
	}
	if _, err := h.store.Refresh(ctx, msg.Region); err != nil {
		h.log.Errorf("refresh %s: %v", msg.Region, err)
	}
	return nil
}
