package outage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"no-lights-schedule/internal/cache"
	"no-lights-schedule/internal/logger"
	"no-lights-schedule/internal/metrics"
	"no-lights-schedule/internal/mq"
	"no-lights-schedule/internal/render"
	"no-lights-schedule/internal/schedule"
)

// DatasetStore is the read side of the Fetcher.
type DatasetStore interface {
	Get(region string) (*Entry, error)
	Regions() []RegionInfo
}

// ViewCache stores rendered views. *cache.Cache implements it.
type ViewCache interface {
	GetViews(ctx context.Context, key string) ([]byte, bool, error)
	SetViews(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// RenderQueue hands render requests to workers. *mq.RenderRequester
// implements it.
type RenderQueue interface {
	Request(ctx context.Context, correlationID string, msg mq.RenderRequestMsg) error
}

// Handlers holds the schedule API dependencies. Cache and Renders may be nil.
type Handlers struct {
	Store        DatasetStore
	Cache        ViewCache
	Renders      RenderQueue
	CacheTTL     time.Duration
	DefaultGroup string
	Metrics      metrics.Recorder
	Log          logger.Logger
	Now          func() time.Time
}

// RegisterRoutes registers schedule API routes on the given Fiber app group.
func (h *Handlers) RegisterRoutes(api fiber.Router) {
	s := api.Group("/schedule")
	s.Get("/regions", h.GetRegions)
	s.Get("/:region/groups", h.GetGroups)
	s.Get("/:region/views", h.GetViews)
	s.Get("/:region/summary/:group", h.GetSummary)
	s.Post("/:region/render", h.PostRender)
}

// GetRegions returns a list of loaded regions.
func (h *Handlers) GetRegions(c *fiber.Ctx) error {
	regions := h.Store.Regions()
	if len(regions) == 0 {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "schedule data not yet loaded",
		})
	}
	return c.JSON(regions)
}

// GetGroups returns the groups of a region with their display names.
func (h *Handlers) GetGroups(c *fiber.Ctx) error {
	e, err := h.Store.Get(c.Params("region"))
	if err != nil {
		return regionError(c, err)
	}
	keys := schedule.DatasetGroups(e.Dataset)
	groups := make([]GroupInfo, 0, len(keys))
	for _, g := range keys {
		groups = append(groups, GroupInfo{ID: g, Name: schedule.DisplayName(e.Dataset.Preset, g)})
	}
	return c.JSON(GroupsResponse{Region: e.Region, Groups: groups})
}

// GetViews renders the views selected by the mode, day, group and
// containers query parameters.
func (h *Handlers) GetViews(c *fiber.Ctx) error {
	mode, err := render.ParseMode(c.Query("mode"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	day, err := render.ParseDay(c.Query("day"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	e, err := h.Store.Get(c.Params("region"))
	if err != nil {
		return regionError(c, err)
	}

	containers := parseContainers(c.Query("containers"))
	group := c.Query("group")
	modeKey, err := cacheMode(mode, containers)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	key := cache.ViewsKey(e.Region, e.ContentHash, modeKey, string(day), group)

	ctx := c.UserContext()
	if h.Cache != nil {
		data, ok, err := h.Cache.GetViews(ctx, key)
		if err != nil {
			h.logger().Warnf("cache get %s: %v", key, err)
		}
		if ok {
			c.Set("X-Cache", "HIT")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(data)
		}
	}

	start := time.Now()
	res, err := render.Render(e.Dataset, render.Options{Mode: mode, Day: day}, render.Request{
		Group:        group,
		DefaultGroup: h.DefaultGroup,
		Containers:   containers,
		Now:          h.now(),
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	h.recorder().Render(string(mode), time.Since(start))

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal views: %w", err)
	}
	if h.Cache != nil {
		if err := h.Cache.SetViews(ctx, key, data, h.CacheTTL); err != nil {
			h.logger().Warnf("cache set %s: %v", key, err)
		}
	}
	c.Set("X-Cache", "MISS")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

// PostRender queues a render request for the workers and returns the
// correlation id the schedule.views answer will carry.
func (h *Handlers) PostRender(c *fiber.Ctx) error {
	if h.Renders == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "render workers not connected",
		})
	}
	mode, err := render.ParseMode(c.Query("mode"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	day, err := render.ParseDay(c.Query("day"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	region := c.Params("region")
	if _, err := h.Store.Get(region); errors.Is(err, ErrUnknownRegion) {
		return regionError(c, err)
	}

	msg := mq.RenderRequestMsg{
		Region: region,
		Mode:   string(mode),
		Day:    string(day),
		Group:  c.Query("group"),
	}
	for _, ct := range parseContainers(c.Query("containers")) {
		msg.Containers = append(msg.Containers, string(ct))
	}
	corrID := uuid.NewString()
	if err := h.Renders.Request(c.UserContext(), corrID, msg); err != nil {
		h.logger().Errorf("queue render for %s: %v", region, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "could not queue render request"})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"correlation_id": corrID})
}

// GetSummary returns the condensed outage text of one group for today and
// the next day.
func (h *Handlers) GetSummary(c *fiber.Ctx) error {
	e, err := h.Store.Get(c.Params("region"))
	if err != nil {
		return regionError(c, err)
	}
	group := c.Params("group")
	if !hasGroup(e.Dataset, group) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("group %q not found in region %q", group, e.Region),
		})
	}
	return c.JSON(SummaryResponse{
		Region:    e.Region,
		Group:     group,
		GroupName: schedule.DisplayName(e.Dataset.Preset, group),
		Update:    e.Dataset.LastUpdate(h.now()),
		Summaries: render.Summaries(e.Dataset, group),
	})
}

func parseContainers(raw string) []render.Container {
	if raw == "" {
		return nil
	}
	var out []render.Container
	for _, name := range strings.Split(raw, ",") {
		out = append(out, render.Container(strings.TrimSpace(name)))
	}
	return out
}

// cacheMode names the container set a request renders. Auto requests
// declaring the same containers in any order share one name.
func cacheMode(mode render.Mode, declared []render.Container) (string, error) {
	if mode != render.ModeAuto {
		return string(mode), nil
	}
	cs, err := render.Containers(mode, declared)
	if err != nil {
		return "", err
	}
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	slices.Sort(names)
	return fmt.Sprintf("auto[%s]", strings.Join(names, ",")), nil
}

func hasGroup(ds *schedule.Dataset, group string) bool {
	for _, g := range schedule.DatasetGroups(ds) {
		if g == group {
			return true
		}
	}
	return false
}

func regionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrUnknownRegion):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrRegionNotLoaded):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	return err
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handlers) recorder() metrics.Recorder {
	if h.Metrics != nil {
		return h.Metrics
	}
	return metrics.Nop{}
}

func (h *Handlers) logger() logger.Logger {
	if h.Log != nil {
		return h.Log
	}
	return logger.Nop{}
}
