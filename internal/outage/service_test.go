package outage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"no-lights-schedule/internal/logger"
	"no-lights-schedule/internal/mq"
	"no-lights-schedule/internal/render"
)

type memCache struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) GetViews(_ context.Context, key string) ([]byte, bool, error) {
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memCache) SetViews(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.data[key] = data
	m.ttls[key] = ttl
	return nil
}

func newTestApp(t *testing.T, load bool) (*fiber.App, *memCache, *recorder) {
	t.Helper()
	f := NewFetcher(map[string]Source{
		"dnipro": &stubSource{body: fixtureBody(t)},
		"kyiv":   &stubSource{body: fixtureBody(t)},
	}, 60, WithLogger(logger.Nop{}))
	if load {
		_, err := f.Refresh(context.Background(), "dnipro")
		require.NoError(t, err)
	}
	mc := newMemCache()
	rec := &recorder{}
	h := &Handlers{
		Store:        f,
		Cache:        mc,
		CacheTTL:     5 * time.Minute,
		DefaultGroup: "GPV1.2",
		Metrics:      rec,
		Log:          logger.Nop{},
		Now:          func() time.Time { return time.Date(2025, 11, 13, 12, 0, 0, 0, time.UTC) },
	}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	h.RegisterRoutes(app.Group("/api"))
	return app, mc, rec
}

func get(t *testing.T, app *fiber.App, path string) (int, []byte, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body, resp.Header.Get("X-Cache")
}

func TestRegionsBeforeLoad(t *testing.T) {
	app, _, _ := newTestApp(t, false)
	status, _, _ := get(t, app, "/api/schedule/regions")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestRegions(t *testing.T) {
	app, _, _ := newTestApp(t, true)
	status, body, _ := get(t, app, "/api/schedule/regions")
	require.Equal(t, fiber.StatusOK, status)

	var regions []RegionInfo
	require.NoError(t, json.Unmarshal(body, &regions))
	require.Len(t, regions, 1)
	assert.Equal(t, "dnipro", regions[0].RegionID)
	assert.Equal(t, "13.11.2025 14:30", regions[0].Update)
}

func TestGroups(t *testing.T) {
	app, _, _ := newTestApp(t, true)
	status, body, _ := get(t, app, "/api/schedule/dnipro/groups")
	require.Equal(t, fiber.StatusOK, status)

	var resp GroupsResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "dnipro", resp.Region)
	assert.Equal(t, []GroupInfo{
		{ID: "GPV1.1", Name: "Черга 1.1"},
		{ID: "GPV1.2", Name: "Черга 1.2"},
		{ID: "GPV2.1", Name: "Черга 2.1"},
		{ID: "GPV10.1", Name: "Черга 10.1"},
	}, resp.Groups)
}

func TestRegionErrors(t *testing.T) {
	app, _, _ := newTestApp(t, true)

	status, _, _ := get(t, app, "/api/schedule/lviv/groups")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _, _ = get(t, app, "/api/schedule/kyiv/views")
	assert.Equal(t, fiber.StatusServiceUnavailable, status, "configured but not fetched yet")

	status, _, _ = get(t, app, "/api/schedule/dnipro/views?mode=poster")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _, _ = get(t, app, "/api/schedule/dnipro/views?day=yesterday")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _, _ = get(t, app, "/api/schedule/dnipro/summary/GPV9.9")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestViewsCached(t *testing.T) {
	app, mc, rec := newTestApp(t, true)

	status, body, hit := get(t, app, "/api/schedule/dnipro/views?mode=emergency")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "MISS", hit)

	var res render.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "GPV1.2", res.Group, "configured default group")
	require.NotNil(t, res.Today)
	assert.Nil(t, res.Week)
	assert.Equal(t, []string{"emergency"}, rec.renders)

	key := "views:dnipro:abc123:emergency:today:"
	require.Contains(t, mc.data, key)
	assert.Equal(t, 5*time.Minute, mc.ttls[key])

	status, cached, hit := get(t, app, "/api/schedule/dnipro/views?mode=emergency")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "HIT", hit)
	assert.JSONEq(t, string(body), string(cached))
	assert.Len(t, rec.renders, 1, "cache hit does not render")
}

func TestViewsAuto(t *testing.T) {
	app, mc, _ := newTestApp(t, true)

	status, body, _ := get(t, app, "/api/schedule/dnipro/views?mode=auto&containers=groups,%20summary&group=GPV1.1&day=tomorrow")
	require.Equal(t, fiber.StatusOK, status)

	var res render.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Nil(t, res.Today)
	require.NotNil(t, res.Groups)
	assert.Len(t, res.Groups.Rows, 2)
	assert.Len(t, res.Summaries, 2)
	assert.Contains(t, mc.data, "views:dnipro:abc123:auto[groups,summary]:tomorrow:GPV1.1")
}

func TestViewsAutoKeyIgnoresContainerOrder(t *testing.T) {
	app, mc, rec := newTestApp(t, true)

	_, _, hit := get(t, app, "/api/schedule/dnipro/views?mode=auto&containers=today,week")
	assert.Equal(t, "MISS", hit)
	_, _, hit = get(t, app, "/api/schedule/dnipro/views?mode=auto&containers=week,today,week,poster")
	assert.Equal(t, "HIT", hit)

	assert.Contains(t, mc.data, "views:dnipro:abc123:auto[today,week]:today:")
	assert.Len(t, mc.data, 1)
	assert.Len(t, rec.renders, 1)
}

type queuedRender struct {
	key, corr string
	msg       any
}

type queueSender struct {
	sent []queuedRender
	err  error
}

func (q *queueSender) Publish(ctx context.Context, key string, msg any) error {
	return q.PublishReply(ctx, key, "", msg)
}

func (q *queueSender) PublishReply(_ context.Context, key, corr string, msg any) error {
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, queuedRender{key: key, corr: corr, msg: msg})
	return nil
}

func newRenderApp(t *testing.T, sender mq.Sender) *fiber.App {
	t.Helper()
	f := NewFetcher(map[string]Source{"dnipro": &stubSource{body: fixtureBody(t)}}, 60, WithLogger(logger.Nop{}))
	h := &Handlers{Store: f, Log: logger.Nop{}}
	if sender != nil {
		h.Renders = mq.NewRenderRequester(sender)
	}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	h.RegisterRoutes(app.Group("/api"))
	return app
}

func post(t *testing.T, app *fiber.App, path string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("POST", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestPostRenderQueuesRequest(t *testing.T) {
	sender := &queueSender{}
	app := newRenderApp(t, sender)

	status, body := post(t, app, "/api/schedule/dnipro/render?mode=auto&day=tomorrow&group=GPV2.1&containers=groups,%20summary")
	require.Equal(t, fiber.StatusAccepted, status, "region not fetched yet is still queued")

	var resp struct {
		CorrelationID string `json:"correlation_id"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Len(t, resp.CorrelationID, 36)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, mq.RoutingRenderRequest, sender.sent[0].key)
	assert.Equal(t, resp.CorrelationID, sender.sent[0].corr)
	assert.Equal(t, mq.RenderRequestMsg{
		Region:     "dnipro",
		Mode:       "auto",
		Day:        "tomorrow",
		Group:      "GPV2.1",
		Containers: []string{"groups", "summary"},
	}, sender.sent[0].msg)
}

func TestPostRenderErrors(t *testing.T) {
	status, _ := post(t, newRenderApp(t, nil), "/api/schedule/dnipro/render")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)

	sender := &queueSender{}
	app := newRenderApp(t, sender)
	status, _ = post(t, app, "/api/schedule/lviv/render")
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = post(t, app, "/api/schedule/dnipro/render?mode=poster")
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = post(t, app, "/api/schedule/dnipro/render?day=yesterday")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Empty(t, sender.sent)

	sender.err = errors.New("channel closed")
	status, _ = post(t, app, "/api/schedule/dnipro/render")
	assert.Equal(t, fiber.StatusBadGateway, status)
}

func TestSummary(t *testing.T) {
	app, _, _ := newTestApp(t, true)

	status, body, _ := get(t, app, "/api/schedule/dnipro/summary/GPV1.1")
	require.Equal(t, fiber.StatusOK, status)

	var resp SummaryResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "Черга 1.1", resp.GroupName)
	require.Len(t, resp.Summaries, 2)
	assert.Equal(t, "00:00–02:00, 08:30–10:30, 18:00–18:30", resp.Summaries[0].Text)
	assert.Equal(t, "04:00–06:00", resp.Summaries[1].Text)
}
