package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/minimapd/minimapd/internal/config"
	"github.com/minimapd/minimapd/internal/events"
	"github.com/minimapd/minimapd/internal/fetch"
	"github.com/minimapd/minimapd/internal/minimap"
	"github.com/minimapd/minimapd/internal/monitoring"
)

// Prometheus collectors register globally, so the test binary shares one set.
var testMetrics = monitoring.New()

func newTestService(t *testing.T, defaults config.MinimapDefaults) *Service {
	t.Helper()
	svc := New(zap.NewNop(), fetch.New(fetch.DefaultConfig()), testMetrics, defaults)
	t.Cleanup(svc.Shutdown)
	return svc
}

func createRequest() CreateRequest {
	return CreateRequest{
		HTML:     `<html><body><div id="main"><p>Hello</p></div></body></html>`,
		Source:   "#main",
		Viewport: &ViewportSpec{Width: 1000, Height: 800},
		Boxes: []BoxSpec{
			{Selector: "#main", Width: 1000, Height: 8000},
		},
	}
}

func TestCreateFromHTML(t *testing.T) {
	svc := newTestService(t, config.MinimapDefaults{})

	inst, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, inst.ID)
	assert.Equal(t, "#main", inst.Source)
	assert.False(t, inst.Controller.Shown())
	assert.InDelta(t, 0.05, inst.Controller.Scale().X, 1e-9)
	assert.InDelta(t, 0.06, inst.Controller.Scale().Y, 1e-9)
	assert.Equal(t, 1, svc.Registry().Len())
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, config.MinimapDefaults{})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{Source: "#main"})
	assert.Error(t, err)

	_, err = svc.Create(ctx, CreateRequest{HTML: "<div></div>", URL: "http://x", Source: "#main"})
	assert.Error(t, err)

	_, err = svc.Create(ctx, CreateRequest{HTML: "<div></div>"})
	assert.Error(t, err)

	_, err = svc.Create(ctx, CreateRequest{HTML: "<div></div>", Source: "#missing"})
	assert.Error(t, err)

	req := createRequest()
	req.Boxes = append(req.Boxes, BoxSpec{Selector: "#ghost"})
	_, err = svc.Create(ctx, req)
	assert.Error(t, err)
}

func TestCreateRejectsBadConfig(t *testing.T) {
	svc := newTestService(t, config.MinimapDefaults{})

	req := createRequest()
	req.Config = map[string]interface{}{"heightRatio": 2.0}

	_, err := svc.Create(context.Background(), req)
	var cfgErr *minimap.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Zero(t, svc.Registry().Len())
}

func TestCreateAppliesDefaultsThenRequest(t *testing.T) {
	hr := 0.5
	pos := "left"
	svc := newTestService(t, config.MinimapDefaults{HeightRatio: &hr, Position: &pos})

	req := createRequest()
	req.Config = map[string]interface{}{"position": "right"}

	inst, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	cfg := inst.Controller.Config()
	// Service default applies; the per-request value wins where both set.
	assert.Equal(t, 0.5, cfg.HeightRatio)
	assert.Equal(t, minimap.PositionRight, cfg.Position)
}

func TestCreateReplacesSameSource(t *testing.T) {
	svc := newTestService(t, config.MinimapDefaults{})
	ctx := context.Background()

	first, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)
	second, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, svc.Registry().Len())
	_, err = svc.Registry().Get(first.ID)
	assert.Error(t, err)
	_, err = svc.Registry().Get(second.ID)
	assert.NoError(t, err)
}

func TestDispatchAndNotices(t *testing.T) {
	svc := newTestService(t, config.MinimapDefaults{})

	inst, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Op(inst, "show"))
	assert.True(t, inst.Controller.Shown())

	// Show ran a layout pass; its notice is queued for transports.
	select {
	case sc := <-inst.Notices:
		assert.InDelta(t, 0.06, sc.Y, 1e-9)
	default:
		t.Fatal("expected a preview-change notice")
	}

	svc.Dispatch(inst, &events.Event{Type: events.Scroll, ScrollTop: 1000})
	assert.Equal(t, 1000.0, inst.Document.Metrics().ScrollTop())

	assert.Error(t, svc.Op(inst, "explode"))
}

func TestMeasure(t *testing.T) {
	svc := newTestService(t, config.MinimapDefaults{})

	inst, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Measure(inst, BoxSpec{Selector: "#main", Width: 1000, Height: 4000}))
	assert.InDelta(t, 0.12, inst.Controller.Scale().Y, 1e-9)

	assert.Error(t, svc.Measure(inst, BoxSpec{Selector: "#ghost"}))
}

func TestSetAndClose(t *testing.T) {
	svc := newTestService(t, config.MinimapDefaults{})

	inst, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Set(inst, "heightRatio", 0.8))
	assert.Equal(t, 0.8, inst.Controller.Config().HeightRatio)
	assert.Error(t, svc.Set(inst, "heightRatio", 5.0))

	require.NoError(t, svc.Close(inst.ID))
	assert.Zero(t, svc.Registry().Len())
	assert.Error(t, svc.Close(inst.ID))
}
