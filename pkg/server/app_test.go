package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"FilingLens/internal/domain/models"
	"FilingLens/internal/middleware"
	"FilingLens/internal/services/engine"
	"FilingLens/internal/usecase"
	"FilingLens/pkg/config"
	xhttp "FilingLens/pkg/http"
	"FilingLens/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []models.DashboardEvent
	closed bool
}

func (p *capturePublisher) Publish(_ context.Context, e models.DashboardEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *capturePublisher) types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func TestAppRunSurvivesBootstrapFailureAndDrainsOnShutdown(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "warming up", http.StatusServiceUnavailable)
	}))
	defer down.Close()

	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0

	l := logger.Nop()
	client, err := engine.NewHTTPClient(down.URL, time.Second, engine.QueryOptions{}, l)
	require.NoError(t, err)

	pub := &capturePublisher{}
	pipeline := middleware.NewEventPipeline(pub, nil, l)
	dash := usecase.NewDashboard(client, usecase.DashboardConfig{QueryTimeout: time.Second, PredictTimeout: time.Second}, nil, pipeline, l)
	reg := prometheus.NewRegistry()
	srv := xhttp.NewServer(l, reg, reg, nil, xhttp.WithHost(cfg.Server.Host), xhttp.WithPort(cfg.Server.Port))

	app := New(cfg, l, dash, pipeline, pub, srv, nil)
	assert.Same(t, dash, app.Dashboard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		return dash.Snapshot().BootstrapError != ""
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.Contains(t, pub.types(), models.EventBootstrapFailed)
	pub.mu.Lock()
	assert.True(t, pub.closed)
	pub.mu.Unlock()
}
