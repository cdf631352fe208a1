package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/sage/internal/augment"
	"github.com/tokenforge/sage/internal/config"
	"github.com/tokenforge/sage/internal/engine"
	"github.com/tokenforge/sage/internal/knowledge"
	"github.com/tokenforge/sage/internal/learning"
	"github.com/tokenforge/sage/internal/metrics"
	"github.com/tokenforge/sage/internal/model"
	"github.com/tokenforge/sage/internal/reasoning"
	"github.com/tokenforge/sage/internal/server"
	"github.com/tokenforge/sage/internal/tasks"
)

type testServer struct {
	srv    *server.Server
	store  *knowledge.Store
	events *learning.EventStore
	tasks  *tasks.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := knowledge.NewStore("")
	require.NoError(t, err)
	events, err := learning.NewEventStore("")
	require.NoError(t, err)
	taskStore, err := tasks.NewStore("")
	require.NoError(t, err)

	tun := config.DefaultTunables()
	registry := prometheus.NewRegistry()
	prom, err := metrics.Register(registry)
	require.NoError(t, err)
	daily, err := metrics.NewDaily("")
	require.NoError(t, err)

	eng := engine.New(engine.Options{
		Store:    store,
		Patterns: reasoning.NewStore(),
		Gateway:  augment.NewGateway(nil, config.Augment{}, tun),
		Daily:    daily,
		Prom:     prom,
		Tunables: tun,
	})

	srv := server.New(server.Options{
		Engine:   eng,
		Events:   events,
		Store:    store,
		Tasks:    taskStore,
		Daily:    daily,
		Registry: registry,
	})
	return &testServer{srv: srv, store: store, events: events, tasks: taskStore}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	ts.srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAsk(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.store.Create(model.KnowledgeEntry{
		Topic: "Mining", Category: model.KnowledgePlatform,
		Information: "Mining runs continuously.", Confidence: 90,
	})
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPost, "/api/v1/ask", map[string]string{
		"user_id": "u1", "question": "What is my mining speed?",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var ans model.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ans))
	assert.Equal(t, model.CategoryPlatformContext, ans.Category)
	assert.Contains(t, ans.Text, "Mining runs continuously")
}

func TestAsk_RequiresQuestion(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/v1/ask", map[string]string{"user_id": "u1", "question": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedback_Accepted(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/v1/feedback", map[string]any{
		"user_id": "u1", "question": "q", "answer": "a", "rating": 5,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["id"])
	assert.Len(t, ts.events.Unprocessed(0), 1)
}

func TestFeedback_InvalidRating(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/v1/feedback", map[string]any{
		"question": "q", "answer": "a", "rating": 9,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ts.events.Unprocessed(0))
}

func TestCreateAndListKnowledge(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/knowledge", map[string]any{
		"topic": "Token", "category": "dictionary",
		"information": "The platform currency.", "confidence": 85,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.KnowledgeEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, model.KnowledgeSourceManual, created.Source)

	rec = ts.do(t, http.MethodGet, "/api/v1/knowledge?category=dictionary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []model.KnowledgeEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Token", entries[0].Topic)
}

func TestCreateKnowledge_RejectsMissingTopic(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/v1/knowledge", map[string]any{
		"category": "general", "information": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTasks(t *testing.T) {
	ts := newTestServer(t)
	ts.tasks.Create(model.SystemTask{TaskType: model.TaskKnowledgeGap, Priority: 70})

	rec := ts.do(t, http.MethodGet, "/api/v1/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got []model.SystemTask
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, model.TaskKnowledgeGap, got[0].TaskType)
}

func TestLearningMetrics(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/v1/ask", map[string]string{"user_id": "u1", "question": "What is my mining speed?"})

	rec := ts.do(t, http.MethodGet, "/api/v1/metrics/learning", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []model.LearningMetricsDaily
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].Interactions)
}

func TestPrometheusEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/v1/ask", map[string]string{"user_id": "u1", "question": "What is my mining speed?"})

	rec := ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sage_queries_total")
}
