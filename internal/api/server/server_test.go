package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amora-app/media-pipeline/internal/api/middleware"
	"github.com/amora-app/media-pipeline/internal/api/rest"
	"github.com/amora-app/media-pipeline/internal/api/server"
	"github.com/amora-app/media-pipeline/internal/logger"
	"github.com/amora-app/media-pipeline/internal/media/transcoder"
	"github.com/amora-app/media-pipeline/internal/metrics"
	"github.com/amora-app/media-pipeline/internal/mocks"
)

func init() {
	// Initialize logger for testing
	_ = logger.Initialize(logger.Config{
		Debug: true,
	})
}

func newTestRouter(ctrl *gomock.Controller) (*gin.Engine, *prometheus.Registry) {
	tc := mocks.NewMockTranscoder(ctrl)
	tc.EXPECT().Tools().Return(&transcoder.Tools{FFmpeg: "ffmpeg", FFprobe: "ffprobe"}, nil).AnyTimes()

	handler := rest.NewHandler(mocks.NewMockProcessor(ctrl), mocks.NewMockCleaner(ctrl), tc, "local", 0)
	reg := prometheus.NewRegistry()
	m := metrics.MustNew(reg)
	m.AddCleanupKeys(metrics.OutcomeDeleted, 1)

	srv := server.New(server.Config{Host: "127.0.0.1", Port: 0}, handler, reg)
	return srv.Router(), reg
}

func TestRouter_RequestID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, _ := newTestRouter(ctrl)

	t.Run("assigns an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		_, err := uuid.Parse(w.Header().Get(middleware.RequestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("keeps a valid client id", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(middleware.RequestIDHeader, id)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, id, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("replaces a malformed client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(middleware.RequestIDHeader, "not-a-uuid\nInjected: yes")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		got := w.Header().Get(middleware.RequestIDHeader)
		assert.NotContains(t, got, "Injected")
		_, err := uuid.Parse(got)
		assert.NoError(t, err)
	})
}

func TestRouter_Metrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, _ := newTestRouter(ctrl)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "media_cleanup_keys_total")
}

func TestRouter_UnknownRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, _ := newTestRouter(ctrl)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
