package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amora-app/media-pipeline/internal/api/rest"
	"github.com/amora-app/media-pipeline/internal/domain"
	"github.com/amora-app/media-pipeline/internal/logger"
	"github.com/amora-app/media-pipeline/internal/media/transcoder"
	"github.com/amora-app/media-pipeline/internal/mocks"
)

func init() {
	// Initialize logger for testing
	_ = logger.Initialize(logger.Config{
		Debug: true,
	})
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router     *gin.Engine
	processor  *mocks.MockProcessor
	cleaner    *mocks.MockCleaner
	transcoder *mocks.MockTranscoder
}

func newTestAPI(ctrl *gomock.Controller) *testAPI {
	api := &testAPI{
		router:     gin.New(),
		processor:  mocks.NewMockProcessor(ctrl),
		cleaner:    mocks.NewMockCleaner(ctrl),
		transcoder: mocks.NewMockTranscoder(ctrl),
	}
	handler := rest.NewHandler(api.processor, api.cleaner, api.transcoder, "minio", domain.DefaultMaxVideoSize)
	rest.SetupRoutes(api.router, handler)
	return api
}

func (a *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// uploadForm is one multipart upload; an empty filename omits the file part
type uploadForm struct {
	filename    string
	contentType string
	content     []byte
	fields      map[string]string
}

func newUploadRequest(t *testing.T, form uploadForm) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for name, value := range form.fields {
		require.NoError(t, mw.WriteField(name, value))
	}

	if form.filename != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, form.filename))
		header.Set("Content-Type", form.contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(form.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newDeleteRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/media", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	var body struct {
		Error map[string]string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestUploadMedia_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := newTestAPI(ctrl)
	content := []byte("\xFF\xD8\xFF\xE0 jpeg bytes")

	api.processor.EXPECT().
		Process(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *domain.UploadRequest) (*domain.UploadResult, error) {
			assert.Equal(t, int64(42), req.OwnerID)
			assert.Equal(t, "profile", req.Context)
			assert.Equal(t, "image/jpeg", req.MimeType)
			assert.Equal(t, "me.jpg", req.Filename)
			assert.Equal(t, int64(len(content)), req.Size)

			data, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			assert.Equal(t, content, data)

			return &domain.UploadResult{
				Kind: domain.MediaKindImage,
				Renditions: map[domain.Tier]domain.Rendition{
					domain.TierOriginal: {
						Tier: domain.TierOriginal,
						Key:  "media/profile/42/1772366400_01habc.webp",
						URL:  "https://cdn.example.com/media/profile/42/1772366400_01habc.webp",
					},
				},
				Metadata: domain.Metadata{
					FileSize:    int64(len(content)),
					MimeType:    "image/jpeg",
					ProcessedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
				},
			}, nil
		})

	w := api.do(newUploadRequest(t, uploadForm{
		filename:    "me.jpg",
		contentType: "image/jpeg",
		content:     content,
		fields:      map[string]string{"owner_id": "42", "context": "profile"},
	}))

	require.Equal(t, http.StatusCreated, w.Code)

	var result domain.UploadResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, domain.MediaKindImage, result.Kind)
	assert.Equal(t, "media/profile/42/1772366400_01habc.webp", result.Renditions[domain.TierOriginal].Key)
}

func TestUploadMedia_VoiceOptions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := newTestAPI(ctrl)
	api.processor.EXPECT().
		Process(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *domain.UploadRequest) (*domain.UploadResult, error) {
			assert.Equal(t, "true", req.Options[domain.OptionIsVoiceMessage])
			assert.Equal(t, "7.5", req.Options[domain.OptionDurationHint])
			return &domain.UploadResult{Kind: domain.MediaKindVoice}, nil
		})

	w := api.do(newUploadRequest(t, uploadForm{
		filename:    "note.m4a",
		contentType: "audio/x-m4a",
		content:     []byte("m4a"),
		fields: map[string]string{
			"owner_id":                  "7",
			"context":                   "chat",
			domain.OptionIsVoiceMessage: "true",
			domain.OptionDurationHint:   "7.5",
		},
	}))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUploadMedia_RequestValidation(t *testing.T) {
	tests := []struct {
		name       string
		form       uploadForm
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing file",
			form:       uploadForm{fields: map[string]string{"owner_id": "42"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
		},
		{
			name: "missing owner",
			form: uploadForm{
				filename:    "a.jpg",
				contentType: "image/jpeg",
				content:     []byte("x"),
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_failed",
		},
		{
			name: "negative owner",
			form: uploadForm{
				filename:    "a.jpg",
				contentType: "image/jpeg",
				content:     []byte("x"),
				fields:      map[string]string{"owner_id": "-3"},
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_failed",
		},
		{
			name: "non-numeric duration hint",
			form: uploadForm{
				filename:    "a.ogg",
				contentType: "audio/ogg",
				content:     []byte("x"),
				fields:      map[string]string{"owner_id": "42", domain.OptionDurationHint: "long"},
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			api := newTestAPI(ctrl)
			api.processor.EXPECT().Process(gomock.Any(), gomock.Any()).Times(0)

			w := api.do(newUploadRequest(t, tt.form))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w)["code"])
		})
	}
}

func TestUploadMedia_PipelineErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid input",
			err:        fmt.Errorf("%w: video upload of 150 MiB exceeds the 100 MiB limit", domain.ErrInvalidInput),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "invalid_input",
		},
		{
			name:       "tool unavailable",
			err:        fmt.Errorf("%w: ffmpeg not found", domain.ErrToolUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "tool_unavailable",
		},
		{
			name:       "conversion failed",
			err:        fmt.Errorf("%w: transcode_video: exit status 1", domain.ErrConversionFailed),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "conversion_failed",
		},
		{
			name:       "upload failed",
			err:        fmt.Errorf("%w: bucket unreachable", domain.ErrUploadFailed),
			wantStatus: http.StatusBadGateway,
			wantCode:   "upload_failed",
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			api := newTestAPI(ctrl)
			api.processor.EXPECT().Process(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			w := api.do(newUploadRequest(t, uploadForm{
				filename:    "clip.mp4",
				contentType: "video/mp4",
				content:     []byte("mp4"),
				fields:      map[string]string{"owner_id": "42", "context": "chat"},
			}))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w)["code"])
		})
	}
}

func TestUploadMedia_ToolUnavailableHidesDetails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := newTestAPI(ctrl)
	api.processor.EXPECT().
		Process(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: ffmpeg not found in /opt/bin", domain.ErrToolUnavailable))

	w := api.do(newUploadRequest(t, uploadForm{
		filename:    "clip.mp4",
		contentType: "video/mp4",
		content:     []byte("mp4"),
		fields:      map[string]string{"owner_id": "42"},
	}))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "/opt/bin")
}

func TestDeleteMedia_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := newTestAPI(ctrl)
	keys := []string{"media/profile/42/a.webp", "media/profile/42/gone.webp"}
	api.cleaner.EXPECT().
		DeleteMany(gomock.Any(), keys).
		Return(domain.DeleteResult{
			Success:    true,
			Deleted:    []string{"media/profile/42/a.webp"},
			Missing:    []string{"media/profile/42/gone.webp"},
			FailedKeys: []string{},
		})

	w := api.do(newDeleteRequest(`{"keys":["media/profile/42/a.webp","media/profile/42/gone.webp"]}`))

	require.Equal(t, http.StatusOK, w.Code)

	var resp rest.DeleteMediaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"media/profile/42/a.webp"}, resp.Deleted)
	assert.Equal(t, []string{"media/profile/42/gone.webp"}, resp.Missing)
	assert.Empty(t, resp.FailedKeys)
}

func TestDeleteMedia_ResolvesURLs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := newTestAPI(ctrl)
	gomock.InOrder(
		api.cleaner.EXPECT().
			KeyFromURL("https://cdn.example.com/media/profile/42/b.webp").
			Return("media/profile/42/b.webp"),
		api.cleaner.EXPECT().
			KeyFromURL("https://cdn.example.com/media/profile/42/thumbnails/b_thumb.webp").
			Return("media/profile/42/thumbnails/b_thumb.webp"),
	)
	api.cleaner.EXPECT().
		DeleteMany(gomock.Any(), []string{
			"media/profile/42/a.webp",
			"media/profile/42/b.webp",
			"media/profile/42/thumbnails/b_thumb.webp",
		}).
		Return(domain.DeleteResult{
			Success: true,
			Deleted: []string{
				"media/profile/42/a.webp",
				"media/profile/42/b.webp",
				"media/profile/42/thumbnails/b_thumb.webp",
			},
			FailedKeys: []string{},
		})

	w := api.do(newDeleteRequest(`{
		"keys":["media/profile/42/a.webp"],
		"urls":["https://cdn.example.com/media/profile/42/b.webp","https://cdn.example.com/media/profile/42/thumbnails/b_thumb.webp"]
	}`))

	require.Equal(t, http.StatusOK, w.Code)

	var resp rest.DeleteMediaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Deleted, 3)
}

func TestDeleteMedia_PartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	api := newTestAPI(ctrl)
	api.cleaner.EXPECT().
		DeleteMany(gomock.Any(), []string{"a", "b"}).
		Return(domain.DeleteResult{
			Success:    false,
			Deleted:    []string{"a"},
			FailedKeys: []string{"b"},
		})

	w := api.do(newDeleteRequest(`{"keys":["a","b"]}`))

	require.Equal(t, http.StatusOK, w.Code)

	var resp rest.DeleteMediaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, []string{"b"}, resp.FailedKeys)
}

func TestDeleteMedia_RequestValidation(t *testing.T) {
	tooMany := make([]string, 101)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("%q", fmt.Sprintf("k%d", i))
	}
	someURLs := make([]string, 41)
	for i := range someURLs {
		someURLs[i] = fmt.Sprintf("%q", fmt.Sprintf("https://cdn.example.com/u%d.webp", i))
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed json",
			body:       `{"keys":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
		},
		{
			name:       "no keys",
			body:       `{"keys":[]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_failed",
		},
		{
			name:       "too many keys",
			body:       `{"keys":[` + strings.Join(tooMany, ",") + `]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_failed",
		},
		{
			name:       "no keys or urls",
			body:       `{"keys":[],"urls":[]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_failed",
		},
		{
			name:       "too many keys and urls combined",
			body:       `{"keys":[` + strings.Join(tooMany[:60], ",") + `],"urls":[` + strings.Join(someURLs, ",") + `]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			api := newTestAPI(ctrl)
			api.cleaner.EXPECT().KeyFromURL(gomock.Any()).Return("media/resolved.webp").AnyTimes()
			api.cleaner.EXPECT().DeleteMany(gomock.Any(), gomock.Any()).Times(0)

			w := api.do(newDeleteRequest(tt.body))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w)["code"])
		})
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		toolsErr       error
		wantTranscoder string
	}{
		{
			name:           "tools available",
			wantTranscoder: "available",
		},
		{
			name:           "tools missing",
			toolsErr:       fmt.Errorf("%w: ffprobe not found", domain.ErrToolUnavailable),
			wantTranscoder: "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			api := newTestAPI(ctrl)
			if tt.toolsErr != nil {
				api.transcoder.EXPECT().Tools().Return(nil, tt.toolsErr)
			} else {
				api.transcoder.EXPECT().Tools().Return(&transcoder.Tools{FFmpeg: "/usr/bin/ffmpeg", FFprobe: "/usr/bin/ffprobe"}, nil)
			}

			w := api.do(httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, http.StatusOK, w.Code)

			var resp rest.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "ok", resp.Status)
			assert.Equal(t, "media-api", resp.Service)
			assert.Equal(t, "minio", resp.Storage)
			assert.Equal(t, tt.wantTranscoder, resp.Transcoder)
		})
	}
}
