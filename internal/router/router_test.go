package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"finextract/internal/domain"
	"finextract/internal/handler"
	"finextract/internal/router"
	"finextract/mocks"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func TestSetup_RoutesExtractionEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(mocks.MockExtractionService)
	r := router.Setup(
		[]string{"http://localhost:5173"},
		handler.NewExtractionHandler(svc),
		handler.NewHealthHandler(okPinger{}),
	)

	runID := uuid.New()
	svc.On("GetByID", mock.Anything, runID).Return(&domain.ExtractionRun{ID: runID, Status: domain.RunStatusProcessing}, nil)
	svc.On("List", mock.Anything, 0, 20).Return([]domain.ExtractionRun{}, 0, nil)
	svc.On("Delete", mock.Anything, runID).Return(nil)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/api/v1/extractions", http.StatusOK},
		{http.MethodGet, "/api/v1/extractions/" + runID.String(), http.StatusOK},
		{http.MethodDelete, "/api/v1/extractions/" + runID.String(), http.StatusOK},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(tt.method, tt.path, http.NoBody)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}
