package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/bayesbench/datasets"
	"github.com/YuminosukeSato/bayesbench/internal/evaluation"
	"github.com/YuminosukeSato/bayesbench/pkg/errors"
	"github.com/YuminosukeSato/bayesbench/pkg/log"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const clustersCSV = "x,label\n1,a\n2,a\n3,a\n10,b\n11,b\n12,b\n"

func newTrainedService(t *testing.T) *evaluation.Service {
	t.Helper()
	logger, _ := log.NewTestLogger(log.LevelError)
	svc := evaluation.NewService(evaluation.WithLogger(logger))
	ds, err := datasets.ReadCSV("clusters", strings.NewReader(clustersCSV), datasets.DefaultCSVOptions())
	require.NoError(t, err)
	require.NoError(t, svc.Train(context.Background(), ds))
	return svc
}

func newTestRouter(svc DatasetService) (*gin.Engine, *log.TestLogger) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	h := NewDatasetHandler(svc, logger)
	health := NewHealthHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(RequestIDKey, "req-1")
		c.Next()
	})
	router.GET("/", h.Welcome)
	router.GET("/health", health.Health)
	router.GET("/ready", health.Ready)
	router.GET("/:name", h.LegacyReport)
	router.GET("/api/v1/datasets", h.ListDatasets)
	router.GET("/api/v1/datasets/:name", h.GetReport)
	router.GET("/api/v1/datasets/:name/chart.png", h.GetChart)
	router.POST("/api/v1/datasets/:name/predict", h.Predict)
	return router, logger
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) (Response, map[string]json.RawMessage) {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	return resp, raw
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"dataset not found", errors.Wrapf(evaluation.ErrDatasetNotFound, "dataset %q", "x"), http.StatusNotFound, CodeNotFound},
		{"shape mismatch", errors.NewDimensionError("Predict", 4, 3, 1), http.StatusUnprocessableEntity, CodeShapeMismatch},
		{"not fitted", errors.NewNotFittedError("GaussianNB", "Predict"), http.StatusConflict, CodeNotFitted},
		{"degenerate class", errors.NewDegenerateClassError("Fit", 2, 1), http.StatusUnprocessableEntity, CodeDegenerateClass},
		{"zero variance", errors.NewZeroVarianceError("Fit", 0, 1), http.StatusUnprocessableEntity, CodeZeroVariance},
		{"numerical instability", errors.NewNumericalInstabilityError("Predict", []float64{1}, 0), http.StatusBadRequest, CodeInvalidInput},
		{"validation", errors.NewValidationError("y", "must be integral", 1.5), http.StatusBadRequest, CodeInvalidInput},
		{"empty data", errors.NewModelError("Service.Predict", "no rows to predict", errors.ErrEmptyData), http.StatusBadRequest, CodeInvalidInput},
		{"wrapped shape mismatch", errors.Wrap(errors.NewDimensionError("Predict", 4, 3, 1), "dataset iris"), http.StatusUnprocessableEntity, CodeShapeMismatch},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			assert.Equal(t, tt.status, got.StatusCode)
			assert.Equal(t, tt.code, got.Code)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestMapErrorHidesInternalMessage(t *testing.T) {
	got := MapError(errors.New("secret detail"))
	assert.Equal(t, "internal server error", got.Message)
}

func TestWelcome(t *testing.T) {
	router, _ := newTestRouter(newTrainedService(t))

	w := do(router, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, WelcomeMessage, w.Body.String())
}

func TestLegacyReport(t *testing.T) {
	router, _ := newTestRouter(newTrainedService(t))

	t.Run("bare report body", func(t *testing.T) {
		w := do(router, http.MethodGet, "/clusters", "")
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "100.00%", body["accuracy"])
		assert.Equal(t, "6/6", body["correctly_classified"])
		assert.Equal(t, float64(6), body["number_of_examples"])
		assert.Equal(t, float64(1), body["number_of_attributes"])
		assert.Equal(t, float64(2), body["number_of_classes"])
		assert.NotContains(t, body, "success")
		assert.Len(t, body["confusion_matrix"], 2)
	})

	t.Run("unknown dataset", func(t *testing.T) {
		w := do(router, http.MethodGet, "/wine", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		resp, _ := decode(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, CodeNotFound, resp.Error.Code)
	})
}

func TestListDatasets(t *testing.T) {
	router, _ := newTestRouter(newTrainedService(t))

	w := do(router, http.MethodGet, "/api/v1/datasets", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                 `json:"success"`
		Data    []evaluation.Summary `json:"data"`
		Meta    MetaInfo             `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "clusters", resp.Data[0].Name)
	assert.Equal(t, []string{"a", "b"}, resp.Data[0].ClassNames)
	assert.Equal(t, "req-1", resp.Meta.RequestID)
	assert.NotEmpty(t, resp.Meta.Timestamp)
}

func TestGetReport(t *testing.T) {
	router, _ := newTestRouter(newTrainedService(t))

	w := do(router, http.MethodGet, "/api/v1/datasets/clusters", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    evaluation.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "clusters", resp.Data.Dataset)
	assert.Equal(t, []evaluation.ConfusionRow{
		{ClassName: "a", Row: []int{3, 0}},
		{ClassName: "b", Row: []int{0, 3}},
	}, resp.Data.ConfusionMatrix)

	w = do(router, http.MethodGet, "/api/v1/datasets/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetChart(t *testing.T) {
	router, _ := newTestRouter(newTrainedService(t))

	w := do(router, http.MethodGet, "/api/v1/datasets/clusters/chart.png", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestPredict(t *testing.T) {
	router, logger := newTestRouter(newTrainedService(t))

	t.Run("labels and class names", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/v1/datasets/clusters/predict", `{"instances": [[1.5], [10.5]]}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool                  `json:"success"`
			Data    evaluation.Prediction `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, []int{0, 1}, resp.Data.Labels)
		assert.Equal(t, []string{"a", "b"}, resp.Data.ClassNames)
		assert.True(t, logger.ContainsMessage("Prediction served"))
	})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"wrong width", "/api/v1/datasets/clusters/predict", `{"instances": [[1, 2]]}`, http.StatusUnprocessableEntity, CodeShapeMismatch},
		{"empty instances", "/api/v1/datasets/clusters/predict", `{"instances": []}`, http.StatusBadRequest, CodeInvalidInput},
		{"missing instances", "/api/v1/datasets/clusters/predict", `{}`, http.StatusBadRequest, CodeInvalidInput},
		{"malformed body", "/api/v1/datasets/clusters/predict", `{"instances": [[1,]]`, http.StatusBadRequest, CodeInvalidInput},
		{"unknown dataset", "/api/v1/datasets/nope/predict", `{"instances": [[1]]}`, http.StatusNotFound, CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			resp, raw := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotContains(t, raw, "data")
		})
	}
}

func TestHealth(t *testing.T) {
	t.Run("ready after training", func(t *testing.T) {
		router, _ := newTestRouter(newTrainedService(t))

		w := do(router, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"healthy"`)

		w = do(router, http.MethodGet, "/ready", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ready"`)
	})

	t.Run("not ready without datasets", func(t *testing.T) {
		router, _ := newTestRouter(evaluation.NewService())

		w := do(router, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)

		w = do(router, http.MethodGet, "/ready", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "not ready")
	})
}
