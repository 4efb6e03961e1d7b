package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/YuminosukeSato/bayesbench/internal/evaluation"
	"github.com/YuminosukeSato/bayesbench/pkg/log"
)

// DatasetService is the part of evaluation.Service the handlers use.
type DatasetService interface {
	Ready() bool
	Datasets() []evaluation.Summary
	Report(name string) (*evaluation.Report, error)
	Predict(ctx context.Context, name string, rows [][]float64) (*evaluation.Prediction, error)
	Chart(name string, w io.Writer) error
}

// WelcomeMessage is the body of GET /.
const WelcomeMessage = "Welcome to the API!"

// DatasetHandler serves reports, charts and predictions.
type DatasetHandler struct {
	svc    DatasetService
	logger log.Logger
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(svc DatasetService, logger log.Logger) *DatasetHandler {
	return &DatasetHandler{svc: svc, logger: logger}
}

// PredictRequest is the body of POST /api/v1/datasets/:name/predict.
type PredictRequest struct {
	Instances [][]float64 `json:"instances" binding:"required"`
}

// Welcome handles GET /
func (h *DatasetHandler) Welcome(c *gin.Context) {
	c.String(http.StatusOK, WelcomeMessage)
}

// LegacyReport handles GET /<dataset> with the bare report as body.
func (h *DatasetHandler) LegacyReport(c *gin.Context) {
	report, err := h.svc.Report(c.Param("name"))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListDatasets handles GET /api/v1/datasets
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	respondSuccess(c, http.StatusOK, h.svc.Datasets())
}

// GetReport handles GET /api/v1/datasets/:name
func (h *DatasetHandler) GetReport(c *gin.Context) {
	report, err := h.svc.Report(c.Param("name"))
	if err != nil {
		HandleError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, report)
}

// GetChart handles GET /api/v1/datasets/:name/chart.png
func (h *DatasetHandler) GetChart(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.Chart(c.Param("name"), &buf); err != nil {
		HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// Predict handles POST /api/v1/datasets/:name/predict
func (h *DatasetHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleInvalidRequest(c, "invalid request body: "+err.Error())
		return
	}

	name := c.Param("name")
	pred, err := h.svc.Predict(c.Request.Context(), name, req.Instances)
	if err != nil {
		h.logger.Warn("Prediction rejected", err,
			log.DatasetKey, name,
			log.RequestIDKey, c.GetString(RequestIDKey),
		)
		HandleError(c, err)
		return
	}

	h.logger.Debug("Prediction served",
		log.DatasetKey, name,
		log.OperationKey, log.OperationPredict,
		log.PredsKey, len(pred.Labels),
		log.RequestIDKey, c.GetString(RequestIDKey),
	)
	respondSuccess(c, http.StatusOK, pred)
}
