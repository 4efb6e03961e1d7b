package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/YuminosukeSato/bayesbench/internal/evaluation"
	"github.com/YuminosukeSato/bayesbench/pkg/errors"
)

// Error codes returned in ErrorInfo.Code.
const (
	CodeShapeMismatch   = "SHAPE_MISMATCH"
	CodeNotFitted       = "NOT_FITTED"
	CodeDegenerateClass = "DEGENERATE_CLASS"
	CodeZeroVariance    = "ZERO_VARIANCE"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrorResponse is the HTTP rendering of an error.
type ErrorResponse struct {
	StatusCode int
	Code       string
	Message    string
}

// MapError maps classifier and service errors to HTTP error responses.
func MapError(err error) ErrorResponse {
	var (
		dimErr   *errors.DimensionError
		nfErr    *errors.NotFittedError
		degErr   *errors.DegenerateClassError
		zvErr    *errors.ZeroVarianceError
		numErr   *errors.NumericalInstabilityError
		valErr   *errors.ValidationError
		valueErr *errors.ValueError
	)
	switch {
	case errors.Is(err, evaluation.ErrDatasetNotFound):
		return ErrorResponse{StatusCode: http.StatusNotFound, Code: CodeNotFound, Message: err.Error()}
	case errors.As(err, &dimErr):
		return ErrorResponse{StatusCode: http.StatusUnprocessableEntity, Code: CodeShapeMismatch, Message: dimErr.Error()}
	case errors.As(err, &nfErr):
		return ErrorResponse{StatusCode: http.StatusConflict, Code: CodeNotFitted, Message: nfErr.Error()}
	case errors.As(err, &degErr):
		return ErrorResponse{StatusCode: http.StatusUnprocessableEntity, Code: CodeDegenerateClass, Message: degErr.Error()}
	case errors.As(err, &zvErr):
		return ErrorResponse{StatusCode: http.StatusUnprocessableEntity, Code: CodeZeroVariance, Message: zvErr.Error()}
	case errors.As(err, &numErr):
		return ErrorResponse{StatusCode: http.StatusBadRequest, Code: CodeInvalidInput, Message: numErr.Error()}
	case errors.As(err, &valErr):
		return ErrorResponse{StatusCode: http.StatusBadRequest, Code: CodeInvalidInput, Message: valErr.Error()}
	case errors.As(err, &valueErr), errors.Is(err, errors.ErrEmptyData):
		return ErrorResponse{StatusCode: http.StatusBadRequest, Code: CodeInvalidInput, Message: err.Error()}
	default:
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       CodeInternal,
			Message:    "internal server error",
		}
	}
}

// HandleError sends the response MapError selects for err.
func HandleError(c *gin.Context, err error) {
	errResp := MapError(err)
	if errResp.StatusCode >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	RespondError(c, errResp.StatusCode, errResp.Code, errResp.Message)
}

// HandleInvalidRequest handles a malformed request body.
func HandleInvalidRequest(c *gin.Context, message string) {
	RespondError(c, http.StatusBadRequest, CodeInvalidInput, message)
}
