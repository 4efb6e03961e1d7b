// Package bayesbench trains Gaussian Naive Bayes classifiers on tabular CSV
// datasets and reports how well each model classifies its training data,
// either from the command line or over an HTTP API.
//
// # Features
//
// - GaussianNB with unbiased per-class variances and log-space scoring
// - scikit-learn-like API on gonum matrices (Fit, Predict, PredictProba, Score)
// - Typed errors with stack traces (DimensionError, DegenerateClassError, ...)
// - Pluggable structured logging (slog, zerolog, zap)
// - Gin API with Prometheus metrics and per-class PNG charts
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/bayesbench/sklearn/naive_bayes"
//	)
//
//	func main() {
//	    X := [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}
//	    y := []int{0, 0, 0, 1, 1, 1}
//
//	    model := naive_bayes.NewGaussianNB()
//	    if err := model.FitRows(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    labels, err := model.PredictRows([][]float64{{1.5}, {10.5}})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(labels) // [0 1]
//	}
//
// # Packages
//
//   - sklearn/naive_bayes: the GaussianNB classifier
//   - datasets: CSV loading into gonum matrices
//   - preprocessing: LabelEncoder for string class labels
//   - metrics: accuracy, confusion matrix, per-class recall
//   - core/model: estimator interfaces and the fitted-state manager
//   - core/parallel: row-chunked parallel execution
//   - pkg/errors, pkg/log: error types and structured logging
//   - internal/evaluation, internal/api, internal/config: the service
//   - cmd/bayesbench: the serve and evaluate commands
//
// # Server
//
//	bayesbench serve --config bayesbench.yaml
//
// serves GET /iris and GET /banknote with the report of each dataset, plus
// the /api/v1/datasets routes, /health, /ready and /metrics. Settings may be
// overridden with BAYESBENCH_* environment variables.
package bayesbench
