package evaluation

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/bayesbench/core/parallel"
	"github.com/YuminosukeSato/bayesbench/datasets"
	"github.com/YuminosukeSato/bayesbench/pkg/errors"
	"github.com/YuminosukeSato/bayesbench/pkg/log"
	"github.com/YuminosukeSato/bayesbench/sklearn/naive_bayes"
)

// ErrDatasetNotFound is returned for names the service has not trained.
var ErrDatasetNotFound = errors.New("dataset not found")

// Source names a dataset file to load at startup.
type Source struct {
	Name    string
	Path    string
	Options datasets.CSVOptions
}

// Summary describes one trained dataset.
type Summary struct {
	Name       string    `json:"name"`
	Samples    int       `json:"number_of_examples"`
	Features   int       `json:"number_of_attributes"`
	Classes    int       `json:"number_of_classes"`
	ClassNames []string  `json:"class_names"`
	Accuracy   string    `json:"accuracy"`
	TrainedAt  time.Time `json:"trained_at"`
}

// Prediction holds the predicted class codes and their original names.
type Prediction struct {
	Labels     []int    `json:"labels"`
	ClassNames []string `json:"class_names"`
}

type entry struct {
	ds        *datasets.Dataset
	model     *naive_bayes.GaussianNB
	report    *Report
	trainedAt time.Time
}

// Service owns the trained models. Training happens once at startup;
// afterwards the service is read-only and safe for concurrent use.
type Service struct {
	mu      sync.RWMutex
	entries map[string]*entry

	modelOpts []naive_bayes.Option
	logger    log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithModelOptions applies opts to every GaussianNB the service trains.
func WithModelOptions(opts ...naive_bayes.Option) Option {
	return func(s *Service) {
		s.modelOpts = append(s.modelOpts, opts...)
	}
}

// WithLogger sets the service logger.
func WithLogger(l log.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates an empty Service.
func NewService(opts ...Option) *Service {
	s := &Service{entries: make(map[string]*entry)}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetLoggerWithName("evaluation")
	}
	return s
}

// Train fits a model on ds, evaluates it and registers it under ds.Name,
// replacing any previous model of that name.
func (s *Service) Train(ctx context.Context, ds *datasets.Dataset) (err error) {
	defer errors.Recover(&err, "Service.Train")

	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	logger := s.logger.With(log.DatasetKey, ds.Name, log.EstimatorIDKey, ds.Name)

	opts := append([]naive_bayes.Option{naive_bayes.WithLogger(logger)}, s.modelOpts...)
	nb := naive_bayes.NewGaussianNB(opts...)

	labels := make([]float64, len(ds.Y))
	for i, y := range ds.Y {
		labels[i] = float64(y)
	}
	if err := nb.Fit(ds.X, mat.NewVecDense(len(labels), labels)); err != nil {
		logger.Error("Training failed", err, log.OperationKey, log.OperationFit)
		return errors.Wrapf(err, "dataset %s", ds.Name)
	}

	report, err := Evaluate(ds, nb)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[ds.Name] = &entry{ds: ds, model: nb, report: report, trainedAt: time.Now()}
	s.mu.Unlock()

	logger.Info("Dataset trained",
		log.OperationKey, log.OperationEvaluate,
		log.PhaseKey, log.PhaseStartup,
		log.SamplesKey, report.NumberOfExamples,
		log.FeaturesKey, report.NumberOfAttributes,
		log.ClassesKey, report.NumberOfClasses,
		log.AccuracyKey, report.AccuracyValue,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// LoadAll reads and trains every source concurrently. Failures do not stop
// the remaining sources; they are combined into the returned error.
func (s *Service) LoadAll(ctx context.Context, sources []Source) error {
	var (
		mu  sync.Mutex
		err error
	)
	parallel.Parallelize(len(sources), func(start, end int) {
		for _, src := range sources[start:end] {
			if e := s.load(ctx, src); e != nil {
				mu.Lock()
				err = multierr.Append(err, e)
				mu.Unlock()
			}
		}
	})
	return err
}

func (s *Service) load(ctx context.Context, src Source) error {
	ds, err := datasets.LoadCSV(src.Name, src.Path, src.Options)
	if err != nil {
		s.logger.Error("Dataset load failed", err, log.DatasetKey, src.Name, log.PathKey, src.Path)
		return err
	}
	return s.Train(ctx, ds)
}

// Ready reports whether at least one dataset is trained.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries) > 0
}

func (s *Service) get(name string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	if !ok {
		return nil, errors.Wrapf(ErrDatasetNotFound, "dataset %q", name)
	}
	return e, nil
}

// Report returns the evaluation report of name.
func (s *Service) Report(name string) (*Report, error) {
	e, err := s.get(name)
	if err != nil {
		return nil, err
	}
	return e.report, nil
}

// Datasets lists the trained datasets sorted by name.
func (s *Service) Datasets() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Summary, 0, len(names))
	for _, name := range names {
		e := s.entries[name]
		out = append(out, Summary{
			Name:       name,
			Samples:    e.report.NumberOfExamples,
			Features:   e.report.NumberOfAttributes,
			Classes:    e.report.NumberOfClasses,
			ClassNames: e.ds.ClassNames(),
			Accuracy:   e.report.Accuracy,
			TrainedAt:  e.trainedAt,
		})
	}
	return out
}

// Predict classifies rows with the model trained on name.
func (s *Service) Predict(ctx context.Context, name string, rows [][]float64) (*Prediction, error) {
	e, err := s.get(name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.NewModelError("Service.Predict", "no rows to predict", errors.ErrEmptyData)
	}

	labels, err := e.model.PredictRowsContext(ctx, rows)
	if err != nil {
		return nil, err
	}
	names, err := e.ds.Encoder.InverseTransform(labels)
	if err != nil {
		return nil, err
	}
	return &Prediction{Labels: labels, ClassNames: names}, nil
}
