package naive_bayes

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/YuminosukeSato/bayesbench/core/model"
	"github.com/YuminosukeSato/bayesbench/core/parallel"
	"github.com/YuminosukeSato/bayesbench/metrics"
	"github.com/YuminosukeSato/bayesbench/pkg/errors"
	"github.com/YuminosukeSato/bayesbench/pkg/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	modelName = "GaussianNB"

	// DefaultParallelThreshold is the batch size above which prediction rows
	// are spread over CPU cores.
	DefaultParallelThreshold = 1000

	priorSumTolerance = 1e-9
)

var _ model.Classifier = (*GaussianNB)(nil)

// GaussianNB implements Gaussian Naive Bayes classification.
// Compatible with scikit-learn's GaussianNB.
type GaussianNB struct {
	state *model.StateManager // State management (composition)

	// Hyperparameters
	varSmoothing      float64   // Portion of the largest attribute variance added to all variances
	priors            []float64 // Fixed class priors, nil to estimate from data
	parallelThreshold int       // Rows per batch before prediction goes parallel

	logger log.Logger

	// Learned parameters, nil while unfitted. Replaced wholesale by Fit.
	params *gaussianParams
}

// gaussianParams is the immutable result of one Fit.
type gaussianParams struct {
	classes   []int       // Sorted distinct labels
	means     [][]float64 // [class][attribute]
	variances [][]float64 // [class][attribute], unbiased, epsilon included
	priors    []float64
	logPriors []float64
	counts    []int
	epsilon   float64
	nFeatures int
}

// Option is a functional option for GaussianNB
type Option func(*GaussianNB)

// NewGaussianNB creates a new GaussianNB classifier
func NewGaussianNB(opts ...Option) *GaussianNB {
	nb := &GaussianNB{
		state:             model.NewStateManager(),
		parallelThreshold: DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(nb)
	}
	if nb.logger == nil {
		nb.logger = log.GetLoggerWithName("naive_bayes")
	}
	nb.logger = nb.logger.With(log.ModelNameKey, modelName)
	return nb
}

// WithVarSmoothing adds eps times the largest attribute variance of the
// training set to every class variance. The default 0 keeps variances
// unsmoothed, so constant attributes fail with ZeroVarianceError.
func WithVarSmoothing(eps float64) Option {
	return func(nb *GaussianNB) {
		nb.varSmoothing = eps
	}
}

// WithPriors fixes the class priors instead of estimating them from class
// frequencies. One non-negative value per class, summing to 1.
func WithPriors(priors []float64) Option {
	return func(nb *GaussianNB) {
		nb.priors = append([]float64(nil), priors...)
	}
}

// WithParallelThreshold sets the batch size above which prediction is
// parallelized.
func WithParallelThreshold(n int) Option {
	return func(nb *GaussianNB) {
		nb.parallelThreshold = n
	}
}

// WithLogger sets the logger used for training and prediction events.
func WithLogger(l log.Logger) Option {
	return func(nb *GaussianNB) {
		nb.logger = l
	}
}

// Fit trains the model. X is n×D, y an n×1 column of integral class ids.
func (nb *GaussianNB) Fit(X, y mat.Matrix) error {
	const op = "GaussianNB.Fit"
	if X == nil || y == nil {
		return errors.NewModelError(op, "no training rows", errors.ErrEmptyData)
	}

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError(op, "no training rows", errors.ErrEmptyData)
	}
	yRows, yCols := y.Dims()
	if yRows != nSamples {
		return errors.NewDimensionError(op, nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValidationError("y", "must be a column vector (n×1 matrix)", fmt.Sprintf("%d×%d", yRows, yCols))
	}

	labels := make([]int, nSamples)
	for i := 0; i < nSamples; i++ {
		v := y.At(i, 0)
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return errors.NewValidationError("y", "labels must be integral class ids", v)
		}
		// float64(math.MaxInt64) は 2^63 に丸められるので >= で比較する
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return errors.NewValidationError("y", "label out of int range", v)
		}
		labels[i] = int(v)
	}

	rows := make([][]float64, nSamples)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}
	return nb.fit(op, rows, labels)
}

// FitRows trains the model from feature vectors and their labels.
func (nb *GaussianNB) FitRows(attributes [][]float64, labels []int) error {
	const op = "GaussianNB.FitRows"
	if len(attributes) == 0 {
		return errors.NewModelError(op, "no training rows", errors.ErrEmptyData)
	}
	if len(labels) != len(attributes) {
		return errors.NewDimensionError(op, len(attributes), len(labels), 0)
	}
	width := len(attributes[0])
	if width == 0 {
		return errors.NewValidationError("attributes", "feature vectors need at least one attribute", 0)
	}
	for _, row := range attributes {
		if len(row) != width {
			return errors.NewDimensionError(op, width, len(row), 1)
		}
	}
	return nb.fit(op, attributes, append([]int(nil), labels...))
}

func (nb *GaussianNB) fit(op string, rows [][]float64, labels []int) error {
	start := time.Now()
	nSamples, nFeatures := len(rows), len(rows[0])

	if nb.varSmoothing < 0 || math.IsNaN(nb.varSmoothing) || math.IsInf(nb.varSmoothing, 0) {
		return errors.NewValidationError("var_smoothing", "must be a finite non-negative number", nb.varSmoothing)
	}
	for i, row := range rows {
		if err := errors.CheckNumericalStability(op, row, i); err != nil {
			return err
		}
	}

	// クラスごとに行を振り分ける（クラスは昇順）
	members := make(map[int][]int)
	for i, label := range labels {
		members[label] = append(members[label], i)
	}
	classes := make([]int, 0, len(members))
	for c := range members {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	for _, c := range classes {
		if n := len(members[c]); n < 2 {
			return errors.NewDegenerateClassError(op, c, n)
		}
	}

	priors, err := nb.resolvePriors(classes, members, nSamples)
	if err != nil {
		return err
	}

	epsilon := 0.0
	if nb.varSmoothing > 0 {
		epsilon = nb.varSmoothing * maxColumnVariance(rows)
	}

	p := &gaussianParams{
		classes:   classes,
		means:     make([][]float64, len(classes)),
		variances: make([][]float64, len(classes)),
		priors:    priors,
		logPriors: make([]float64, len(classes)),
		counts:    make([]int, len(classes)),
		epsilon:   epsilon,
		nFeatures: nFeatures,
	}

	for ci, c := range classes {
		idx := members[c]
		p.counts[ci] = len(idx)
		p.logPriors[ci] = math.Log(priors[ci])
		p.means[ci] = make([]float64, nFeatures)
		p.variances[ci] = make([]float64, nFeatures)

		column := make([]float64, len(idx))
		for a := 0; a < nFeatures; a++ {
			for k, i := range idx {
				column[k] = rows[i][a]
			}
			mean, variance := stat.MeanVariance(column, nil)
			variance += epsilon
			if !(variance > 0) {
				return errors.NewZeroVarianceError(op, c, a)
			}
			p.means[ci][a] = mean
			p.variances[ci][a] = variance
		}
	}

	err = nb.state.WithStateMut(func() (model.ModelState, error) {
		nb.params = p
		return model.ModelState{NFeatures: nFeatures, NSamples: nSamples, NClasses: len(classes)}, nil
	})
	if err != nil {
		return err
	}

	nb.logger.Debug("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.ClassesKey, len(classes),
		log.VarSmoothingKey, nb.varSmoothing,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

func (nb *GaussianNB) resolvePriors(classes []int, members map[int][]int, nSamples int) ([]float64, error) {
	priors := make([]float64, len(classes))
	if nb.priors == nil {
		for ci, c := range classes {
			priors[ci] = float64(len(members[c])) / float64(nSamples)
		}
		return priors, nil
	}

	if len(nb.priors) != len(classes) {
		return nil, errors.NewValidationError("priors", fmt.Sprintf("need one prior per class (%d classes)", len(classes)), len(nb.priors))
	}
	sum := 0.0
	for ci, pr := range nb.priors {
		if pr < 0 || math.IsNaN(pr) {
			return nil, errors.NewValidationError("priors", "priors must be non-negative", pr)
		}
		priors[ci] = pr
		sum += pr
	}
	if math.Abs(sum-1) > priorSumTolerance {
		return nil, errors.NewValidationError("priors", "priors must sum to 1", sum)
	}
	return priors, nil
}

// maxColumnVariance returns the largest population variance over all
// attributes of rows.
func maxColumnVariance(rows [][]float64) float64 {
	column := make([]float64, len(rows))
	maxVar := 0.0
	for a := range rows[0] {
		for i, row := range rows {
			column[i] = row[a]
		}
		_, v := stat.PopMeanVariance(column, nil)
		if v > maxVar {
			maxVar = v
		}
	}
	return maxVar
}

// snapshot returns the current parameters or a NotFittedError naming method.
func (nb *GaussianNB) snapshot(method string) (*gaussianParams, error) {
	var p *gaussianParams
	_ = nb.state.WithState(func() error {
		p = nb.params
		return nil
	})
	if p == nil {
		return nil, errors.NewNotFittedError(modelName, method)
	}
	return p, nil
}

// Predict returns an n×1 column of predicted class ids, in input row order.
func (nb *GaussianNB) Predict(X mat.Matrix) (mat.Matrix, error) {
	preds, err := nb.predictMatrix(context.Background(), "Predict", X)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(preds), 1, nil)
	for i, c := range preds {
		out.Set(i, 0, float64(c))
	}
	return out, nil
}

// PredictClasses is Predict returning plain class ids.
func (nb *GaussianNB) PredictClasses(X mat.Matrix) ([]int, error) {
	return nb.predictMatrix(context.Background(), "PredictClasses", X)
}

func (nb *GaussianNB) predictMatrix(ctx context.Context, method string, X mat.Matrix) ([]int, error) {
	op := "GaussianNB." + method
	p, err := nb.snapshot(method)
	if err != nil {
		return nil, err
	}
	if X == nil {
		return nil, errors.NewModelError(op, "no rows to predict", errors.ErrEmptyData)
	}
	nRows, nCols := X.Dims()
	if nRows == 0 {
		return nil, errors.NewModelError(op, "no rows to predict", errors.ErrEmptyData)
	}
	if nCols != p.nFeatures {
		return nil, errors.NewDimensionError(op, p.nFeatures, nCols, 1)
	}
	if err := errors.CheckMatrix(op, X, nRows, nCols); err != nil {
		return nil, err
	}

	rows := make([][]float64, nRows)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}
	return nb.predictAll(ctx, p, rows)
}

// PredictRows predicts one class id per feature vector.
func (nb *GaussianNB) PredictRows(rows [][]float64) ([]int, error) {
	return nb.PredictRowsContext(context.Background(), rows)
}

// PredictRowsContext is PredictRows with cancellation. An empty input
// yields an empty result.
func (nb *GaussianNB) PredictRowsContext(ctx context.Context, rows [][]float64) ([]int, error) {
	const op = "GaussianNB.PredictRows"
	p, err := nb.snapshot("PredictRows")
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != p.nFeatures {
			return nil, errors.NewDimensionError(op, p.nFeatures, len(row), 1)
		}
		if err := errors.CheckNumericalStability(op, row, i); err != nil {
			return nil, err
		}
	}
	return nb.predictAll(ctx, p, rows)
}

func (nb *GaussianNB) predictAll(ctx context.Context, p *gaussianParams, rows [][]float64) ([]int, error) {
	start := time.Now()
	preds := make([]int, len(rows))
	err := parallel.ParallelizeErr(ctx, len(rows), nb.parallelThreshold, func(ctx context.Context, s, e int) error {
		jll := make([]float64, len(p.classes))
		for i := s; i < e; i++ {
			if i%256 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			p.jointLogLikelihood(rows[i], jll)
			preds[i] = p.classes[argmax(jll)]
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "GaussianNB.Predict")
	}

	nb.logger.Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.PredsKey, len(preds),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return preds, nil
}

// predictOne returns the MAP class of x. x must have nFeatures entries.
func (p *gaussianParams) predictOne(x []float64) int {
	jll := make([]float64, len(p.classes))
	p.jointLogLikelihood(x, jll)
	return p.classes[argmax(jll)]
}

// jointLogLikelihood writes ln(prior[c]) + Σ_a ln pdf(x[a]) for every class
// into jll.
func (p *gaussianParams) jointLogLikelihood(x []float64, jll []float64) {
	for c := range p.classes {
		score := p.logPriors[c]
		means, variances := p.means[c], p.variances[c]
		for a, v := range x {
			score += LogGaussianPDF(means[a], variances[a], v)
		}
		jll[c] = score
	}
}

// argmax returns the index of the first maximum. Only a strictly greater
// score replaces the current best, so ties keep the lowest index.
func argmax(scores []float64) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}

// GaussianPDF is the normal density with the given mean and variance at x.
// The standard deviation is derived from variance on each call. variance
// must be positive; NaN is returned otherwise.
func GaussianPDF(mean, variance, x float64) float64 {
	if !(variance > 0) {
		return math.NaN()
	}
	stdev := math.Sqrt(variance)
	d := x - mean
	return (1 / (math.Sqrt(2*math.Pi) * stdev)) * math.Exp(-(d*d)/(2*variance))
}

// LogGaussianPDF is ln(GaussianPDF(mean, variance, x)) computed in closed
// form, so it stays finite where GaussianPDF underflows to 0.
func LogGaussianPDF(mean, variance, x float64) float64 {
	if !(variance > 0) {
		return math.NaN()
	}
	return distuv.Normal{Mu: mean, Sigma: math.Sqrt(variance)}.LogProb(x)
}

// PredictLogProba returns an n×K matrix of log posterior probabilities,
// columns ordered as Classes().
func (nb *GaussianNB) PredictLogProba(X mat.Matrix) (mat.Matrix, error) {
	return nb.predictLogProba("PredictLogProba", X)
}

// PredictProba returns an n×K matrix of posterior probabilities. Each row
// sums to 1.
func (nb *GaussianNB) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	logProba, err := nb.predictLogProba("PredictProba", X)
	if err != nil {
		return nil, err
	}
	r, c := logProba.Dims()
	proba := mat.NewDense(r, c, nil)
	proba.Apply(func(_, _ int, v float64) float64 { return math.Exp(v) }, logProba)
	return proba, nil
}

func (nb *GaussianNB) predictLogProba(method string, X mat.Matrix) (*mat.Dense, error) {
	op := "GaussianNB." + method
	p, err := nb.snapshot(method)
	if err != nil {
		return nil, err
	}
	if X == nil {
		return nil, errors.NewModelError(op, "no rows to predict", errors.ErrEmptyData)
	}
	nRows, nCols := X.Dims()
	if nRows == 0 {
		return nil, errors.NewModelError(op, "no rows to predict", errors.ErrEmptyData)
	}
	if nCols != p.nFeatures {
		return nil, errors.NewDimensionError(op, p.nFeatures, nCols, 1)
	}
	if err := errors.CheckMatrix(op, X, nRows, nCols); err != nil {
		return nil, err
	}

	nClasses := len(p.classes)
	out := mat.NewDense(nRows, nClasses, nil)
	parallel.ParallelizeWithThreshold(nRows, nb.parallelThreshold, func(s, e int) {
		x := make([]float64, nCols)
		jll := make([]float64, nClasses)
		for i := s; i < e; i++ {
			mat.Row(x, i, X)
			p.jointLogLikelihood(x, jll)
			norm := errors.LogSumExp(jll)
			if math.IsInf(norm, -1) {
				// 全クラスの尤度が 0 のときは事前確率を返す
				out.SetRow(i, p.logPriors)
				continue
			}
			for c := range jll {
				out.Set(i, c, jll[c]-norm)
			}
		}
	})
	return out, nil
}

// Score returns the mean accuracy of Predict(X) against y.
func (nb *GaussianNB) Score(X, y mat.Matrix) (float64, error) {
	if _, err := nb.snapshot("Score"); err != nil {
		return 0, err
	}
	preds, err := nb.Predict(X)
	if err != nil {
		return 0, err
	}
	if y == nil {
		return 0, errors.NewModelError("GaussianNB.Score", "no labels to score", errors.ErrEmptyData)
	}
	return metrics.AccuracyMatrix(y, preds)
}

// IsFitted reports whether Fit has succeeded at least once.
func (nb *GaussianNB) IsFitted() bool {
	return nb.state.IsFitted()
}

// State returns the fitted dimensions.
func (nb *GaussianNB) State() model.ModelState {
	return nb.state.GetState()
}

// Classes returns the sorted class ids seen during fitting, nil if unfitted.
func (nb *GaussianNB) Classes() []int {
	p, err := nb.snapshot("Classes")
	if err != nil {
		return nil
	}
	return append([]int(nil), p.classes...)
}

// NFeatures returns the attribute count seen during fitting, 0 if unfitted.
func (nb *GaussianNB) NFeatures() int {
	p, err := nb.snapshot("NFeatures")
	if err != nil {
		return 0
	}
	return p.nFeatures
}

// Epsilon returns the variance floor actually added during the last fit.
func (nb *GaussianNB) Epsilon() float64 {
	p, err := nb.snapshot("Epsilon")
	if err != nil {
		return 0
	}
	return p.epsilon
}

// Means returns the per-class attribute means, indexed [class][attribute].
func (nb *GaussianNB) Means() ([][]float64, error) {
	p, err := nb.snapshot("Means")
	if err != nil {
		return nil, err
	}
	return copyMatrix(p.means), nil
}

// Variances returns the per-class attribute variances (unbiased, smoothing
// included), indexed [class][attribute].
func (nb *GaussianNB) Variances() ([][]float64, error) {
	p, err := nb.snapshot("Variances")
	if err != nil {
		return nil, err
	}
	return copyMatrix(p.variances), nil
}

// ClassPriors returns the prior of each class, in Classes() order.
func (nb *GaussianNB) ClassPriors() ([]float64, error) {
	p, err := nb.snapshot("ClassPriors")
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), p.priors...), nil
}

// ClassCounts returns the number of training samples per class.
func (nb *GaussianNB) ClassCounts() ([]int, error) {
	p, err := nb.snapshot("ClassCounts")
	if err != nil {
		return nil, err
	}
	return append([]int(nil), p.counts...), nil
}

// GetParams returns the model's hyperparameters.
func (nb *GaussianNB) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"var_smoothing":      nb.varSmoothing,
		"parallel_threshold": nb.parallelThreshold,
	}
	if nb.priors != nil {
		params["priors"] = append([]float64(nil), nb.priors...)
	}
	return params
}

func copyMatrix(src [][]float64) [][]float64 {
	out := make([][]float64, len(src))
	for i, row := range src {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
