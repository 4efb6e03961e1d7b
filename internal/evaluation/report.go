// Package evaluation trains one GaussianNB per dataset and reports how well
// it classifies its own training data.
package evaluation

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/bayesbench/datasets"
	"github.com/YuminosukeSato/bayesbench/metrics"
	"github.com/YuminosukeSato/bayesbench/pkg/errors"
	"github.com/YuminosukeSato/bayesbench/sklearn/naive_bayes"
)

// ConfusionRow is one row of the confusion matrix: the counts of samples of
// ClassName by predicted class.
type ConfusionRow struct {
	ClassName string `json:"class_name"`
	Row       []int  `json:"row"`
}

// Report summarises a model evaluated on its dataset. The JSON field names
// are those served by the legacy GET /<dataset> routes.
type Report struct {
	Dataset             string         `json:"dataset"`
	NumberOfExamples    int            `json:"number_of_examples"`
	NumberOfAttributes  int            `json:"number_of_attributes"`
	NumberOfClasses     int            `json:"number_of_classes"`
	Accuracy            string         `json:"accuracy"`
	AccuracyValue       float64        `json:"accuracy_value"`
	CorrectlyClassified string         `json:"correctly_classified"`
	ConfusionMatrix     []ConfusionRow `json:"confusion_matrix"`

	Correct int        `json:"-"`
	Matrix  *mat.Dense `json:"-"`
}

// Evaluate predicts every sample of ds with nb and compares against ds.Y.
func Evaluate(ds *datasets.Dataset, nb *naive_bayes.GaussianNB) (*Report, error) {
	preds, err := nb.PredictClasses(ds.X)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluate %s", ds.Name)
	}

	yTrue := make([]float64, len(ds.Y))
	yPred := make([]float64, len(preds))
	for i := range ds.Y {
		yTrue[i] = float64(ds.Y[i])
		yPred[i] = float64(preds[i])
	}
	correct, err := metrics.CorrectCount(mat.NewVecDense(len(yTrue), yTrue), mat.NewVecDense(len(yPred), yPred))
	if err != nil {
		return nil, err
	}

	names := ds.ClassNames()
	cm, err := metrics.ConfusionMatrix(ds.Y, preds, len(names))
	if err != nil {
		return nil, err
	}

	rows := make([]ConfusionRow, len(names))
	for i, name := range names {
		row := make([]int, len(names))
		for j := range row {
			row[j] = int(cm.At(i, j))
		}
		rows[i] = ConfusionRow{ClassName: name, Row: row}
	}

	n := ds.NSamples()
	acc := float64(correct) / float64(n)
	return &Report{
		Dataset:             ds.Name,
		NumberOfExamples:    n,
		NumberOfAttributes:  ds.NFeatures(),
		NumberOfClasses:     len(names),
		Accuracy:            FormatPercent(acc),
		AccuracyValue:       acc,
		CorrectlyClassified: fmt.Sprintf("%d/%d", correct, n),
		ConfusionMatrix:     rows,
		Correct:             correct,
		Matrix:              cm,
	}, nil
}

// FormatPercent renders a ratio with two decimals, e.g. 0.96 -> "96.00%".
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

// Recall returns the per-class recall in class order.
func (r *Report) Recall() ([]float64, error) {
	return metrics.PerClassRecall(r.Matrix)
}
