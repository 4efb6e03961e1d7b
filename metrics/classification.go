// Package metrics は分類結果の評価指標を提供します。
package metrics

import (
	"math"

	"github.com/YuminosukeSato/bayesbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// validatePair は2つのラベルベクトルが空でなく同じ長さであることを確認する
func validatePair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if yPred == nil {
		return 0, errors.NewDimensionError(op, n, 0, 0)
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// CorrectCount は予測が正解と一致したサンプル数を返す
func CorrectCount(yTrue, yPred *mat.VecDense) (int, error) {
	n, err := validatePair("CorrectCount", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return correct, nil
}

// Accuracy は正解率（correct / total）を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	correct, err := CorrectCount(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return float64(correct) / float64(yTrue.Len()), nil
}

// AccuracyMatrix は n×1 行列形式の入力に対して Accuracy を計算する
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 {
		return 0, errors.NewValueError("AccuracyMatrix", "empty matrix")
	}
	if cTrue != 1 || cPred != 1 {
		return 0, errors.NewValueError("AccuracyMatrix", "must be a column vector (n×1 matrix)")
	}
	if rTrue != rPred {
		return 0, errors.NewDimensionError("AccuracyMatrix", rTrue, rPred, 0)
	}

	return Accuracy(columnToVec(yTrue), columnToVec(yPred))
}

// ClassificationError は誤分類率（1 - accuracy）を計算する
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// ConfusionMatrix は nClasses×nClasses の混同行列を返す。
// 要素 (i, j) は正解ラベル i のサンプルのうちラベル j と予測された件数。
// ラベルは 0 から nClasses-1 の密なインデックスでなければならない。
func ConfusionMatrix(yTrue, yPred []int, nClasses int) (*mat.Dense, error) {
	if len(yTrue) == 0 {
		return nil, errors.NewValueError("ConfusionMatrix", "empty label slice")
	}
	if len(yPred) != len(yTrue) {
		return nil, errors.NewDimensionError("ConfusionMatrix", len(yTrue), len(yPred), 0)
	}
	if nClasses <= 0 {
		return nil, errors.NewValidationError("nClasses", "must be positive", nClasses)
	}

	cm := mat.NewDense(nClasses, nClasses, nil)
	for i := range yTrue {
		actual, predicted := yTrue[i], yPred[i]
		if actual < 0 || actual >= nClasses {
			return nil, errors.NewValidationError("yTrue", "label outside [0, nClasses)", actual)
		}
		if predicted < 0 || predicted >= nClasses {
			return nil, errors.NewValidationError("yPred", "label outside [0, nClasses)", predicted)
		}
		cm.Set(actual, predicted, cm.At(actual, predicted)+1)
	}
	return cm, nil
}

// PerClassRecall は混同行列から各クラスの再現率を計算する。
// 正解サンプルが一つもないクラスは 0 とし、UndefinedMetricWarning を発生させる。
func PerClassRecall(cm mat.Matrix) ([]float64, error) {
	r, c := cm.Dims()
	if r == 0 || r != c {
		return nil, errors.NewDimensionError("PerClassRecall", r, c, 1)
	}

	recall := make([]float64, r)
	for i := 0; i < r; i++ {
		var support float64
		for j := 0; j < c; j++ {
			support += cm.At(i, j)
		}
		if support == 0 {
			errors.Warn(errors.NewUndefinedMetricWarning("recall", "no true samples for a class", 0))
			continue
		}
		recall[i] = cm.At(i, i) / support
		if math.IsNaN(recall[i]) {
			return nil, errors.NewNumericalInstabilityError("PerClassRecall", []float64{cm.At(i, i), support}, i)
		}
	}
	return recall, nil
}

func columnToVec(m mat.Matrix) *mat.VecDense {
	rows, _ := m.Dims()
	v := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v
}
