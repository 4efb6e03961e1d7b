package preprocessing

import (
	"fmt"
	"sort"

	"github.com/YuminosukeSato/bayesbench/pkg/errors"
)

// LabelEncoder はscikit-learn互換のラベルエンコーダー
// 文字列のクラス名を 0 から K-1 の整数コードに変換する
type LabelEncoder struct {
	// classes はソート済みの一意なクラス名。インデックスがコードになる
	classes []string
	index   map[string]int
}

// NewLabelEncoder は新しいLabelEncoderを作成する
//
// 使用例:
//
//	enc := preprocessing.NewLabelEncoder()
//	codes, err := enc.FitTransform([]string{"setosa", "virginica", "setosa"})
//	// codes == []int{0, 1, 0}
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// Fit はラベルの一覧からクラスを学習する。クラスは文字列として昇順に並ぶ
//
// パラメータ:
//   - labels: クラス名の列
//
// 戻り値:
//   - error: labels が空の場合
func (e *LabelEncoder) Fit(labels []string) error {
	if len(labels) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "no labels to encode", errors.ErrEmptyData)
	}

	seen := make(map[string]struct{}, len(labels))
	classes := make([]string, 0)
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		classes = append(classes, l)
	}
	sort.Strings(classes)

	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	e.classes = classes
	e.index = index
	return nil
}

// Transform はクラス名を整数コードに変換する
//
// 戻り値:
//   - []int: 各ラベルのコード
//   - error: 未学習の場合、または未知のラベルを含む場合
func (e *LabelEncoder) Transform(labels []string) ([]int, error) {
	if e.index == nil {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}

	codes := make([]int, len(labels))
	for i, l := range labels {
		code, ok := e.index[l]
		if !ok {
			return nil, errors.NewValueError("LabelEncoder.Transform", fmt.Sprintf("y contains previously unseen label %q", l))
		}
		codes[i] = code
	}
	return codes, nil
}

// FitTransform はFitとTransformを同時に実行する
func (e *LabelEncoder) FitTransform(labels []string) ([]int, error) {
	if err := e.Fit(labels); err != nil {
		return nil, err
	}
	return e.Transform(labels)
}

// InverseTransform は整数コードをクラス名に戻す
func (e *LabelEncoder) InverseTransform(codes []int) ([]string, error) {
	if e.index == nil {
		return nil, errors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}

	labels := make([]string, len(codes))
	for i, code := range codes {
		if code < 0 || code >= len(e.classes) {
			return nil, errors.NewValueError("LabelEncoder.InverseTransform", fmt.Sprintf("code %d is outside [0, %d)", code, len(e.classes)))
		}
		labels[i] = e.classes[code]
	}
	return labels, nil
}

// Classes は学習したクラス名をコード順に返す。未学習なら nil
func (e *LabelEncoder) Classes() []string {
	if e.classes == nil {
		return nil
	}
	return append([]string(nil), e.classes...)
}

// Mapping はクラス名からコードへの対応表のコピーを返す
func (e *LabelEncoder) Mapping() map[string]int {
	if e.index == nil {
		return nil
	}
	m := make(map[string]int, len(e.index))
	for k, v := range e.index {
		m[k] = v
	}
	return m
}
