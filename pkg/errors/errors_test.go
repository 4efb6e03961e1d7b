package errors

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "GaussianNB.Fit",
			kind:     "no training rows",
			err:      ErrEmptyData,
			wantMsg:  "bayesbench: GaussianNB.Fit: no training rows: empty data",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "GaussianNB.Predict",
			kind:     "not fitted",
			err:      nil,
			wantMsg:  "bayesbench: GaussianNB.Predict: not fitted",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}

			if tt.err != nil && !Is(err, tt.err) {
				t.Error("ModelError should unwrap to its cause")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	tests := []struct {
		name string
		axis int
		want string
	}{
		{
			name: "rows",
			axis: 0,
			want: "bayesbench: GaussianNB.Fit: dimension mismatch on axis 0 (rows). Expected 6, got 5",
		},
		{
			name: "features",
			axis: 1,
			want: "bayesbench: GaussianNB.Fit: dimension mismatch on axis 1 (features). Expected 6, got 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDimensionError("GaussianNB.Fit", 6, 5, tt.axis)
			if err.Error() != tt.want {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.want)
			}

			var dimErr *DimensionError
			if !As(err, &dimErr) {
				t.Fatal("Error should be castable to *DimensionError")
			}
			if dimErr.Axis != tt.axis {
				t.Errorf("Axis = %d, want %d", dimErr.Axis, tt.axis)
			}
		})
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("GaussianNB", "Predict")

	want := "bayesbench: GaussianNB: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewDegenerateClassError(t *testing.T) {
	err := NewDegenerateClassError("GaussianNB.Fit", 2, 1)

	var degErr *DegenerateClassError
	if !As(err, &degErr) {
		t.Fatal("Error should be castable to *DegenerateClassError")
	}
	if degErr.Class != 2 || degErr.Samples != 1 {
		t.Errorf("unexpected fields: %+v", degErr)
	}
	if !strings.Contains(err.Error(), "class 2 has 1 training sample(s)") {
		t.Errorf("unexpected message: %s", err.Error())
	}

	// 他の型と混同されないこと
	var zeroErr *ZeroVarianceError
	if As(err, &zeroErr) {
		t.Error("DegenerateClassError must not match *ZeroVarianceError")
	}
}

func TestNewZeroVarianceError(t *testing.T) {
	err := NewZeroVarianceError("GaussianNB.Fit", 1, 3)

	var zeroErr *ZeroVarianceError
	if !As(err, &zeroErr) {
		t.Fatal("Error should be castable to *ZeroVarianceError")
	}
	if zeroErr.Class != 1 || zeroErr.Feature != 3 {
		t.Errorf("unexpected fields: %+v", zeroErr)
	}
	if !strings.Contains(err.Error(), "feature 3 has zero variance within class 1") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("priors", "must sum to 1", 0.7)

	want := "bayesbench: validation failed for parameter 'priors': must sum to 1 (got: 0.7)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestNewValueError(t *testing.T) {
	err := NewValueError("LabelEncoder.Transform", "unknown label \"setosa\"")

	want := "bayesbench: LabelEncoder.Transform: unknown label \"setosa\""
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var valErr *ValueError
	if !As(err, &valErr) {
		t.Error("Error should be castable to *ValueError")
	}
}

func TestMarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var dimErr *DimensionError
	if !As(NewDimensionError("GaussianNB.Predict", 4, 3, 1), &dimErr) {
		t.Fatal("expected *DimensionError")
	}
	logger.Error().Object("detail", dimErr).Msg("predict failed")

	out := buf.String()
	for _, want := range []string{`"type":"DimensionError"`, `"axis_name":"features"`, `"expected":4`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %s does not contain %s", out, want)
		}
	}
}

func TestWarn(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewUndefinedMetricWarning("recall", "no true samples", 0))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	if !strings.Contains(got[0].Error(), "'recall' is ill-defined") {
		t.Errorf("unexpected warning: %v", got[0])
	}

	// zerolog関数が設定されている場合はそちらが優先される
	var viaZerolog int
	SetZerologWarnFunc(func(error) { viaZerolog++ })
	defer SetZerologWarnFunc(nil)

	Warn(NewUndefinedMetricWarning("recall", "no true samples", 0))
	if viaZerolog != 1 || len(got) != 1 {
		t.Errorf("expected zerolog func to take precedence, zerolog=%d handler=%d", viaZerolog, len(got))
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrap(ErrEmptyData, "loading iris")

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Wrapped error should match ErrEmptyData")
	}
	if !strings.Contains(wrapped.Error(), "loading iris") {
		t.Errorf("unexpected message: %s", wrapped.Error())
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(ErrEmptyData, "dataset %s", "banknote")

	want := "dataset banknote: empty data"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestErrorChaining(t *testing.T) {
	base := NewDimensionError("GaussianNB.Predict", 4, 2, 1)
	err := Wrap(Wrap(base, "predict request"), "dataset iris")

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatal("DimensionError should survive wrapping")
	}
	if dimErr.Expected != 4 || dimErr.Got != 2 {
		t.Errorf("unexpected fields: %+v", dimErr)
	}
}
