package datasets

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/bayesbench/pkg/errors"
)

func TestLoadCSVIris(t *testing.T) {
	ds, err := LoadCSV("iris", filepath.Join("testdata", "iris_small.csv"), DefaultCSVOptions())
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}

	if ds.Name != "iris" {
		t.Errorf("Name = %q", ds.Name)
	}
	if ds.NSamples() != 12 || ds.NFeatures() != 4 || ds.NClasses() != 3 {
		t.Errorf("shape = %d×%d, %d classes", ds.NSamples(), ds.NFeatures(), ds.NClasses())
	}

	wantNames := []string{"sepal_length", "sepal_width", "petal_length", "petal_width"}
	for i, n := range wantNames {
		if ds.FeatureNames[i] != n {
			t.Errorf("FeatureNames[%d] = %q, want %q", i, ds.FeatureNames[i], n)
		}
	}

	classes := ds.ClassNames()
	if classes[0] != "Iris-setosa" || classes[2] != "Iris-virginica" {
		t.Errorf("ClassNames() = %v", classes)
	}
	if ds.Y[0] != 0 || ds.Y[4] != 1 || ds.Y[11] != 2 {
		t.Errorf("Y = %v", ds.Y)
	}
	if ds.X.At(0, 0) != 5.1 || ds.X.At(11, 3) != 1.8 {
		t.Errorf("unexpected feature values: %v, %v", ds.X.At(0, 0), ds.X.At(11, 3))
	}

	rows := ds.Rows()
	if len(rows) != 12 || len(rows[3]) != 4 || rows[3][3] != 0.1 {
		t.Errorf("Rows() = %v", rows[3])
	}
}

func TestReadCSVOptions(t *testing.T) {
	input := "yes;1.5;2\nno;3.5;4\nyes;2.0;1\n"
	ds, err := ReadCSV("semi", strings.NewReader(input), CSVOptions{Header: false, LabelColumn: 0, Comma: ';'})
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	if ds.NFeatures() != 2 || ds.NSamples() != 3 {
		t.Fatalf("shape = %d×%d", ds.NSamples(), ds.NFeatures())
	}
	if ds.FeatureNames[0] != "x0" || ds.FeatureNames[1] != "x1" {
		t.Errorf("FeatureNames = %v", ds.FeatureNames)
	}
	// "no" < "yes"
	if ds.Y[0] != 1 || ds.Y[1] != 0 {
		t.Errorf("Y = %v", ds.Y)
	}
	if ds.X.At(1, 0) != 3.5 {
		t.Errorf("X[1][0] = %v", ds.X.At(1, 0))
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(error) bool
	}{
		{
			name:  "header only",
			input: "a,b,label\n",
			check: func(err error) bool { return errors.Is(err, errors.ErrEmptyData) },
		},
		{
			name:  "ragged row",
			input: "a,b,label\n1,2,x\n3,y\n",
			check: func(err error) bool {
				var dimErr *errors.DimensionError
				return errors.As(err, &dimErr) && dimErr.Expected == 3 && dimErr.Got == 2
			},
		},
		{
			name:  "non-numeric feature",
			input: "a,b,label\n1,abc,x\n",
			check: func(err error) bool { return err != nil && strings.Contains(err.Error(), "row 1 column 2") },
		},
		{
			name:  "label column only",
			input: "label\nx\n",
			check: func(err error) bool {
				var valErr *errors.ValidationError
				return errors.As(err, &valErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV("broken", strings.NewReader(tt.input), DefaultCSVOptions())
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	if _, err := LoadCSV("missing", filepath.Join("testdata", "nope.csv"), DefaultCSVOptions()); err == nil {
		t.Error("expected error for missing file")
	}
}
