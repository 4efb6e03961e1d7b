// Package datasets loads labelled tabular datasets from CSV files.
//
// Every column except the label column is parsed as a float64 feature. The
// label column holds class names which are encoded to dense integer codes
// (0..K-1, in sorted name order) by a preprocessing.LabelEncoder kept on the
// Dataset for reporting.
package datasets

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/bayesbench/pkg/errors"
	"github.com/YuminosukeSato/bayesbench/preprocessing"
	"gonum.org/v1/gonum/mat"
)

// CSVOptions controls how a CSV file is read.
type CSVOptions struct {
	// Header skips the first record and uses it as feature names.
	Header bool
	// LabelColumn is the index of the class column. Negative values count
	// from the end, so -1 is the last column.
	LabelColumn int
	// Comma is the field delimiter, ',' when zero.
	Comma rune
}

// DefaultCSVOptions reads a headed, comma separated file labelled in its
// last column.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Header: true, LabelColumn: -1, Comma: ','}
}

// Dataset is a feature matrix with integer class labels.
type Dataset struct {
	Name         string
	FeatureNames []string
	X            *mat.Dense
	Y            []int
	Encoder      *preprocessing.LabelEncoder
}

// NSamples returns the number of rows.
func (d *Dataset) NSamples() int { return len(d.Y) }

// NFeatures returns the number of feature columns.
func (d *Dataset) NFeatures() int {
	_, c := d.X.Dims()
	return c
}

// NClasses returns the number of distinct labels.
func (d *Dataset) NClasses() int { return len(d.Encoder.Classes()) }

// ClassNames returns the original label of each class code.
func (d *Dataset) ClassNames() []string { return d.Encoder.Classes() }

// Rows returns the features as one slice per sample.
func (d *Dataset) Rows() [][]float64 {
	rows := make([][]float64, d.NSamples())
	for i := range rows {
		rows[i] = mat.Row(nil, i, d.X)
	}
	return rows
}

// LoadCSV reads the dataset stored at path.
func LoadCSV(name, path string, opts CSVOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset %s", name)
	}
	defer f.Close()
	return ReadCSV(name, f, opts)
}

// ReadCSV parses a dataset from r.
func ReadCSV(name string, r io.Reader, opts CSVOptions) (*Dataset, error) {
	op := "datasets.ReadCSV(" + name + ")"

	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "dataset %s", name)
	}

	var header []string
	if opts.Header && len(records) > 0 {
		header, records = records[0], records[1:]
	}
	if len(records) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyData, "dataset %s", name)
	}

	width := len(records[0])
	if width < 2 {
		return nil, errors.NewValidationError("columns", "need at least one feature and one label column", width)
	}
	labelCol := opts.LabelColumn
	if labelCol < 0 {
		labelCol += width
	}
	if labelCol < 0 || labelCol >= width {
		return nil, errors.NewValidationError("label_column", "outside the record", opts.LabelColumn)
	}

	nFeatures := width - 1
	data := make([]float64, 0, len(records)*nFeatures)
	labels := make([]string, len(records))
	for i, rec := range records {
		if len(rec) != width {
			return nil, errors.NewDimensionError(op, width, len(rec), 1)
		}
		for j, cell := range rec {
			cell = strings.TrimSpace(cell)
			if j == labelCol {
				labels[i] = cell
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "dataset %s: row %d column %d", name, i+1, j+1)
			}
			data = append(data, v)
		}
	}

	enc := preprocessing.NewLabelEncoder()
	y, err := enc.FitTransform(labels)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		Name:         name,
		FeatureNames: featureNames(header, labelCol, nFeatures),
		X:            mat.NewDense(len(records), nFeatures, data),
		Y:            y,
		Encoder:      enc,
	}, nil
}

func featureNames(header []string, labelCol, nFeatures int) []string {
	names := make([]string, 0, nFeatures)
	if len(header) == nFeatures+1 {
		for j, h := range header {
			if j != labelCol {
				names = append(names, strings.TrimSpace(h))
			}
		}
		return names
	}
	for j := 0; j < nFeatures; j++ {
		names = append(names, "x"+strconv.Itoa(j))
	}
	return names
}
