package evaluation

import (
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/bayesbench/pkg/errors"
)

// Chart writes a PNG bar chart of correctly classified and misclassified
// samples per class of name.
func (s *Service) Chart(name string, w io.Writer) error {
	r, err := s.Report(name)
	if err != nil {
		return err
	}
	return RenderChart(r, w)
}

// RenderChart draws r as a grouped bar chart, one group per class. A panic
// inside the plot library is returned as *errors.PanicError.
func RenderChart(r *Report, w io.Writer) error {
	return errors.SafeExecute("evaluation.RenderChart", func() error {
		return renderChart(r, w)
	})
}

func renderChart(r *Report, w io.Writer) error {
	correct := make(plotter.Values, len(r.ConfusionMatrix))
	wrong := make(plotter.Values, len(r.ConfusionMatrix))
	names := make([]string, len(r.ConfusionMatrix))
	for i, row := range r.ConfusionMatrix {
		total := 0
		for _, n := range row.Row {
			total += n
		}
		correct[i] = float64(row.Row[i])
		wrong[i] = float64(total - row.Row[i])
		names[i] = row.ClassName
	}

	p := plot.New()
	p.Title.Text = r.Dataset + " (accuracy " + r.Accuracy + ")"
	p.Y.Label.Text = "samples"

	barWidth := vg.Points(20)
	correctBars, err := plotter.NewBarChart(correct, barWidth)
	if err != nil {
		return errors.Wrap(err, "chart: correct bars")
	}
	correctBars.Color = plotutil.Color(1)
	correctBars.Offset = -barWidth / 2

	wrongBars, err := plotter.NewBarChart(wrong, barWidth)
	if err != nil {
		return errors.Wrap(err, "chart: misclassified bars")
	}
	wrongBars.Color = plotutil.Color(0)
	wrongBars.Offset = barWidth / 2

	p.Add(correctBars, wrongBars)
	p.Legend.Add("correct", correctBars)
	p.Legend.Add("misclassified", wrongBars)
	p.Legend.Top = true
	p.NominalX(names...)

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return errors.Wrap(err, "chart: render")
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "chart: write")
	}
	return nil
}
