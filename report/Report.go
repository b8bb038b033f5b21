// Package report renders training results to plots
package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// MovingMean returns the moving mean of data over the argument
// window. The first window-1 entries average over the shorter prefix
// that is available, so the result has the same length as data.
func MovingMean(data []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}

	means := make([]float64, len(data))
	sum := 0.0
	for i := range data {
		sum += data[i]
		if i >= window {
			sum -= data[i-window]
		}

		n := i + 1
		if n > window {
			n = window
		}
		means[i] = sum / float64(n)
	}
	return means
}

// points converts a slice of per-episode values to plotter points
func points(data []float64) plotter.XYs {
	xys := make(plotter.XYs, len(data))
	for i, v := range data {
		xys[i] = plotter.XY{X: float64(i), Y: v}
	}
	return xys
}

// RewardCurve renders the episodic returns of a training run to a PNG
// file, together with their moving mean over the argument window.
func RewardCurve(returns []float64, window int, filename string) error {
	if len(returns) == 0 {
		return fmt.Errorf("rewardcurve: no returns to plot")
	}

	p := plot.New()
	p.Title.Text = "Training returns"
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Return"

	line, err := plotter.NewLine(points(returns))
	if err != nil {
		return fmt.Errorf("rewardcurve: could not plot returns: %v", err)
	}
	line.Color = plotutil.Color(0)
	p.Add(line)
	p.Legend.Add("return", line)

	meanLine, err := plotter.NewLine(points(MovingMean(returns, window)))
	if err != nil {
		return fmt.Errorf("rewardcurve: could not plot moving mean: %v", err)
	}
	meanLine.Color = plotutil.Color(1)
	p.Add(meanLine)
	p.Legend.Add(fmt.Sprintf("mean(%v)", window), meanLine)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, filename); err != nil {
		return fmt.Errorf("rewardcurve: could not save plot: %v", err)
	}
	return nil
}

// EpsilonCurve renders the per-episode exploration rate of a training
// run to a PNG file.
func EpsilonCurve(history []float64, filename string) error {
	if len(history) == 0 {
		return fmt.Errorf("epsiloncurve: no history to plot")
	}

	p := plot.New()
	p.Title.Text = "Exploration rate"
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Epsilon"

	line, err := plotter.NewLine(points(history))
	if err != nil {
		return fmt.Errorf("epsiloncurve: could not plot history: %v", err)
	}
	line.Color = plotutil.Color(0)
	p.Add(line)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, filename); err != nil {
		return fmt.Errorf("epsiloncurve: could not save plot: %v", err)
	}
	return nil
}
