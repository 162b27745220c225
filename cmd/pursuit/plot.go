package main

import (
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.viam.com/purepursuit/geometry"
	"go.viam.com/purepursuit/path"
)

var (
	pathColor       = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	trajectoryColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
)

func toXYs(points []geometry.Point) plotter.XYs {
	xys := make(plotter.XYs, 0, len(points))
	for _, pt := range points {
		xys = append(xys, plotter.XY{X: pt.X, Y: pt.Y})
	}
	return xys
}

// plotTrajectory draws the tracked path and the driven trajectory to filename. The image format
// follows the file extension.
func plotTrajectory(p path.Path, trajectory []geometry.Point, filename string) error {
	if len(trajectory) == 0 {
		return errors.New("no trajectory to plot")
	}
	plt := plot.New()
	plt.Title.Text = "pure pursuit simulation (" + p.Direction.String() + ")"
	plt.X.Label.Text = "x (m)"
	plt.Y.Label.Text = "y (m)"
	plt.Add(plotter.NewGrid())

	pathLine, pathPoints, err := plotter.NewLinePoints(toXYs(p.Points()))
	if err != nil {
		return errors.Wrap(err, "plotting path")
	}
	pathLine.Color = pathColor
	pathLine.Width = vg.Points(1)
	pathLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	pathPoints.Color = pathColor
	pathPoints.Shape = draw.CircleGlyph{}

	driven, err := plotter.NewLine(toXYs(trajectory))
	if err != nil {
		return errors.Wrap(err, "plotting trajectory")
	}
	driven.Color = trajectoryColor
	driven.Width = vg.Points(1.5)

	plt.Add(pathLine, pathPoints, driven)
	plt.Legend.Add("path", pathLine, pathPoints)
	plt.Legend.Add("vehicle", driven)
	plt.Legend.Top = true

	return errors.Wrapf(plt.Save(8*vg.Inch, 8*vg.Inch, filename), "saving plot to %q", filename)
}
