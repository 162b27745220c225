package path

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/purepursuit/geometry"
)

// File is the on-disk form of a path: a driving direction and the vertices in order.
type File struct {
	Direction DrivingDirection `json:"direction"`
	Points    [][2]float64     `json:"points"`
}

// Read decodes a path file.
func Read(r io.Reader) (Path, error) {
	var f File
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&f); err != nil {
		return Path{}, errors.Wrap(err, "failed to decode path from json")
	}
	if len(f.Points) < 2 {
		return Path{}, errors.Wrapf(ErrEmptyPath, "path file has %d points", len(f.Points))
	}
	points := lo.Map(f.Points, func(xy [2]float64, _ int) geometry.Point {
		return geometry.NewPoint(xy[0], xy[1])
	})
	return FromPoints(points...).WithDirection(f.Direction), nil
}

// ReadFile reads a path file from disk.
func ReadFile(name string) (Path, error) {
	//nolint:gosec
	buf, err := os.ReadFile(name)
	if err != nil {
		return Path{}, err
	}
	return Read(bytes.NewReader(buf))
}

// ToFile converts a path to its on-disk form.
func (p Path) ToFile() File {
	return File{
		Direction: p.Direction,
		Points: lo.Map(p.Points(), func(pt geometry.Point, _ int) [2]float64 {
			return [2]float64{pt.X, pt.Y}
		}),
	}
}
