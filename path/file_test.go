package path

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/purepursuit/geometry"
)

func TestReadPathFile(t *testing.T) {
	p, err := Read(strings.NewReader(`{"direction": "backward", "points": [[0, 0], [-4, 0], [-4, -3]]}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Direction, test.ShouldEqual, Backward)
	test.That(t, p.Length(), test.ShouldAlmostEqual, 7)
	test.That(t, p.Terminal(), test.ShouldResemble, geometry.NewPoint(-4, -3))

	p, err = Read(strings.NewReader(`{"points": [[1, 1], [2, 2]]}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Direction, test.ShouldEqual, Forward)

	_, err = Read(strings.NewReader(`{"points": [[1, 1]]}`))
	test.That(t, errors.Is(err, ErrEmptyPath), test.ShouldBeTrue)

	_, err = Read(strings.NewReader(`{"waypoints": [[1, 1], [2, 2]]}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to decode path")

	_, err = Read(strings.NewReader(`{"direction": "left", "points": []}`))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPathFileRoundTrip(t *testing.T) {
	p := FromPoints(geometry.NewPoint(0, 0), geometry.NewPoint(3, 4), geometry.NewPoint(3, 9)).WithDirection(Backward)

	var buf bytes.Buffer
	test.That(t, json.NewEncoder(&buf).Encode(p.ToFile()), test.ShouldBeNil)
	name := filepath.Join(t.TempDir(), "path.json")
	test.That(t, os.WriteFile(name, buf.Bytes(), 0o600), test.ShouldBeNil)

	read, err := ReadFile(name)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, read, test.ShouldResemble, p)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}
