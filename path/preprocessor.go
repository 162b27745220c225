package path

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/purepursuit/geometry"
	"go.viam.com/purepursuit/utils"
)

// PreprocessorConfig configures path cleaning.
type PreprocessorConfig struct {
	// MinSegmentLength is the shortest segment kept; shorter ones are merged into a neighbor.
	MinSegmentLength float64 `json:"min_segment_length"`
	// MaxSegmentLength splits longer segments into equal pieces. Zero disables splitting.
	MaxSegmentLength float64 `json:"max_segment_length,omitempty"`
}

// Validate returns an error describing every invalid field.
func (cfg PreprocessorConfig) Validate(path string) error {
	var errs error
	if cfg.MinSegmentLength < 0 || !utils.IsFinite(cfg.MinSegmentLength) {
		errs = multierr.Append(errs, utils.NewConfigValidationNegativeFieldError(path, "min_segment_length", cfg.MinSegmentLength))
	}
	if cfg.MaxSegmentLength < 0 || !utils.IsFinite(cfg.MaxSegmentLength) {
		errs = multierr.Append(errs, utils.NewConfigValidationNegativeFieldError(path, "max_segment_length", cfg.MaxSegmentLength))
	}
	if cfg.MaxSegmentLength > 0 && cfg.MaxSegmentLength <= 2*cfg.MinSegmentLength {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("\"max_segment_length\" (%v) must exceed twice \"min_segment_length\" (%v)",
				cfg.MaxSegmentLength, cfg.MinSegmentLength)))
	}
	return errs
}

// Preprocessor turns a raw path into one suitable for geometric queries.
type Preprocessor interface {
	Preprocess(raw Path) (Path, error)
}

type preprocessor struct {
	cfg    PreprocessorConfig
	kernel geometry.Kernel
}

// NewPreprocessor returns the default preprocessor. Its output has no segment shorter than the
// configured minimum (unless the whole path is), no segment longer than the configured maximum,
// and continuous endpoints. Preprocessing its own output returns an identical path.
func NewPreprocessor(cfg PreprocessorConfig, kernel geometry.Kernel) (Preprocessor, error) {
	if err := cfg.Validate("preprocessor"); err != nil {
		return nil, err
	}
	return &preprocessor{cfg: cfg, kernel: kernel}, nil
}

func (pp *preprocessor) Preprocess(raw Path) (Path, error) {
	if raw.IsEmpty() {
		return Path{}, ErrEmptyPath
	}
	for i, seg := range raw.Segments {
		if !utils.IsFinite(seg.Start.X, seg.Start.Y, seg.End.X, seg.End.Y) {
			return Path{}, errors.Wrapf(geometry.ErrDegenerateGeometry, "segment %d has non-finite coordinates", i)
		}
	}
	if err := raw.CheckContinuity(pp.kernel); err != nil {
		return Path{}, err
	}

	vertices := pp.decimate(raw.Points())
	if len(vertices) < 2 {
		return Path{}, errors.Wrap(ErrEmptyPath, "every segment has zero length")
	}
	vertices = pp.densify(vertices)

	return FromPoints(vertices...).WithDirection(raw.Direction), nil
}

// minimumSpacing is the distance below which consecutive vertices are merged.
func (pp *preprocessor) minimumSpacing() float64 {
	return math.Max(pp.cfg.MinSegmentLength, pp.kernel.Epsilon)
}

// decimate keeps a vertex only when it is far enough from the previously kept one. The terminal
// vertex is always kept; if that leaves a short final segment, interior vertices are dropped
// until it is long enough or it is the only segment.
func (pp *preprocessor) decimate(points []geometry.Point) []geometry.Point {
	spacing := pp.minimumSpacing()
	kept := []geometry.Point{points[0]}
	for _, pt := range points[1 : len(points)-1] {
		if geometry.Distance(kept[len(kept)-1], pt) >= spacing {
			kept = append(kept, pt)
		}
	}

	terminal := points[len(points)-1]
	for len(kept) > 1 && geometry.Distance(kept[len(kept)-1], terminal) < spacing {
		kept = kept[:len(kept)-1]
	}
	if geometry.Distance(kept[len(kept)-1], terminal) <= pp.kernel.Epsilon {
		return kept
	}
	return append(kept, terminal)
}

// densify splits segments longer than the maximum into equal pieces.
func (pp *preprocessor) densify(points []geometry.Point) []geometry.Point {
	maxLength := pp.cfg.MaxSegmentLength
	if maxLength <= 0 {
		return points
	}
	out := []geometry.Point{points[0]}
	for i := 1; i < len(points); i++ {
		seg := geometry.NewLine(points[i-1], points[i])
		pieces := int(math.Ceil((seg.Length() - pp.kernel.Epsilon) / maxLength))
		for k := 1; k < pieces; k++ {
			out = append(out, seg.Start.Add(seg.Direction().Mul(float64(k)/float64(pieces))))
		}
		out = append(out, points[i])
	}
	return out
}
