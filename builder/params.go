package builder

import "github.com/deepteams/zimg/kernel"

// ResizeConfig names one resampling kernel shape and its parameters,
// independent of which axis or plane it ends up applied to.
type ResizeConfig struct {
	Kind        kernel.ResizeFilterKind
	BicubicB    float64
	BicubicC    float64
	LanczosTaps int
}

// Params mirrors spec.md §6's BuildParams: every field is optional, with
// Normalize() filling in the same kind of sane defaults encode.go's
// applyPreset derives from PresetDefault in the teacher.
type Params struct {
	ResizeFilter       ResizeConfig
	ResizeFilterChroma ResizeConfig
	Unresize           bool
	Dither             kernel.DitherKind
	PeakLuminance      float64
	ApproximateGamma   bool
	SceneReferred      bool
	CPU                string
}

// Normalize fills zero-valued fields with defaults: bicubic luma, bilinear
// chroma (the common libavfilter/zimg default pairing), 100 nit SDR peak
// luminance.
func (p Params) Normalize() Params {
	if p.ResizeFilter == (ResizeConfig{}) {
		p.ResizeFilter = ResizeConfig{Kind: kernel.Bicubic, BicubicB: 0, BicubicC: 0.5}
	}
	if p.ResizeFilterChroma == (ResizeConfig{}) {
		p.ResizeFilterChroma = ResizeConfig{Kind: kernel.Bilinear}
	}
	if p.PeakLuminance <= 0 {
		p.PeakLuminance = 100
	}
	return p
}
