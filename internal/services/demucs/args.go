package demucs

import (
	"strconv"
	"strings"

	"github.com/WillCMcC/splitripper/internal/config"
)

// qualityPreset groups the engine flags a quality level maps to. Shifts above
// zero make the engine run that many full passes over the input.
type qualityPreset struct {
	shifts  int
	overlap float64
}

var qualityPresets = map[string]qualityPreset{
	config.QualityNormal: {shifts: 0, overlap: 0.25},
	config.QualityHigh:   {shifts: 2, overlap: 0.5},
}

func presetFor(quality string) qualityPreset {
	if p, ok := qualityPresets[quality]; ok {
		return p
	}
	return qualityPresets[config.QualityNormal]
}

// resolveModel picks the model actually invoked: unknown names fall back to
// the default and six-stem mode requires the six-source model.
func resolveModel(model, stemMode string) string {
	known := false
	for _, m := range config.KnownModels {
		if m == model {
			known = true
			break
		}
	}
	if !known {
		model = config.Default().Separation.Model
	}
	if stemMode == config.StemMode6 {
		return "htdemucs_6s"
	}
	return model
}

// expectedStems lists the artifact names a mode must produce for the run to
// count as successful.
func expectedStems(stemMode string) []string {
	switch stemMode {
	case config.StemMode6:
		return []string{"vocals", "drums", "bass", "guitar", "piano", "other"}
	case config.StemMode4:
		return []string{"vocals", "drums", "bass", "other"}
	default:
		return []string{"vocals", "no_vocals"}
	}
}

func buildArgs(req Request, model string, preset qualityPreset) []string {
	args := []string{"-n", model, "--mp3", "-o", req.OutputDir}
	// Transformer models cap their own segment length; the mdx family needs
	// an explicit bound to keep memory in check.
	if strings.HasPrefix(model, "mdx") {
		args = append(args, "--segment", "10")
	}
	if preset.shifts > 0 {
		args = append(args, "--shifts", strconv.Itoa(preset.shifts))
	}
	args = append(args, "--overlap", strconv.FormatFloat(preset.overlap, 'g', -1, 64))
	if req.StemMode == config.StemMode2 || req.StemMode == "" {
		args = append(args, "--two-stems", "vocals")
	}
	args = append(args, req.InputFile)
	return args
}
