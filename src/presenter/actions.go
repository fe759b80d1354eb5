package presenter

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GenericActionIcon marks action codes missing from the dictionary.
const GenericActionIcon = "📋"

type actionInfo struct {
	icon        string
	label       string
	description string
}

var actions = map[string]actionInfo{
	"c2pa.created":           {"✨", "Created", "Created a new file or content"},
	"c2pa.opened":            {"📂", "Opened", "Opened a pre-existing file"},
	"c2pa.placed":            {"📌", "Placed", "Added pre-existing content to this file"},
	"c2pa.edited":            {"✏️", "Edited", "Made other changes to the content"},
	"c2pa.color_adjustments": {"🎨", "Color adjustments", "Adjusted color, tone or exposure"},
	"c2pa.cropped":           {"✂️", "Cropped", "Cropped the image"},
	"c2pa.resized":           {"📐", "Resized", "Changed the image dimensions"},
	"c2pa.orientation":       {"🔄", "Orientation", "Rotated or flipped the image"},
	"c2pa.filtered":          {"🪄", "Filtered", "Applied a filter or effect"},
	"c2pa.drawing":           {"🖌️", "Drawing", "Painted or drew on the image"},
	"c2pa.converted":         {"🔁", "Converted", "Converted to a different format"},
	"c2pa.transcoded":        {"🎞️", "Transcoded", "Re-encoded the content"},
	"c2pa.repackaged":        {"📦", "Repackaged", "Repackaged without re-encoding"},
	"c2pa.published":         {"📤", "Published", "Published the content"},
	"c2pa.removed":           {"🗑️", "Removed", "Removed content from the image"},
	"c2pa.redacted":          {"⬛", "Redacted", "Redacted part of the content"},
}

// Adobe Camera Raw records one parameter change per action.
const (
	acrParamKey = "com.adobe.acr"
	acrValueKey = "com.adobe.acr.value"
)

type acrParam struct {
	label    string
	signed   bool
	decimals int
	unit     string
	scale    float64
}

var acrParams = map[string]acrParam{
	"Exposure2012":               {"Exposure", true, 2, " EV", 1},
	"Contrast2012":               {"Contrast", true, 0, "", 1},
	"Highlights2012":             {"Highlights", true, 0, "", 1},
	"Shadows2012":                {"Shadows", true, 0, "", 1},
	"Whites2012":                 {"Whites", true, 0, "", 1},
	"Blacks2012":                 {"Blacks", true, 0, "", 1},
	"Texture":                    {"Texture", true, 0, "", 1},
	"Clarity2012":                {"Clarity", true, 0, "", 1},
	"Dehaze":                     {"Dehaze", true, 0, "", 1},
	"Vibrance":                   {"Vibrance", true, 0, "", 1},
	"Saturation":                 {"Saturation", true, 0, "", 1},
	"Temperature":                {"Temperature", false, 0, "K", 1},
	"Tint":                       {"Tint", true, 0, "", 1},
	"Sharpness":                  {"Sharpening", false, 0, "", 1},
	"LuminanceSmoothing":         {"Noise Reduction", false, 0, "", 1},
	"ColorNoiseReduction":        {"Color Noise Reduction", false, 0, "", 1},
	"PostCropVignetteAmount":     {"Vignette", true, 0, "", 1},
	"GrainAmount":                {"Grain", false, 0, "", 1},
	"CropAngle":                  {"Straighten", true, 1, "°", 1},
	"LensProfileDistortionScale": {"Lens Distortion Correction", false, 0, "%", 1},
	"ShadowTint":                 {"Shadow Tint", true, 0, "", 1},
	"ToneCurvePV2012":            {"Tone Curve", false, 0, "", 1},
}

// describeAction resolves icon, label and description for an action code.
// Description priority: recognised editing-tool parameter change, then the
// dictionary description, then the raw code.
func describeAction(code string, params Value) (icon, label, description string) {
	info, known := actions[code]
	icon, label, description = GenericActionIcon, code, code
	if known {
		icon, label, description = info.icon, info.label, info.description
	}
	if change, ok := describeParameterChange(params); ok {
		description = change
	}
	return icon, label, description
}

func describeParameterChange(params Value) (string, bool) {
	m, ok := params.Map()
	if !ok {
		return "", false
	}
	key, ok := m[acrParamKey].(string)
	if !ok {
		return "", false
	}
	spec, ok := acrParams[key]
	if !ok {
		return "", false
	}
	raw, present := m[acrValueKey]
	if !present || raw == nil {
		return spec.label, true
	}
	if f, ok := V(raw).Float(); ok {
		return spec.label + " " + spec.format(f), true
	}
	text, ok := V(raw).Text()
	if !ok {
		return spec.label, true
	}
	return spec.label + ": " + text, true
}

func (p acrParam) format(f float64) string {
	scale := p.scale
	if scale == 0 {
		scale = 1
	}
	f *= scale
	digits := strconv.FormatFloat(math.Abs(f), 'f', p.decimals, 64)
	if rounded, _ := strconv.ParseFloat(digits, 64); rounded == 0 {
		return digits + p.unit
	}
	switch {
	case f < 0:
		return "-" + digits + p.unit
	case p.signed:
		return "+" + digits + p.unit
	}
	return digits + p.unit
}

// FormatClaimGenerator turns "lightroom_classic/15.1.1" into
// "Lightroom Classic 15.1.1". Values without a slash pass through.
func FormatClaimGenerator(generator string) string {
	if generator == "" {
		return Unknown
	}
	if !strings.Contains(generator, "/") {
		return generator
	}
	parts := strings.Split(generator, "/")
	// Casers are stateful; one per call.
	software := cases.Title(language.Und).String(strings.ReplaceAll(parts[0], "_", " "))
	version := parts[1]
	if version == "" {
		return software
	}
	return software + " " + version
}
