package presenter

import "strings"

// Source type categories.
const (
	SourceCaptured  = "captured"
	SourceEnhanced  = "enhanced"
	SourceSynthetic = "synthetic"
	SourceUnknown   = "unknown"
)

type sourceTypeInfo struct {
	category string
	label    string
}

// Keyed by the last path segment of the IPTC digital source type URI.
var sourceTypes = map[string]sourceTypeInfo{
	"digitalCapture":                       {SourceCaptured, "Captured with a camera"},
	"negativeFilm":                         {SourceCaptured, "Scanned from negative film"},
	"positiveFilm":                         {SourceCaptured, "Scanned from positive film"},
	"print":                                {SourceCaptured, "Scanned from a print"},
	"computationalCapture":                 {SourceEnhanced, "Computational capture"},
	"algorithmicallyEnhanced":              {SourceEnhanced, "Algorithmically enhanced"},
	"minorHumanEdits":                      {SourceEnhanced, "Minor human edits"},
	"compositeCapture":                     {SourceEnhanced, "Composite of captured elements"},
	"composite":                            {SourceEnhanced, "Composite"},
	"trainedAlgorithmicMedia":              {SourceSynthetic, "Generated by AI"},
	"compositeWithTrainedAlgorithmicMedia": {SourceSynthetic, "Composite including AI-generated elements"},
	"algorithmicMedia":                     {SourceSynthetic, "Created by an algorithm"},
	"compositeSynthetic":                   {SourceSynthetic, "Composite of synthetic elements"},
}

type SourceType struct {
	Code     string `json:"code"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// ResolveSourceType classifies how the pixels originated. A missing label
// falls back to the built-in label, then to the code.
func ResolveSourceType(d *DigitalSourceType) *SourceType {
	if d == nil || (d.Code == "" && d.Label == "") {
		return nil
	}
	key := d.Code
	if i := strings.LastIndex(key, "/"); i >= 0 {
		key = key[i+1:]
	}
	st := &SourceType{Code: d.Code, Label: d.Label, Category: SourceUnknown}
	if info, ok := sourceTypes[key]; ok {
		st.Category = info.category
		if st.Label == "" {
			st.Label = info.label
		}
	}
	if st.Label == "" {
		st.Label = d.Code
	}
	return st
}
