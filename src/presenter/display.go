package presenter

// State of the viewer as a whole.
type State string

const (
	StateEmpty   State = "empty"
	StateLoading State = "loading"
	StateError   State = "error"
	StateReady   State = "ready"
)

// Options carries the few configurable presentation knobs.
type Options struct {
	MapSearchURL string
}

// Input is everything known about the active image at a point in time. The
// two halves of a by-reference load may arrive in either order.
type Input struct {
	URI       string
	ImageData string
	Loading   bool
	Error     string

	Record *MetadataRecord

	// C2PALoaded distinguishes "not fetched yet" from "fetched, nothing
	// found" (C2PA nil or empty).
	C2PALoaded bool
	C2PA       *C2PAResult

	// Thumbnails from the standalone thumbnails call.
	Thumbnails *Thumbnails
}

// Display is the paint-ready model of the viewer.
type Display struct {
	State State  `json:"state"`
	Error string `json:"error,omitempty"`
	Image string `json:"image,omitempty"`

	Fields            *Fields         `json:"fields,omitempty"`
	GPS               *Location       `json:"gps,omitempty"`
	Author            *Contact        `json:"author,omitempty"`
	ProvenanceLoading bool            `json:"provenance_loading"`
	Provenance        *ProvenanceView `json:"provenance,omitempty"`
	SourceThumbnail   string          `json:"source_thumbnail,omitempty"`
	ClaimThumbnail    string          `json:"claim_thumbnail,omitempty"`
	SourceType        *SourceType     `json:"source_type,omitempty"`
}

// Compose computes the display model. It is a pure function of its input.
// Either half of a by-reference load is shown as soon as it is known, so
// provenance can appear while the record is still loading.
func Compose(in Input, opts Options) Display {
	d := Display{Image: in.URI}
	if in.ImageData != "" {
		d.Image = in.ImageData
	}

	switch {
	case in.Error != "":
		return Display{State: StateError, Error: in.Error}
	case in.Record != nil:
		d.State = StateReady
		fields := ResolveFields(in.Record)
		d.Fields = &fields
		d.GPS = FormatGPS(in.Record.GPS, opts.MapSearchURL)
		d.ProvenanceLoading = !in.C2PALoaded
	case in.Loading:
		d.State = StateLoading
	default:
		return Display{State: StateEmpty}
	}

	thumbs := in.Thumbnails
	if in.C2PALoaded {
		if in.C2PA != nil && in.C2PA.Thumbnails != nil {
			thumbs = in.C2PA.Thumbnails
		}
		composeProvenance(&d, in.C2PA)
	}
	if thumbs != nil {
		d.SourceThumbnail = jpegDataURI(thumbs.Ingredient)
		d.ClaimThumbnail = jpegDataURI(thumbs.Claim)
	}
	return d
}

// composeProvenance fills the credential half of d. A nil result is shown
// as no provenance found.
func composeProvenance(d *Display, res *C2PAResult) {
	var entries []ProvenanceEntry
	var fallbackAuthor *AuthorInfo
	if res != nil {
		entries = res.Provenance
		fallbackAuthor = res.AuthorInfo
		d.SourceType = ResolveSourceType(res.DigitalSourceType)
	}
	chain := Ingest(entries)
	author := chain.Author
	if author == nil {
		author = fallbackAuthor
	}
	d.Author = BuildContact(author)
	view := Collapse(chain.Steps)
	d.Provenance = &view
}

func jpegDataURI(b64 string) string {
	if b64 == "" {
		return ""
	}
	return "data:image/jpeg;base64," + b64
}
