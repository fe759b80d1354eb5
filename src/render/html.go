package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"c2paview/src/presenter"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Row is one labelled metadata value.
type Row struct {
	Label string
	Value string
}

// Section groups rows under a heading.
type Section struct {
	Title string
	Rows  []Row
}

type pageData struct {
	Title        string
	UploadAction string
	presenter.Display
	Sections []Section

	// Shadow the display's image strings; data URIs need to be marked safe.
	Image           template.URL
	SourceThumbnail template.URL
	ClaimThumbnail  template.URL
}

// Page configures the surrounding chrome of the HTML page.
type Page struct {
	Title        string
	UploadAction string
}

// HTML paints the display model as a complete viewer page.
func HTML(w io.Writer, page Page, d presenter.Display) error {
	data := pageData{
		Title:        page.Title,
		UploadAction: page.UploadAction,
		Display:      d,

		Image:           imageSource(d.Image),
		SourceThumbnail: imageSource(d.SourceThumbnail),
		ClaimThumbnail:  imageSource(d.ClaimThumbnail),
	}
	if data.Title == "" {
		data.Title = "Image Metadata Viewer"
	}
	if d.Fields != nil {
		data.Sections = Sections(d.Fields)
	}
	if err := templates.ExecuteTemplate(w, "viewer.html", data); err != nil {
		return fmt.Errorf("render viewer page: %w", err)
	}
	return nil
}

// imageSource admits inline images and web URLs. Anything else is dropped.
func imageSource(src string) template.URL {
	lower := strings.ToLower(strings.TrimSpace(src))
	for _, prefix := range []string{"data:image/", "https://", "http://", "/"} {
		if strings.HasPrefix(lower, prefix) {
			return template.URL(src)
		}
	}
	return ""
}

// Sections lays the resolved fields out in display order.
func Sections(f *presenter.Fields) []Section {
	return []Section{
		{Title: "File", Rows: []Row{
			{"Filename", f.Filename},
			{"Format", f.Format},
			{"Dimensions", f.Dimensions},
			{"File Size", f.FileSize},
		}},
		{Title: "Camera", Rows: []Row{
			{"Make", f.CameraMake},
			{"Model", f.CameraModel},
			{"Lens", f.LensModel},
			{"Lens Serial", f.LensSerial},
			{"Body Serial", f.BodySerial},
			{"Software", f.Software},
		}},
		{Title: "Exposure", Rows: []Row{
			{"Aperture", f.Aperture},
			{"Max Aperture", f.MaxAperture},
			{"Shutter Speed", f.ShutterSpeed},
			{"ISO", f.ISO},
			{"Focal Length", f.FocalLength},
			{"Exposure Mode", f.ExposureMode},
			{"Metering Mode", f.MeteringMode},
			{"Flash", f.Flash},
			{"White Balance", f.WhiteBalance},
		}},
		{Title: "Image", Rows: []Row{
			{"Date Taken", f.DateOriginal},
			{"Date Digitized", f.DateDigitized},
			{"Artist", f.Artist},
			{"Description", f.Description},
			{"Resolution", f.Resolution},
			{"Color Space", f.ColorSpace},
			{"Color Profile", f.ColorProfile},
		}},
		{Title: "IPTC", Rows: []Row{
			{"Title", f.Title},
			{"Caption", f.Caption},
			{"Location", f.Location},
			{"City", f.City},
			{"Keywords", f.Keywords},
			{"Creator", f.IPTCCreator},
			{"Copyright", f.Copyright},
		}},
	}
}
