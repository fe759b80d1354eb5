package presenter

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Unknown is the display value of every unresolved field.
const Unknown = "Unknown"

var (
	exposureModes = map[int]string{0: "Auto", 1: "Manual", 2: "Aperture Priority", 3: "Shutter Priority"}
	meteringModes = map[int]string{0: "Unknown", 1: "Average", 2: "Center-weighted", 3: "Spot", 5: "Matrix"}
	flashStates   = map[int]string{0: "No Flash", 1: "Flash Fired"}
	whiteBalances = map[int]string{0: "Auto", 1: "Manual"}
)

// Fields is the resolved, display-ready view of a MetadataRecord.
type Fields struct {
	Filename   string `json:"filename"`
	Format     string `json:"format"`
	Dimensions string `json:"dimensions"`
	FileSize   string `json:"file_size"`

	CameraMake    string `json:"camera_make"`
	CameraModel   string `json:"camera_model"`
	LensModel     string `json:"lens_model"`
	Aperture      string `json:"aperture"`
	ShutterSpeed  string `json:"shutter_speed"`
	ISO           string `json:"iso"`
	FocalLength   string `json:"focal_length"`
	DateOriginal  string `json:"date_original"`
	DateDigitized string `json:"date_digitized"`
	Artist        string `json:"artist"`
	ColorSpace    string `json:"color_space"`
	ColorProfile  string `json:"color_profile"`
	Description   string `json:"description"`

	Resolution   string `json:"resolution"`
	Software     string `json:"software"`
	LensSerial   string `json:"lens_serial"`
	BodySerial   string `json:"body_serial"`
	MaxAperture  string `json:"max_aperture"`
	ExposureMode string `json:"exposure_mode"`
	MeteringMode string `json:"metering_mode"`
	Flash        string `json:"flash"`
	WhiteBalance string `json:"white_balance"`

	Title       string `json:"iptc_title"`
	Caption     string `json:"iptc_description"`
	Location    string `json:"iptc_location"`
	City        string `json:"iptc_city"`
	Keywords    string `json:"iptc_keywords"`
	Copyright   string `json:"iptc_copyright"`
	IPTCCreator string `json:"iptc_author"`
}

// Resolve returns the display text of v, or Unknown.
func Resolve(v Value) string {
	if s, ok := v.Text(); ok {
		return s
	}
	return Unknown
}

func resolveEnum(v Value, table map[int]string) string {
	code, ok := v.Int()
	if !ok {
		return Unknown
	}
	if label, ok := table[code]; ok {
		return label
	}
	return Unknown
}

// ResolveFields applies the fallback policy to every display field. A nil
// record or missing nested block resolves every field to Unknown.
func ResolveFields(rec *MetadataRecord) Fields {
	if rec == nil {
		rec = &MetadataRecord{}
	}
	photo := rec.Photography
	if photo == nil {
		photo = &Photography{}
	}
	iptc := rec.IPTC
	if iptc == nil {
		iptc = &IPTC{}
	}
	exif := func(tag string) Value { return rec.Exif[tag] }

	f := Fields{
		Filename: Resolve(rec.Filename),
		Format:   Resolve(rec.Format),

		CameraMake:    Resolve(photo.CameraMake),
		CameraModel:   Resolve(photo.CameraModel),
		LensModel:     Resolve(photo.LensModel),
		Aperture:      Resolve(photo.Aperture),
		ShutterSpeed:  Resolve(photo.ShutterSpeed),
		ISO:           Resolve(photo.ISO),
		FocalLength:   Resolve(photo.FocalLength),
		DateOriginal:  Resolve(photo.DateOriginal),
		DateDigitized: Resolve(photo.DateDigitized),
		Artist:        Resolve(photo.Artist),
		ColorSpace:    Resolve(photo.ColorSpace),
		ColorProfile:  Resolve(photo.ColorProfile),
		Description:   Resolve(photo.Description),

		Software:     Resolve(exif("Software")),
		LensSerial:   Resolve(exif("LensSerialNumber")),
		BodySerial:   Resolve(exif("BodySerialNumber")),
		ExposureMode: resolveEnum(exif("ExposureMode"), exposureModes),
		MeteringMode: resolveEnum(exif("MeteringMode"), meteringModes),
		Flash:        resolveEnum(exif("Flash"), flashStates),
		WhiteBalance: resolveEnum(exif("WhiteBalance"), whiteBalances),

		Title:       Resolve(iptc.Title),
		Caption:     Resolve(iptc.Description),
		Location:    Resolve(iptc.Location),
		City:        Resolve(iptc.City),
		Keywords:    Resolve(iptc.Keywords),
		Copyright:   Resolve(iptc.Copyright),
		IPTCCreator: Resolve(iptc.Author),
	}

	// date_digitized lives in photography for newer payloads and only in
	// the raw EXIF block for older ones.
	if f.DateDigitized == Unknown {
		f.DateDigitized = Resolve(exif("DateTimeDigitized"))
	}

	f.Dimensions = Unknown
	if w, ok := rec.Width.Text(); ok {
		if h, ok := rec.Height.Text(); ok {
			f.Dimensions = fmt.Sprintf("%s × %s pixels", w, h)
		}
	}

	f.Resolution = Unknown
	if x, ok := exif("XResolution").Text(); ok {
		if y, ok := exif("YResolution").Text(); ok {
			f.Resolution = fmt.Sprintf("%s x %s DPI", x, y)
		}
	}

	f.MaxAperture = Unknown
	if v, ok := exif("MaxApertureValue").Text(); ok {
		f.MaxAperture = "f/" + v
	}

	f.FileSize = Unknown
	if n, ok := rec.FileSizeBytes.Float(); ok && n > 0 {
		f.FileSize = humanize.Bytes(uint64(n))
	}
	return f
}
