package presenter

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

type (
	// MetadataRecord is one image's EXIF/IPTC/GPS block as returned by the
	// metadata service. Every field is optional.
	MetadataRecord struct {
		Filename      Value            `json:"filename"`
		Format        Value            `json:"format"`
		Width         Value            `json:"width"`
		Height        Value            `json:"height"`
		FileSizeBytes Value            `json:"file_size_bytes"`
		FileSizeMB    Value            `json:"file_size_mb"`
		Photography   *Photography     `json:"photography,omitempty"`
		Exif          ExifTags         `json:"exif,omitempty"`
		IPTC          *IPTC            `json:"iptc,omitempty"`
		GPS           *GPS             `json:"gps,omitempty"`
	}

	// Photography is the camera and exposure block of a record.
	Photography struct {
		CameraMake    Value `json:"camera_make"`
		CameraModel   Value `json:"camera_model"`
		LensModel     Value `json:"lens_model"`
		Aperture      Value `json:"aperture"`
		ShutterSpeed  Value `json:"shutter_speed"`
		ISO           Value `json:"iso"`
		FocalLength   Value `json:"focal_length"`
		DateOriginal  Value `json:"date_original"`
		DateDigitized Value `json:"date_digitized"`
		Artist        Value `json:"artist"`
		ColorSpace    Value `json:"color_space"`
		ColorProfile  Value `json:"color_profile"`
		Description   Value `json:"description"`
	}

	// IPTC is the editorial block of a record.
	IPTC struct {
		Title       Value `json:"title"`
		Description Value `json:"description"`
		Location    Value `json:"location"`
		City        Value `json:"city"`
		Keywords    Value `json:"keywords"`
		Author      Value `json:"author"`
		Copyright   Value `json:"copyright"`
	}

	// GPS carries decimal degrees as strings; "None" marks a missing axis.
	GPS struct {
		Latitude  Value `json:"latitude"`
		Longitude Value `json:"longitude"`
	}

	// DigitalSourceType names how the content was made, by IPTC code.
	DigitalSourceType struct {
		Code  string `json:"code"`
		Label string `json:"label"`
	}

	// Thumbnails are base64 JPEG bytes embedded in the manifest.
	Thumbnails struct {
		Claim      string `json:"claim_thumbnail,omitempty"`
		Ingredient string `json:"ingredient_thumbnail,omitempty"`
	}

	// C2PAResult is the slow, cryptographic half of a by-reference load.
	C2PAResult struct {
		Provenance        Provenance         `json:"provenance"`
		Thumbnails        *Thumbnails        `json:"thumbnails,omitempty"`
		DigitalSourceType *DigitalSourceType `json:"digital_source_type,omitempty"`
		AuthorInfo        *AuthorInfo        `json:"author_info,omitempty"`
	}

	// ExifTags is the raw tag map, keyed by EXIF tag name.
	ExifTags map[string]Value

	// Provenance is the raw chain in service order.
	Provenance []ProvenanceEntry

	// Bundle is a record carrying its provenance inline, as returned by the
	// upload and the legacy single-call endpoints.
	Bundle struct {
		MetadataRecord
		C2PAResult
		ImageData string `json:"image_data,omitempty"`
	}
)

// UnmarshalJSON decodes a wrong-typed block as empty so the rest of the
// record survives. IPTC, GPS, ExifTags and Provenance do the same.
func (p *Photography) UnmarshalJSON(b []byte) error {
	type plain Photography
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		*p = Photography{}
		return nil
	}
	*p = Photography(v)
	return nil
}

func (i *IPTC) UnmarshalJSON(b []byte) error {
	type plain IPTC
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		*i = IPTC{}
		return nil
	}
	*i = IPTC(v)
	return nil
}

func (g *GPS) UnmarshalJSON(b []byte) error {
	type plain GPS
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		*g = GPS{}
		return nil
	}
	*g = GPS(v)
	return nil
}

func (e *ExifTags) UnmarshalJSON(b []byte) error {
	var tags map[string]Value
	if err := json.Unmarshal(b, &tags); err != nil {
		*e = nil
		return nil
	}
	*e = tags
	return nil
}

func (p *Provenance) UnmarshalJSON(b []byte) error {
	var entries []ProvenanceEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		*p = nil
		return nil
	}
	*p = entries
	return nil
}

// UnmarshalJSON keeps only string fields.
func (t *Thumbnails) UnmarshalJSON(b []byte) error {
	res := gjson.ParseBytes(b)
	*t = Thumbnails{
		Claim:      stringField(res, "claim_thumbnail"),
		Ingredient: stringField(res, "ingredient_thumbnail"),
	}
	return nil
}

// UnmarshalJSON keeps only string fields.
func (d *DigitalSourceType) UnmarshalJSON(b []byte) error {
	res := gjson.ParseBytes(b)
	*d = DigitalSourceType{
		Code:  stringField(res, "code"),
		Label: stringField(res, "label"),
	}
	return nil
}

// UnmarshalJSON decodes both halves from the same object. Embedding alone
// would let one half's decoder shadow the other.
func (b *Bundle) UnmarshalJSON(data []byte) error {
	var rec MetadataRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	var res C2PAResult
	if err := json.Unmarshal(data, &res); err != nil {
		return err
	}
	*b = Bundle{
		MetadataRecord: rec,
		C2PAResult:     res,
		ImageData:      stringField(gjson.ParseBytes(data), "image_data"),
	}
	return nil
}

func stringField(res gjson.Result, key string) string {
	if v := res.Get(key); v.Type == gjson.String {
		return v.Str
	}
	return ""
}

// ProvenanceEntry is one raw step of a provenance chain. Its kind is not
// tagged on the wire; Classify decides it from the fields present.
type ProvenanceEntry struct {
	Name          Value           `json:"name"`
	Action        Value           `json:"action"`
	Parameters    Value           `json:"parameters"`
	Software      Value           `json:"software"`
	When          Value           `json:"when"`
	Relationship  Value           `json:"relationship"`
	Verification  Value           `json:"verification"`
	Issuer        Value           `json:"issuer"`
	Generator     Value           `json:"generator"`
	Version       Value           `json:"version"`
	Date          Value           `json:"date"`
	Author        Value           `json:"author"`
	Title         Value           `json:"title"`
	AuthorDetails json.RawMessage `json:"author_details,omitempty"`
}

// UnmarshalJSON keeps a non-object element as an empty entry instead of
// failing the whole chain.
func (e *ProvenanceEntry) UnmarshalJSON(b []byte) error {
	type plain ProvenanceEntry
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*e = ProvenanceEntry{}
		return nil
	}
	*e = ProvenanceEntry(p)
	return nil
}

func (e ProvenanceEntry) text(v Value) string {
	s, _ := v.Text()
	return s
}

func (e ProvenanceEntry) nameIs(name string) bool {
	s, ok := e.Name.raw.(string)
	return ok && s == name
}
