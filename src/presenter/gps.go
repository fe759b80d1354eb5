package presenter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultMapSearchURL receives "{lat},{lon}" appended verbatim.
const DefaultMapSearchURL = "https://www.google.com/maps/search/?api=1&query="

const gpsSentinel = "None"

// Location is a formatted coordinate pair ready for display.
type Location struct {
	Text string `json:"text"`
	Link string `json:"link"`
}

// FormatGPS renders the pair as degrees/minutes/seconds. It returns nil when
// either axis is absent, the sentinel "None", or not a finite number; the
// caller hides the element in that case.
func FormatGPS(gps *GPS, mapSearchURL string) *Location {
	if gps == nil {
		return nil
	}
	latRaw, latOK := coordinate(gps.Latitude)
	lonRaw, lonOK := coordinate(gps.Longitude)
	if !latOK || !lonOK {
		return nil
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return nil
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return nil
	}
	if mapSearchURL == "" {
		mapSearchURL = DefaultMapSearchURL
	}

	text := toDMS(lat, "N", "S") + ", " + toDMS(lon, "E", "W")
	return &Location{
		Text: text,
		Link: mapSearchURL + latRaw + "," + lonRaw,
	}
}

// coordinate returns the axis as the string the service sent. Numbers are
// accepted too, including 0.
func coordinate(v Value) (string, bool) {
	switch x := v.raw.(type) {
	case string:
		s := strings.TrimSpace(x)
		if s == "" || s == gpsSentinel {
			return "", false
		}
		return s, true
	case float64:
		return formatNumber(x), true
	}
	return "", false
}

func toDMS(value float64, positive, negative string) string {
	hemisphere := positive
	if value < 0 {
		hemisphere = negative
	}
	abs := math.Abs(value)
	degrees := math.Trunc(abs)
	minutes := math.Floor((abs - degrees) * 60)
	seconds := (abs - degrees - minutes/60) * 3600
	return fmt.Sprintf("%d°%d'%s\" %s", int(degrees), int(minutes), strconv.FormatFloat(seconds, 'f', 2, 64), hemisphere)
}
