package render

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"c2paview/src/presenter"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyDisplay(steps int) presenter.Display {
	entries := make([]presenter.ProvenanceEntry, steps)
	for i := range entries {
		entries[i] = presenter.ProvenanceEntry{
			Name:   presenter.V("Action"),
			Action: presenter.V("c2pa.cropped"),
			When:   presenter.V(fmt.Sprintf("step %d", i)),
		}
	}
	return presenter.Compose(presenter.Input{
		URI: "https://img.example/a.jpg",
		Record: &presenter.MetadataRecord{
			Filename: presenter.V("a.jpg"),
			GPS:      &presenter.GPS{Latitude: presenter.V("0"), Longitude: presenter.V("0")},
		},
		C2PALoaded: true,
		C2PA: &presenter.C2PAResult{
			Provenance: entries,
			Thumbnails: &presenter.Thumbnails{Claim: "Q0xBSU0="},
			AuthorInfo: &presenter.AuthorInfo{
				Name:   "Jane Doe",
				SameAs: []string{"https://instagram.com/jane"},
				URLs:   []string{"https://janedoe.photo"},
			},
		},
	}, presenter.Options{})
}

func renderHTML(t *testing.T, d presenter.Display) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, Page{UploadAction: "/"}, d))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestHTML_Ready(t *testing.T) {
	doc := renderHTML(t, readyDisplay(6))

	assert.Equal(t, "ready", doc.Find("body").AttrOr("data-state", ""))
	assert.Equal(t, "https://img.example/a.jpg", doc.Find("#main-image").AttrOr("src", ""))
	assert.Equal(t, `0°0'0.00" N, 0°0'0.00" E`, doc.Find("a.gps-link").Text())
	assert.Equal(t, presenter.DefaultMapSearchURL+"0,0", doc.Find("a.gps-link").AttrOr("href", ""))

	assert.Equal(t, "Jane Doe", doc.Find(".author-name").Text())
	assert.Equal(t, "https://janedoe.photo", doc.Find("a.author-website").AttrOr("href", ""))
	assert.Equal(t, "instagram", doc.Find("a.social-link").AttrOr("data-platform", ""))
	assert.Zero(t, doc.Find(".author-email").Length(), "empty slots are not rendered")

	assert.Equal(t, "data:image/jpeg;base64,Q0xBSU0=", doc.Find(".thumbnail.claim img").AttrOr("src", ""))

	filename := doc.Find(".metadata-row").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find(".metadata-label").Text() == "Filename"
	})
	assert.Equal(t, "a.jpg", filename.Find(".metadata-value").Text())
}

func TestHTML_CollapsedProvenance(t *testing.T) {
	doc := renderHTML(t, readyDisplay(6))

	items := doc.Find(".provenance-item")
	require.Equal(t, 6, items.Length())
	var hidden []bool
	items.Each(func(_ int, s *goquery.Selection) {
		_, ok := s.Attr("hidden")
		hidden = append(hidden, ok)
	})
	assert.Equal(t, []bool{false, false, false, true, true, false}, hidden)

	toggle := doc.Find("button.provenance-toggle")
	assert.Equal(t, "+2 more entries", toggle.Text())
	assert.Equal(t, "Show less", toggle.AttrOr("data-collapse", ""))
	assert.Equal(t, "✂️", strings.TrimSpace(items.First().Find(".icon").Text()))
	assert.Equal(t, "Cropped the image", items.First().Find(".description").Text())
}

func TestHTML_ShortChainHasNoToggle(t *testing.T) {
	doc := renderHTML(t, readyDisplay(5))
	assert.Equal(t, 5, doc.Find(".provenance-item").Length())
	assert.Zero(t, doc.Find("[hidden]").Length())
	assert.Zero(t, doc.Find("button.provenance-toggle").Length())
}

func TestHTML_States(t *testing.T) {
	doc := renderHTML(t, presenter.Display{State: presenter.StateError, Error: "Failed to load metadata: HTTP error! status: 500"})
	assert.Contains(t, doc.Find(".error").Text(), "HTTP error! status: 500")
	assert.Zero(t, doc.Find(".metadata-section").Length())

	doc = renderHTML(t, presenter.Display{State: presenter.StateEmpty})
	form := doc.Find("form.upload-prompt")
	require.Equal(t, 1, form.Length())
	assert.Equal(t, "file", form.Find("input[type=file]").AttrOr("name", ""))

	doc = renderHTML(t, readyDisplay(0))
	assert.Equal(t, "No provenance information found", doc.Find(".not-found").Text())

	pending := readyDisplay(1)
	pending.ProvenanceLoading, pending.Provenance = true, nil
	doc = renderHTML(t, pending)
	assert.Equal(t, "Loading provenance...", doc.Find("#provenance .loading").Text())
}

func TestHTML_ProvenanceWhileLoading(t *testing.T) {
	d := readyDisplay(2)
	d.State, d.Fields, d.GPS = presenter.StateLoading, nil, nil

	doc := renderHTML(t, d)
	assert.Equal(t, "Loading metadata...", doc.Find(".sidebar-content > .loading").Text())
	assert.Equal(t, 2, doc.Find(".provenance-item").Length())
	assert.Equal(t, "Jane Doe", doc.Find(".author-name").Text())
	assert.Zero(t, doc.Find(".metadata-row").Length())

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, d, false))
	assert.Contains(t, buf.String(), "Loading metadata...")
	assert.Equal(t, 2, strings.Count(buf.String(), "Cropped the image"))
}

func TestHTML_DropsUnsafeImageSource(t *testing.T) {
	d := presenter.Display{State: presenter.StateLoading, Image: "javascript:alert(1)"}
	doc := renderHTML(t, d)
	assert.Zero(t, doc.Find("#main-image").Length())
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, readyDisplay(6), false))
	out := buf.String()

	assert.Contains(t, out, "Filename")
	assert.Contains(t, out, "a.jpg")
	assert.Contains(t, out, "+2 more entries")
	assert.Equal(t, 4, strings.Count(out, "Cropped the image"), "hidden steps are folded")

	buf.Reset()
	require.NoError(t, Text(&buf, readyDisplay(6), true))
	assert.Equal(t, 6, strings.Count(buf.String(), "Cropped the image"))
	assert.NotContains(t, buf.String(), "more entries")
}

func TestText_Error(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, presenter.Display{State: presenter.StateError, Error: "boom"}, false))
	assert.Equal(t, "Error: boom\n", buf.String())
}
