package presenter

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeChain(t *testing.T, raw string) []ProvenanceEntry {
	t.Helper()
	var entries []ProvenanceEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))
	return entries
}

func actionEntries(n int) []ProvenanceEntry {
	entries := make([]ProvenanceEntry, n)
	for i := range entries {
		entries[i] = ProvenanceEntry{Name: V("Action"), Action: V(fmt.Sprintf("c2pa.step%d", i))}
	}
	return entries
}

func TestClassify_Precedence(t *testing.T) {
	cases := []struct {
		name  string
		entry string
		want  Kind
	}{
		{"action", `{"name": "Action", "action": "c2pa.edited", "verification": "x"}`, KindAction},
		{"action code without name", `{"action": "c2pa.edited", "title": "t"}`, KindTitle},
		{"ingredient beats verification", `{"name": "Ingredient", "verification": "ok"}`, KindIngredient},
		{"verification beats generator", `{"verification": "Signature Valid", "generator": "g"}`, KindVerification},
		{"generator", `{"name": "Claim Generator", "generator": "lightroom/1"}`, KindClaimGenerator},
		{"issuer", `{"name": "Issued By", "issuer": "Adobe Inc."}`, KindIssuer},
		{"issuer needs its name", `{"name": "Signer", "issuer": "Adobe Inc."}`, KindEmpty},
		{"issued date", `{"name": "Issued On", "date": "Feb 04, 2026"}`, KindIssuedDate},
		{"author line", `{"name": "Author", "author": "Jane"}`, KindAuthorLine},
		{"title", `{"name": "Title", "title": "Harbour"}`, KindTitle},
		{"unrecognised", `{"name": "Copyright", "copyright": "Jane"}`, KindEmpty},
		{"not an object", `"oops"`, KindEmpty},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var e ProvenanceEntry
			require.NoError(t, json.Unmarshal([]byte(tc.entry), &e))
			assert.Equal(t, tc.want, Classify(e))
		})
	}
}

func TestIngest_AuthorExtraction(t *testing.T) {
	entries := decodeChain(t, `[
		{"name": "Claim Generator", "generator": "lightroom_classic/15.1.1"},
		{"name": "Author", "author": "Empty", "author_details": {}},
		{"name": "Author", "author": "Jane", "author_details": {"name": "Jane", "email": "jane@example.com"}},
		{"name": "Author", "author": "Second", "author_details": {"name": "Second"}},
		{"name": "Verification", "verification": "Signature Valid"}
	]`)

	chain := Ingest(entries)

	require.NotNil(t, chain.Author)
	assert.Equal(t, "Jane", chain.Author.Name)
	kinds := make([]Kind, 0, len(chain.Steps))
	for _, s := range chain.Steps {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []Kind{KindClaimGenerator, KindAuthorLine, KindAuthorLine, KindVerification}, kinds,
		"only the first qualifying author entry is removed; order is preserved")
	assert.Equal(t, "Lightroom Classic 15.1.1", chain.Steps[0].Text)
}

func TestCollapse(t *testing.T) {
	t.Run("empty chain", func(t *testing.T) {
		view := Collapse(nil)
		assert.True(t, view.NotFound)
		assert.False(t, view.Collapsible)
	})

	t.Run("below threshold", func(t *testing.T) {
		view := Collapse(Ingest(actionEntries(5)).Steps)
		assert.False(t, view.Collapsible)
		assert.Empty(t, view.ToggleLabel)
		for _, s := range view.Steps {
			assert.False(t, s.Hidden)
		}
	})

	t.Run("at threshold", func(t *testing.T) {
		view := Collapse(Ingest(actionEntries(6)).Steps)
		require.Len(t, view.Steps, 6)
		assert.True(t, view.Collapsible)
		assert.Equal(t, 2, view.HiddenCount)
		assert.Equal(t, "+2 more entries", view.ToggleLabel)

		hidden := make([]bool, len(view.Steps))
		for i, s := range view.Steps {
			hidden[i] = s.Hidden
		}
		assert.Equal(t, []bool{false, false, false, true, true, false}, hidden)
		assert.Equal(t, "c2pa.step5", view.Steps[5].Label, "final entry stays visible")
	})

	t.Run("long chain", func(t *testing.T) {
		view := Collapse(Ingest(actionEntries(10)).Steps)
		assert.Equal(t, 6, view.HiddenCount)
		assert.Equal(t, "+6 more entries", view.ToggleLabel)
		assert.Equal(t, CollapseLabel, view.CollapseLabel)
	})

	t.Run("input untouched", func(t *testing.T) {
		steps := Ingest(actionEntries(7)).Steps
		before := append([]Step(nil), steps...)
		Collapse(steps)
		if diff := cmp.Diff(before, steps); diff != "" {
			t.Fatalf("Collapse mutated its input:\n%s", diff)
		}
	})
}

func TestDescribeAction(t *testing.T) {
	t.Run("known code without parameters", func(t *testing.T) {
		icon, label, desc := describeAction("c2pa.cropped", Value{})
		assert.Equal(t, "✂️", icon)
		assert.Equal(t, "Cropped", label)
		assert.Equal(t, "Cropped the image", desc)
	})

	t.Run("unknown code", func(t *testing.T) {
		icon, label, desc := describeAction("c2pa.unknown_thing", Value{})
		assert.Equal(t, GenericActionIcon, icon)
		assert.Equal(t, "c2pa.unknown_thing", label)
		assert.Equal(t, "c2pa.unknown_thing", desc)
	})

	params := func(key string, value any) Value {
		return V(map[string]any{acrParamKey: key, acrValueKey: value})
	}
	cases := []struct {
		name   string
		params Value
		want   string
	}{
		{"exposure", params("Exposure2012", "0.5"), "Exposure +0.50 EV"},
		{"explicit plus", params("Exposure2012", "+1.25"), "Exposure +1.25 EV"},
		{"negative", params("Contrast2012", "-15"), "Contrast -15"},
		{"zero", params("Shadows2012", 0.0), "Shadows 0"},
		{"unsigned with unit", params("Temperature", 5500.0), "Temperature 5500K"},
		{"angle", params("CropAngle", "-1.27"), "Straighten -1.3°"},
		{"text value", params("ToneCurvePV2012", "Medium Contrast"), "Tone Curve: Medium Contrast"},
		{"no value", V(map[string]any{acrParamKey: "Dehaze"}), "Dehaze"},
		{"unknown parameter", params("Mystery", "3"), "Adjusted color, tone or exposure"},
		{"not an object", V("Exposure2012"), "Adjusted color, tone or exposure"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, desc := describeAction("c2pa.color_adjustments", tc.params)
			assert.Equal(t, tc.want, desc)
		})
	}
}

func TestFormatClaimGenerator(t *testing.T) {
	assert.Equal(t, "Lightroom Classic 15.1.1", FormatClaimGenerator("lightroom_classic/15.1.1"))
	assert.Equal(t, "Photoshop", FormatClaimGenerator("photoshop/"))
	assert.Equal(t, "Adobe Firefly", FormatClaimGenerator("Adobe Firefly"))
	assert.Equal(t, Unknown, FormatClaimGenerator(""))
}

func TestIngest_StepDetails(t *testing.T) {
	entries := decodeChain(t, `[
		{"name": "Ingredient", "title": "raw.dng", "relationship": "parentOf"},
		{"name": "Action", "action": "c2pa.opened", "software": "Lightroom", "when": "Feb 04, 2026 at 11:19 AM UTC"},
		{"name": "Claim Generator", "generator": "Adobe Lightroom", "version": "15.1"}
	]`)

	steps := Ingest(entries).Steps
	want := []Step{
		{Kind: KindIngredient, Icon: "🧩", Label: "Ingredient", Text: "raw.dng", Relationship: "Parent"},
		{Kind: KindAction, Icon: "📂", Label: "Opened", Description: "Opened a pre-existing file",
			Software: "Lightroom", When: "Feb 04, 2026 at 11:19 AM UTC"},
		{Kind: KindClaimGenerator, Icon: "⚙️", Label: "Claim Generator", Text: "Adobe Lightroom 15.1"},
	}
	if diff := cmp.Diff(want, steps); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}
}
