package presenter

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind is the explicit discriminant of a provenance step, decided once when
// the chain is ingested.
type Kind string

const (
	KindAction         Kind = "action"
	KindIngredient     Kind = "ingredient"
	KindVerification   Kind = "verification"
	KindClaimGenerator Kind = "claim_generator"
	KindIssuer         Kind = "issuer"
	KindIssuedDate     Kind = "issued_date"
	KindAuthorLine     Kind = "author"
	KindTitle          Kind = "title"
	KindEmpty          Kind = "empty"
)

// Collapsing policy for long chains.
const (
	CollapseThreshold = 6
	collapseHead      = 3
	collapseTail      = 1
	CollapseLabel     = "Show less"
)

// Classify applies the structural predicates in precedence order; the first
// match wins.
func Classify(e ProvenanceEntry) Kind {
	has := func(v Value) bool { _, ok := v.Text(); return ok }
	switch {
	case has(e.Action) && e.nameIs("Action"):
		return KindAction
	case e.nameIs("Ingredient"):
		return KindIngredient
	case has(e.Verification):
		return KindVerification
	case has(e.Generator):
		return KindClaimGenerator
	case has(e.Issuer) && e.nameIs("Issued By"):
		return KindIssuer
	case has(e.Date) && e.nameIs("Issued On"):
		return KindIssuedDate
	case has(e.Author):
		return KindAuthorLine
	case has(e.Title):
		return KindTitle
	}
	return KindEmpty
}

// Step is a classified, display-ready provenance entry.
type Step struct {
	Kind         Kind   `json:"kind"`
	Icon         string `json:"icon,omitempty"`
	Label        string `json:"label,omitempty"`
	Text         string `json:"text,omitempty"`
	Description  string `json:"description,omitempty"`
	Software     string `json:"software,omitempty"`
	When         string `json:"when,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Hidden       bool   `json:"hidden,omitempty"`
}

// ProvenanceView is the rendered chain. NotFound replaces the list when the
// chain is empty after author extraction.
type ProvenanceView struct {
	NotFound      bool   `json:"not_found"`
	Steps         []Step `json:"steps"`
	Collapsible   bool   `json:"collapsible"`
	HiddenCount   int    `json:"hidden_count"`
	ToggleLabel   string `json:"toggle_label,omitempty"`
	CollapseLabel string `json:"collapse_label,omitempty"`
}

// Chain is the result of ingesting a raw provenance list.
type Chain struct {
	Author *AuthorInfo
	Steps  []Step
}

// Ingest extracts the first qualifying author entry and classifies the rest
// in their original order.
func Ingest(entries []ProvenanceEntry) Chain {
	var chain Chain
	extracted := false
	for _, e := range entries {
		if !extracted && e.nameIs("Author") && nonEmptyObject(e.AuthorDetails) {
			if author, ok := ParseAuthorInfo(e.AuthorDetails); ok {
				chain.Author = author
				extracted = true
				continue
			}
		}
		chain.Steps = append(chain.Steps, buildStep(e))
	}
	return chain
}

func nonEmptyObject(raw []byte) bool {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return false
	}
	res := gjson.ParseBytes(raw)
	if !res.IsObject() {
		return false
	}
	empty := true
	res.ForEach(func(_, _ gjson.Result) bool {
		empty = false
		return false
	})
	return !empty
}

func buildStep(e ProvenanceEntry) Step {
	kind := Classify(e)
	step := Step{Kind: kind}
	switch kind {
	case KindAction:
		step.Icon, step.Label, step.Description = describeAction(e.text(e.Action), e.Parameters)
		step.Software = e.text(e.Software)
		step.When = e.text(e.When)
	case KindIngredient:
		step.Icon, step.Label = "🧩", "Ingredient"
		step.Text = e.text(e.Title)
		step.Relationship = relationshipLabel(e.text(e.Relationship))
	case KindVerification:
		step.Icon, step.Label = "✅", "Verification"
		step.Text = e.text(e.Verification)
	case KindClaimGenerator:
		step.Icon, step.Label = "⚙️", "Claim Generator"
		step.Text = FormatClaimGenerator(e.text(e.Generator))
		if version := e.text(e.Version); version != "" && !strings.HasSuffix(step.Text, version) {
			step.Text += " " + version
		}
	case KindIssuer:
		step.Icon, step.Label = "🏛️", "Issued By"
		step.Text = e.text(e.Issuer)
	case KindIssuedDate:
		step.Icon, step.Label = "📅", "Issued On"
		step.Text = e.text(e.Date)
	case KindAuthorLine:
		step.Icon, step.Label = "👤", "Author"
		step.Text = e.text(e.Author)
	case KindTitle:
		step.Icon, step.Label = "🏷️", "Title"
		step.Text = e.text(e.Title)
	}
	return step
}

func relationshipLabel(rel string) string {
	switch rel {
	case "parentOf":
		return "Parent"
	case "componentOf":
		return "Component"
	case "inputTo":
		return "Input"
	}
	return rel
}

// Collapse applies the visibility policy. Below the threshold every step is
// visible; otherwise the head and the final step stay visible and the rest
// is hidden behind a toggle. Steps are never reordered.
func Collapse(steps []Step) ProvenanceView {
	n := len(steps)
	if n == 0 {
		return ProvenanceView{NotFound: true}
	}
	out := make([]Step, n)
	copy(out, steps)
	view := ProvenanceView{Steps: out}
	if n < CollapseThreshold {
		return view
	}
	for i := collapseHead; i < n-collapseTail; i++ {
		out[i].Hidden = true
	}
	view.Collapsible = true
	view.HiddenCount = n - collapseHead - collapseTail
	view.ToggleLabel = fmt.Sprintf("+%d more entries", view.HiddenCount)
	view.CollapseLabel = CollapseLabel
	return view
}
