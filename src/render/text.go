package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"c2paview/src/presenter"
)

// Text paints the display model for a terminal. Collapsed provenance steps
// are folded into the toggle line, as the page shows them before expanding.
func Text(w io.Writer, d presenter.Display, expand bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	p := &printer{w: tw}

	switch d.State {
	case presenter.StateEmpty:
		p.line("No image. Pass a URI or upload a file.")
		return p.flush(tw)
	case presenter.StateLoading:
		p.line("Loading metadata...")
		if d.Provenance != nil {
			p.sourceType(d.SourceType)
			p.credentials(d, expand)
		}
		return p.flush(tw)
	case presenter.StateError:
		p.line("Error: " + d.Error)
		return p.flush(tw)
	}

	p.sourceType(d.SourceType)
	if d.Fields != nil {
		for _, s := range Sections(d.Fields) {
			p.heading(s.Title)
			for _, r := range s.Rows {
				p.row(r.Label, r.Value)
			}
		}
	}
	if d.GPS != nil {
		p.heading("Location")
		p.row("Coordinates", d.GPS.Text)
		p.row("Map", d.GPS.Link)
	}
	p.credentials(d, expand)
	return p.flush(tw)
}

func stepDetail(s presenter.Step) string {
	parts := make([]string, 0, 4)
	if s.Text != "" {
		parts = append(parts, s.Text)
	}
	if s.Relationship != "" {
		parts = append(parts, "("+s.Relationship+")")
	}
	if s.Description != "" {
		parts = append(parts, s.Description)
	}
	var meta []string
	if s.Software != "" {
		meta = append(meta, s.Software)
	}
	if s.When != "" {
		meta = append(meta, s.When)
	}
	if len(meta) > 0 {
		parts = append(parts, "["+strings.Join(meta, ", ")+"]")
	}
	return strings.Join(parts, " ")
}

func (p *printer) sourceType(st *presenter.SourceType) {
	if st != nil {
		p.line(fmt.Sprintf("[%s] %s", st.Category, st.Label))
	}
}

// credentials prints the author and the provenance chain.
func (p *printer) credentials(d presenter.Display, expand bool) {
	if a := d.Author; a != nil {
		p.heading("Author")
		p.optional("Name", a.Name)
		p.optional("Job Title", a.JobTitle)
		p.optional("Organization", a.Organization)
		p.optional("Email", a.Email)
		p.optional("Telephone", a.Telephone)
		p.optional("Website", a.Website)
		for _, s := range a.Socials {
			p.row(s.Platform, s.URL)
		}
	}

	p.heading("Content Credentials")
	switch {
	case d.ProvenanceLoading:
		p.line("Loading provenance...")
	case d.Provenance == nil || d.Provenance.NotFound:
		p.line("No provenance information found")
	default:
		folded := false
		for _, s := range d.Provenance.Steps {
			if s.Hidden && !expand {
				if !folded {
					p.line("  " + d.Provenance.ToggleLabel)
					folded = true
				}
				continue
			}
			p.row(s.Icon+" "+s.Label, stepDetail(s))
		}
	}
}

// printer keeps the first write error so callers check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) write(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *printer) line(s string)           { p.write(s + "\n") }
func (p *printer) heading(title string)    { p.write("\n" + title + "\n") }
func (p *printer) row(label, value string) { p.write("  " + label + "\t" + value + "\n") }

func (p *printer) optional(label, value string) {
	if value != "" {
		p.row(label, value)
	}
}

func (p *printer) flush(tw *tabwriter.Writer) error {
	if p.err != nil {
		return p.err
	}
	return tw.Flush()
}
