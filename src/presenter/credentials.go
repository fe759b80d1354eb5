package presenter

import (
	"net/url"
	"strings"
)

const (
	StatusVerified   = "Authenticity Verified"
	StatusUnverified = "Unverified"
)

// Credentials is the compact trust summary shown on hover.
type Credentials struct {
	Creator  string `json:"creator,omitempty"`
	IssuedBy string `json:"issued_by,omitempty"`
	IssuedOn string `json:"issued_on,omitempty"`
	Status   string `json:"status"`
	More     string `json:"more"`
}

// Summarize reduces a C2PA result to its credentials. A nil result is
// Unverified.
func Summarize(res *C2PAResult, uri, viewerURL string) Credentials {
	c := Credentials{Status: StatusUnverified, More: moreLink(viewerURL, uri)}
	if res == nil {
		return c
	}
	chain := Ingest(res.Provenance)
	author := chain.Author
	if author == nil {
		author = res.AuthorInfo
	}
	if contact := BuildContact(author); contact != nil {
		c.Creator = contact.Name
	}
	for _, s := range chain.Steps {
		switch s.Kind {
		case KindIssuer:
			if c.IssuedBy == "" {
				c.IssuedBy = s.Text
			}
		case KindIssuedDate:
			if c.IssuedOn == "" {
				c.IssuedOn = s.Text
			}
		case KindAuthorLine:
			if c.Creator == "" {
				c.Creator = s.Text
			}
		case KindVerification:
			c.Status = StatusVerified
		}
	}
	return c
}

func moreLink(viewerURL, uri string) string {
	if viewerURL == "" {
		viewerURL = "/"
	}
	sep := "?"
	if strings.Contains(viewerURL, "?") {
		sep = "&"
	}
	return viewerURL + sep + "uri=" + url.QueryEscape(uri)
}
