package presenter

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// AuthorInfo is an author contact block. social_links keeps the order the
// service wrote it in, which a Go map would lose.
type AuthorInfo struct {
	Name        string      `json:"name,omitempty"`
	Author      string      `json:"author,omitempty"`
	Identifier  string      `json:"identifier,omitempty"`
	URLs        []string    `json:"url,omitempty"`
	Email       string      `json:"email,omitempty"`
	Telephone   string      `json:"telephone,omitempty"`
	JobTitle    string      `json:"jobTitle,omitempty"`
	WorksFor    string      `json:"worksFor,omitempty"`
	SameAs      []string    `json:"sameAs,omitempty"`
	SocialLinks []NamedLink `json:"social_links,omitempty"`
}

// NamedLink is one social_links entry, kept in document order.
type NamedLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ParseAuthorInfo reads an author block. It reports false when raw is not a
// JSON object.
func ParseAuthorInfo(raw []byte) (*AuthorInfo, bool) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return nil, false
	}
	res := gjson.ParseBytes(raw)
	if !res.IsObject() {
		return nil, false
	}
	a := &AuthorInfo{
		Name:       scalar(res.Get("name")),
		Author:     scalar(res.Get("author")),
		Identifier: scalar(res.Get("identifier")),
		URLs:       stringList(res.Get("url")),
		Email:      scalar(res.Get("email")),
		Telephone:  scalar(res.Get("telephone")),
		JobTitle:   scalar(res.Get("jobTitle")),
		SameAs:     stringList(res.Get("sameAs")),
	}
	works := res.Get("worksFor")
	if works.IsObject() {
		a.WorksFor = scalar(works.Get("name"))
	} else {
		a.WorksFor = scalar(works)
	}
	res.Get("social_links").ForEach(func(key, value gjson.Result) bool {
		if u := scalar(value); u != "" {
			a.SocialLinks = append(a.SocialLinks, NamedLink{Name: key.String(), URL: u})
		}
		return true
	})
	return a, true
}

// UnmarshalJSON leaves a non-object author block empty.
func (a *AuthorInfo) UnmarshalJSON(b []byte) error {
	parsed, ok := ParseAuthorInfo(b)
	if !ok {
		*a = AuthorInfo{}
		return nil
	}
	*a = *parsed
	return nil
}

// MarshalJSON writes social_links back as an object.
func (a AuthorInfo) MarshalJSON() ([]byte, error) {
	type plain AuthorInfo
	out := struct {
		plain
		SocialLinks json.RawMessage `json:"social_links,omitempty"`
	}{plain: plain(a)}
	if len(a.SocialLinks) > 0 {
		var b strings.Builder
		b.WriteByte('{')
		for i, l := range a.SocialLinks {
			if i > 0 {
				b.WriteByte(',')
			}
			k, _ := json.Marshal(l.Name)
			v, _ := json.Marshal(l.URL)
			b.Write(k)
			b.WriteByte(':')
			b.Write(v)
		}
		b.WriteByte('}')
		out.SocialLinks = json.RawMessage(b.String())
	}
	return json.Marshal(out)
}

func scalar(r gjson.Result) string {
	switch r.Type {
	case gjson.String, gjson.Number:
		return strings.TrimSpace(r.String())
	}
	return ""
}

// stringList accepts either a single string or an array of strings.
func stringList(r gjson.Result) []string {
	if r.IsArray() {
		var out []string
		for _, item := range r.Array() {
			if s := scalar(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := scalar(r); s != "" {
		return []string{s}
	}
	return nil
}

// Platform classification, first match wins.
const PlatformWebsite = "website"

var socialDomains = []struct {
	domain   string
	platform string
}{
	{"instagram.com", "instagram"},
	{"twitter.com", "twitter"},
	{"x.com", "twitter"},
	{"facebook.com", "facebook"},
	{"linkedin.com", "linkedin"},
	{"youtube.com", "youtube"},
	{"tiktok.com", "tiktok"},
	{"behance.net", "behance"},
	{"dribbble.com", "dribbble"},
	{"github.com", "github"},
	{"flickr.com", "flickr"},
	{"500px.com", "500px"},
	{"unsplash.com", "unsplash"},
}

// ClassifyPlatform matches a URL against the known social domains by
// case-insensitive substring.
func ClassifyPlatform(url string) string {
	lower := strings.ToLower(url)
	for _, d := range socialDomains {
		if strings.Contains(lower, d.domain) {
			return d.platform
		}
	}
	return PlatformWebsite
}

// SocialLink is a deduplicated profile URL with its platform.
type SocialLink struct {
	URL      string `json:"url"`
	Platform string `json:"platform"`
}

// Contact is the author block reduced for display. Empty fields are hidden
// slots, never placeholders.
type Contact struct {
	Name         string       `json:"name,omitempty"`
	Website      string       `json:"website,omitempty"`
	Email        string       `json:"email,omitempty"`
	Telephone    string       `json:"telephone,omitempty"`
	JobTitle     string       `json:"job_title,omitempty"`
	Organization string       `json:"organization,omitempty"`
	Socials      []SocialLink `json:"socials,omitempty"`
}

// BuildContact reduces an AuthorInfo to a Contact. Social links are gathered
// from sameAs, social_links, then url, deduplicated by exact string in order
// of first occurrence.
func BuildContact(a *AuthorInfo) *Contact {
	if a == nil {
		return nil
	}
	c := &Contact{
		Name:         firstNonEmpty(a.Name, a.Author, a.Identifier),
		Email:        a.Email,
		Telephone:    a.Telephone,
		JobTitle:     a.JobTitle,
		Organization: a.WorksFor,
	}

	seen := make(map[string]bool)
	add := func(u string) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		c.Socials = append(c.Socials, SocialLink{URL: u, Platform: ClassifyPlatform(u)})
	}
	for _, u := range a.SameAs {
		add(u)
	}
	for _, l := range a.SocialLinks {
		add(l.URL)
	}
	for _, u := range a.URLs {
		if ClassifyPlatform(u) != PlatformWebsite {
			add(u)
		} else if c.Website == "" {
			c.Website = u
		}
	}
	if c.empty() {
		return nil
	}
	return c
}

func (c *Contact) empty() bool {
	return c.Name == "" && c.Website == "" && c.Email == "" && c.Telephone == "" &&
		c.JobTitle == "" && c.Organization == "" && len(c.Socials) == 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
