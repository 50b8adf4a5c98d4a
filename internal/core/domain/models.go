package domain

import "strings"

// LocalIDPrefix marks ids minted on this client while the remote was unreachable.
const LocalIDPrefix = "local-"

// Post is a single entry of the feed. Content is fixed at creation; only
// RephrasedContent and IsRephrased change afterwards.
type Post struct {
	ID               string `json:"id"`
	Content          string `json:"content"`
	Username         string `json:"username"`
	CreatedAtDisplay string `json:"time"`
	AuthorID         string `json:"user_id,omitempty"`
	RephrasedContent string `json:"rephrased_content,omitempty"`
	IsRephrased      bool   `json:"isRephrased,omitempty"`
}

// IsLocal reports whether the post was created offline and is unknown to the remote.
func (p Post) IsLocal() bool {
	return strings.HasPrefix(p.ID, LocalIDPrefix)
}

// HasRephrase reports whether an alternative phrasing has been fetched.
func (p Post) HasRephrase() bool {
	return p.RephrasedContent != ""
}

// CurrentText is the text the post should currently be shown with.
func (p Post) CurrentText() string {
	if p.IsRephrased && p.HasRephrase() {
		return p.RephrasedContent
	}
	return p.Content
}

// User is the stub identity produced by the mock login.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ThemeName selects a display theme. The palette itself lives outside this module.
type ThemeName string

const (
	ThemeDefault ThemeName = "default"
	ThemeRetro   ThemeName = "retro"
	ThemeNeon    ThemeName = "neon"
	ThemeCool    ThemeName = "cool"
)

// Themes lists the known theme names in display order.
var Themes = []ThemeName{ThemeDefault, ThemeRetro, ThemeNeon, ThemeCool}

// Valid reports whether t is one of the known themes.
func (t ThemeName) Valid() bool {
	for _, known := range Themes {
		if t == known {
			return true
		}
	}
	return false
}
