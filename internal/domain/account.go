package domain

import "strings"

// PlaceholderMarker flags accounts copied from the template but never filled in.
const PlaceholderMarker = "your_username"

// Account is one journal-scoped portal login.
type Account struct {
	ShortName string `yaml:"journal_short_name" json:"journal_short_name"`
	FullName  string `yaml:"journal_full_name" json:"journal_full_name"`
	Username  string `yaml:"username" json:"username"`
	Password  string `yaml:"password" json:"password"`
}

// IsPlaceholder reports whether the username still carries the template marker.
func (a Account) IsPlaceholder() bool {
	return strings.Contains(strings.ToLower(a.Username), PlaceholderMarker)
}

// DisplayName prefers the full journal name and falls back to the short one.
func (a Account) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.ShortName
}
