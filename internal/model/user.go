package model

import (
	"time"
)

// Theme is the user's color scheme preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle flips between light and dark
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// User is the profile row of an authenticated account
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Theme     Theme     `json:"theme,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntityID implements store.Entity
func (u User) EntityID() string { return u.ID }

// DisplayName returns the name, falling back to the email
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// UserPatch is a partial profile update
type UserPatch struct {
	Name      *string
	Theme     *Theme
	AvatarURL *string
}

// Row renders the patch as backend columns
func (p UserPatch) Row() map[string]any {
	row := map[string]any{}
	if p.Name != nil {
		row["name"] = *p.Name
	}
	if p.Theme != nil {
		row["theme"] = string(*p.Theme)
	}
	if p.AvatarURL != nil {
		row["avatar_url"] = *p.AvatarURL
	}
	return row
}
