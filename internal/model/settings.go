package model

// NotificationSettings toggles board notifications
type NotificationSettings struct {
	CardUpdates bool `json:"card_updates"`
	Mentions    bool `json:"mentions"`
	DueDate     bool `json:"due_date"`
	NewMembers  bool `json:"new_members"`
}

// PermissionSettings restricts what members may do on a board
type PermissionSettings struct {
	AllowMemberInvites bool `json:"allow_member_invites"`
	AllowCardDeletion  bool `json:"allow_card_deletion"`
	AllowListDeletion  bool `json:"allow_list_deletion"`
	RequireApproval    bool `json:"require_approval"`
}

// BoardSettings is the editable settings form for a board.
// Board columns and the board_settings row are merged into one value.
type BoardSettings struct {
	Title           string               `json:"title"`
	Description     string               `json:"description,omitempty"`
	Visibility      Visibility           `json:"visibility"`
	BackgroundColor string               `json:"background_color"`
	AllowComments   bool                 `json:"allow_comments"`
	AllowInvites    bool                 `json:"allow_invites"`
	Notifications   NotificationSettings `json:"notifications"`
	Permissions     PermissionSettings   `json:"permissions"`
}

// DefaultNotifications is used when a board has no settings row
func DefaultNotifications() NotificationSettings {
	return NotificationSettings{CardUpdates: true, Mentions: true, DueDate: true, NewMembers: true}
}

// DefaultPermissions is used when a board has no settings row
func DefaultPermissions() PermissionSettings {
	return PermissionSettings{AllowMemberInvites: true}
}
