package domain

// NotificationPrefs holds per-channel notification switches.
type NotificationPrefs struct {
	Email   bool `json:"email"`
	Push    bool `json:"push"`
	Desktop bool `json:"desktop"`
}

// Profile is the per-user account record served by the profile endpoints.
// Email is fixed to the authenticated identity and cannot be changed through
// a profile update.
type Profile struct {
	ID            string            `json:"id"`
	Email         string            `json:"email"`
	Name          string            `json:"name"`
	Title         string            `json:"title,omitempty"`
	Department    string            `json:"department,omitempty"`
	Notifications NotificationPrefs `json:"notifications"`
	Theme         string            `json:"theme"`
	Language      string            `json:"language"`
	Timezone      string            `json:"timezone"`
	UpdatedAt     string            `json:"updatedAt,omitempty"`
}

// DefaultProfile is the record created on first profile access.
func DefaultProfile(userID, email, name string) Profile {
	return Profile{
		ID:    userID,
		Email: email,
		Name:  name,
		Notifications: NotificationPrefs{
			Email: true,
			Push:  true,
		},
		Theme:    "light",
		Language: "ru",
		Timezone: "Europe/Moscow",
	}
}
