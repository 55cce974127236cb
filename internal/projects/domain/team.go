package domain

// Team is a group of users sharing project visibility. Owned by the user who
// created it; membership is tracked per user.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"ownerId"`
	OwnerEmail  string `json:"ownerEmail"`
	CreatedAt   string `json:"createdAt"`
	MemberCount int    `json:"memberCount"`
	IsOwner     bool   `json:"isOwner,omitempty"`
	IsMember    bool   `json:"isMember,omitempty"`
}

// Membership links a user to a team.
type Membership struct {
	TeamID   string `json:"teamId"`
	Role     string `json:"role"` // owner | admin | member
	JoinedAt string `json:"joinedAt"`
}
