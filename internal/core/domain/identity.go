package domain

// AdminRequestStatus is the lifecycle state of a role-elevation request.
// Transitions are server-authoritative: the client renders whatever status
// the server last returned and never advances it locally.
type AdminRequestStatus string

const (
	RequestPending  AdminRequestStatus = "pending"
	RequestAccepted AdminRequestStatus = "accepted"
	RequestRejected AdminRequestStatus = "rejected"
)

// AdminRequest is a user's application for an elevated role.
type AdminRequest struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Role         string             `json:"role"`
	MobileNumber string             `json:"mobileNumber"`
	Organisation string             `json:"organisation"`
	Status       AdminRequestStatus `json:"status"`
	OwnerID      int64              `json:"ownerId"`
}

// Identity is the authenticated user's profile as held by the session.
// A nil *Identity means no authenticated session exists.
type Identity struct {
	ID             int64          `json:"id"`
	Username       string         `json:"username"`
	Email          string         `json:"email"`
	IsAdmin        bool           `json:"isAdmin"`
	IsSuperAdmin   bool           `json:"isSuperAdmin"`
	Address        string         `json:"address,omitempty"`
	ProfilePicture string         `json:"profilePicture,omitempty"`
	AdminRequests  []AdminRequest `json:"adminRequests"`
}

// Clone returns a deep copy so callers can merge profile edits without
// aliasing the copy held by the session store.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	clone := *i
	if i.AdminRequests != nil {
		clone.AdminRequests = make([]AdminRequest, len(i.AdminRequests))
		copy(clone.AdminRequests, i.AdminRequests)
	}
	return &clone
}
