package models

// GroupMember is one row of the platform's user-group listing.
type GroupMember struct {
	UserSerial  string `json:"userSerial"`
	GroupSerial string `json:"groupSerial"`
	Name        string `json:"name"`
	UserName    string `json:"userName,omitempty"`
	Email       string `json:"email"`
}

// DisplayName returns the member's name, falling back to the platform user name.
func (m GroupMember) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.UserName
}
