package backend

// Friend is a friend record as listed by GET /friends.
// Optional fields come back as null or "" and decode to the empty string.
type Friend struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Birthday     string `json:"birthday"` // YYYY-MM-DD
	Relationship string `json:"relationship,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Input returns the editable fields of the friend.
func (f Friend) Input() FriendInput {
	return FriendInput{
		Name:         f.Name,
		Birthday:     f.Birthday,
		Relationship: f.Relationship,
		Email:        f.Email,
		Phone:        f.Phone,
		Notes:        f.Notes,
	}
}

// FriendInput is the JSON body of create and update requests.
// Every field is sent, empty or not, so an update can clear an optional value.
type FriendInput struct {
	Name         string `json:"name"`
	Birthday     string `json:"birthday"`
	Relationship string `json:"relationship"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Notes        string `json:"notes"`
}

// Alert is a server-generated notification about a friend's birthday.
type Alert struct {
	ID        int64  `json:"id"`
	FriendID  int64  `json:"friend_id"`
	AlertType string `json:"alert_type"` // "reminder" or "birthday"
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

// UpcomingEntry is the server's projection of a friend's next birthday.
type UpcomingEntry struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Birthday  string `json:"birthday"`
	DaysUntil int    `json:"days_until"`
}

// Message is a birthday greeting previously sent to a friend.
type Message struct {
	ID        int64  `json:"id"`
	Message   string `json:"message"`
	Year      int    `json:"year"`
	SentAt    string `json:"sent_at"`
	EmailSent bool   `json:"email_sent"`
}

// Result is the response of every mutating endpoint.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	ID      int64  `json:"id,omitempty"`
}
