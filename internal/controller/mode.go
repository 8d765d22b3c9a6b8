package controller

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tartampluch/birthday-dashboard/internal/config"
)

// Mode tells whether the next submit creates a friend or updates one.
// The zero value is Create.
type Mode struct {
	edit     bool
	friendID int64
}

// Create is the mode of an empty form.
func Create() Mode {
	return Mode{}
}

// Edit is the mode of a form bound to an existing friend.
func Edit(friendID int64) Mode {
	return Mode{edit: true, friendID: friendID}
}

// ParseMode reads the hidden friend-id field: empty means Create.
func ParseMode(hidden string) (Mode, error) {
	hidden = strings.TrimSpace(hidden)
	if hidden == "" {
		return Create(), nil
	}
	id, err := strconv.ParseInt(hidden, 10, 64)
	if err != nil {
		return Mode{}, fmt.Errorf("%s: %w", config.ErrInvalidFriendID, err)
	}
	if id <= 0 {
		return Mode{}, fmt.Errorf("%s: %d", config.ErrInvalidFriendID, id)
	}
	return Edit(id), nil
}

// IsEdit reports whether the mode updates an existing friend.
func (m Mode) IsEdit() bool {
	return m.edit
}

// FriendID is the edited friend, zero in Create mode.
func (m Mode) FriendID() int64 {
	return m.friendID
}

// HiddenValue is what the hidden friend-id field carries in this mode.
func (m Mode) HiddenValue() string {
	if !m.edit {
		return ""
	}
	return strconv.FormatInt(m.friendID, 10)
}

func (m Mode) String() string {
	if !m.edit {
		return "create"
	}
	return "edit(" + m.HiddenValue() + ")"
}
