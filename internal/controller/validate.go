package controller

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/tartampluch/birthday-dashboard/internal/backend"
	"github.com/tartampluch/birthday-dashboard/internal/config"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// FormData is the flat record read from the friend form.
// The tags mirror the constraints of the HTML inputs and nothing more.
type FormData struct {
	FriendID     string `validate:"omitempty,numeric"`
	Name         string `validate:"required"`
	Birthday     string `validate:"required,datetime=2006-01-02"`
	Relationship string
	Email        string `validate:"omitempty,email"`
	Phone        string
	Notes        string
}

// fieldLabels maps struct fields to the translation key of their form label.
var fieldLabels = map[string]string{
	"Name":     config.TKeyLblName,
	"Birthday": config.TKeyLblBirthday,
	"Email":    config.TKeyLblEmail,
}

// Validate returns the label key of the first field breaking a form constraint.
// The key is empty when the broken field has no visible label.
func (f FormData) Validate() (labelKey string, err error) {
	err = formValidator().Struct(f)
	if err == nil {
		return "", nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fieldLabels[verrs[0].Field()], err
	}
	return "", err
}

// Input returns the JSON body sent to the backend.
func (f FormData) Input() backend.FriendInput {
	return backend.FriendInput{
		Name:         f.Name,
		Birthday:     f.Birthday,
		Relationship: f.Relationship,
		Email:        f.Email,
		Phone:        f.Phone,
		Notes:        f.Notes,
	}
}

// formFromInput is the reverse of Input, used to keep typed values on screen.
func formFromInput(m Mode, in backend.FriendInput) FormData {
	return FormData{
		FriendID:     m.HiddenValue(),
		Name:         in.Name,
		Birthday:     in.Birthday,
		Relationship: in.Relationship,
		Email:        in.Email,
		Phone:        in.Phone,
		Notes:        in.Notes,
	}
}
