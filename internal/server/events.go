package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/tartampluch/birthday-dashboard/internal/config"
	"github.com/tartampluch/birthday-dashboard/internal/controller"
)

// targeted lists the events acting on one friend or alert.
var targeted = map[controller.EventType]bool{
	controller.EventEdit:         true,
	controller.EventDelete:       true,
	controller.EventViewMessages: true,
	controller.EventMarkRead:     true,
}

// parseEvent reads the posted form of one event. For an import, the returned
// closer releases the uploaded file once the event has been handled.
func parseEvent(r *http.Request, t controller.EventType) (controller.Event, io.Closer, error) {
	ev := controller.Event{Type: t}

	if t == controller.EventImport {
		if err := r.ParseMultipartForm(config.MaxFormSize); err != nil {
			return ev, nil, err
		}
		file, _, err := r.FormFile(config.FieldVCards)
		if err != nil {
			return ev, nil, err
		}
		ev.Payload = file
		return ev, file, nil
	}

	if err := r.ParseForm(); err != nil {
		return ev, nil, err
	}

	if targeted[t] {
		id, err := strconv.ParseInt(r.PostFormValue(config.FieldID), 10, 64)
		if err != nil {
			return ev, nil, fmt.Errorf("%s: %w", config.ErrInvalidEventTarget, err)
		}
		if id <= 0 {
			return ev, nil, errors.New(config.ErrInvalidEventTarget)
		}
		ev.TargetID = id
		ev.Label = r.PostFormValue(config.FieldLabel)
		ev.Confirmed = r.PostFormValue(config.FieldConfirmed) == config.ConfirmedValue
	}

	if t == controller.EventSubmit {
		ev.Form = controller.FormData{
			FriendID:     r.PostFormValue(config.FieldFriendID),
			Name:         r.PostFormValue(config.FieldName),
			Birthday:     r.PostFormValue(config.FieldBirthday),
			Relationship: r.PostFormValue(config.FieldRelationship),
			Email:        r.PostFormValue(config.FieldEmail),
			Phone:        r.PostFormValue(config.FieldPhone),
			Notes:        r.PostFormValue(config.FieldNotes),
		}
	}
	return ev, nil, nil
}
