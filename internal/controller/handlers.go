package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/tartampluch/birthday-dashboard/internal/backend"
	"github.com/tartampluch/birthday-dashboard/internal/config"
	"github.com/tartampluch/birthday-dashboard/internal/engine"
	"github.com/tartampluch/birthday-dashboard/internal/render"
)

// -----------------------------------------------------------------------------
// Friend form
// -----------------------------------------------------------------------------

// SubmitForm creates or updates a friend depending on the hidden friend-id.
// On success the form goes back to Create mode and friends and upcoming reload.
// On failure the typed values stay in the form.
func (c *Controller) SubmitForm(ctx context.Context, form FormData) {
	mode, err := ParseMode(form.FriendID)
	if err != nil {
		slog.Warn(config.MsgFormInvalid,
			config.LogKeyComponent, config.CompController,
			config.LogKeyField, config.FieldFriendID,
			config.LogKeyError, err,
		)
		c.setForm(Create(), form.Input())
		c.notifier.Error(c.r.Text(config.TKeyNotifSaveFailed, nil))
		return
	}

	in := form.Input()
	if labelKey, err := form.Validate(); err != nil {
		slog.Warn(config.MsgFormInvalid,
			config.LogKeyComponent, config.CompController,
			config.LogKeyField, labelKey,
			config.LogKeyError, err,
		)
		c.setForm(mode, in)
		c.notifier.Error(c.r.Text(config.TKeyNotifInvalidField, map[string]any{"Field": c.r.Text(labelKey, nil)}))
		return
	}

	var res backend.Result
	if mode.IsEdit() {
		res, err = c.api.UpdateFriend(ctx, mode.FriendID(), in)
	} else {
		res, err = c.api.CreateFriend(ctx, in)
	}
	if err != nil {
		slog.Error(config.ErrSaveFriend,
			config.LogKeyComponent, config.CompController,
			config.LogKeyFriendID, mode.FriendID(),
			config.LogKeyError, err,
		)
		c.setForm(mode, in)
		c.notifier.Error(c.r.Text(config.TKeyNotifSaveFailed, nil))
		return
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = config.FallbackServerError
		}
		c.setForm(mode, in)
		c.notifier.Error(c.r.Text(config.TKeyNotifErrorPrefix, map[string]any{"Error": msg}))
		return
	}

	c.ResetForm()
	c.LoadFriends(ctx)
	c.LoadUpcomingBirthdays(ctx)

	key := config.TKeyNotifAdded
	if mode.IsEdit() {
		key = config.TKeyNotifUpdated
	}
	c.notifier.Success(c.r.Text(key, nil))
}

// EditFriend switches the form to Edit mode for id and fills it with the
// friend's current values. It reports whether the form changed; an unknown id
// or a failed fetch leaves it untouched.
func (c *Controller) EditFriend(ctx context.Context, id int64) bool {
	f, found, err := backend.FindFriend(ctx, c.api, id)
	if err != nil {
		slog.Error(config.ErrEditFriend,
			config.LogKeyComponent, config.CompController,
			config.LogKeyFriendID, id,
			config.LogKeyError, err,
		)
		return false
	}
	if !found {
		slog.Warn(config.MsgFriendNotFound,
			config.LogKeyComponent, config.CompController,
			config.LogKeyFriendID, id,
		)
		return false
	}
	c.setForm(Edit(id), f.Input())
	return true
}

// ResetForm empties the form and returns it to Create mode.
func (c *Controller) ResetForm() {
	c.setForm(Create(), backend.FriendInput{})
}

func (c *Controller) setForm(m Mode, in backend.FriendInput) {
	c.formMu.Lock()
	defer c.formMu.Unlock()
	c.mode = m
	c.formValues = in
	c.renderFormLocked()
}

func (c *Controller) renderForm() {
	c.formMu.Lock()
	defer c.formMu.Unlock()
	c.renderFormLocked()
}

func (c *Controller) renderFormLocked() {
	c.form.Render(c.r.Form(render.FormView{
		Editing:  c.mode.IsEdit(),
		FriendID: c.mode.FriendID(),
		Input:    c.formValues,
	}))
}

// -----------------------------------------------------------------------------
// Delete
// -----------------------------------------------------------------------------

// DeleteFriend removes a friend once confirm approves. A declined
// confirmation sends no request.
func (c *Controller) DeleteFriend(ctx context.Context, id int64, name string, confirm Confirmer) {
	prompt := c.r.Text(config.TKeyConfirmDelete, map[string]any{"Name": name})
	if !confirm.Confirm(ctx, prompt) {
		slog.Debug(config.MsgDeleteDeclined,
			config.LogKeyComponent, config.CompController,
			config.LogKeyFriendID, id,
		)
		return
	}

	res, err := c.api.DeleteFriend(ctx, id)
	if err != nil {
		slog.Error(config.ErrDeleteFriend,
			config.LogKeyComponent, config.CompController,
			config.LogKeyFriendID, id,
			config.LogKeyError, err,
		)
		c.notifier.Error(c.r.Text(config.TKeyNotifDeleteError, nil))
		return
	}
	if !res.Success {
		slog.Warn(config.ErrDeleteFriend,
			config.LogKeyComponent, config.CompController,
			config.LogKeyFriendID, id,
			config.LogKeyValue, res.Error,
		)
		c.notifier.Error(c.r.Text(config.TKeyNotifDeleteFailed, nil))
		return
	}

	c.LoadFriends(ctx)
	c.LoadUpcomingBirthdays(ctx)
	c.notifier.Success(c.r.Text(config.TKeyNotifDeleted, map[string]any{"Name": name}))
}

// -----------------------------------------------------------------------------
// Modal & alerts
// -----------------------------------------------------------------------------

// ShowMessages opens the modal with the message history of a friend.
func (c *Controller) ShowMessages(ctx context.Context, friendID int64, name string) {
	messages, err := c.api.FriendMessages(ctx, friendID)
	if err != nil {
		slog.Error(config.ErrLoadMessages,
			config.LogKeyComponent, config.CompController,
			config.LogKeyFriendID, friendID,
			config.LogKeyError, err,
		)
		c.notifier.Error(c.r.Text(config.TKeyNotifMessagesFailed, nil))
		return
	}
	c.modal.Render(c.r.MessagesModal(name, messages))
}

// CloseModal hides whatever the modal displays.
func (c *Controller) CloseModal() {
	c.modal.Render(c.r.ClosedModal())
}

// MarkAlertRead flags an alert as read and reloads the alerts. Failures are
// only logged.
func (c *Controller) MarkAlertRead(ctx context.Context, id int64) {
	res, err := c.api.MarkAlertRead(ctx, id)
	if err != nil {
		slog.Error(config.ErrMarkRead,
			config.LogKeyComponent, config.CompController,
			config.LogKeyAlertID, id,
			config.LogKeyError, err,
		)
		return
	}
	if !res.Success {
		slog.Warn(config.MsgMarkReadRejected,
			config.LogKeyComponent, config.CompController,
			config.LogKeyAlertID, id,
			config.LogKeyValue, res.Error,
		)
		return
	}
	c.LoadAlerts(ctx)
}

// -----------------------------------------------------------------------------
// vCard import / export
// -----------------------------------------------------------------------------

// ImportVCards creates one friend per usable card of r. Cards the backend
// refuses are skipped; a transport failure stops the import.
func (c *Controller) ImportVCards(ctx context.Context, r io.Reader) {
	inputs, err := engine.DecodeVCards(r)
	if err != nil {
		slog.Error(config.ErrImport,
			config.LogKeyComponent, config.CompController,
			config.LogKeyError, err,
		)
		c.notifier.Error(c.r.Text(config.TKeyNotifImportFailed, nil))
		return
	}

	created := 0
	var failure error
	for _, in := range inputs {
		if _, err := formFromInput(Create(), in).Validate(); err != nil {
			slog.Debug(config.MsgImportCreate,
				config.LogKeyComponent, config.CompController,
				config.LogKeyName, in.Name,
				config.LogKeyError, err,
			)
			continue
		}
		res, err := c.api.CreateFriend(ctx, in)
		if err != nil {
			failure = err
			break
		}
		if !res.Success {
			slog.Warn(config.MsgImportCreate,
				config.LogKeyComponent, config.CompController,
				config.LogKeyName, in.Name,
				config.LogKeyValue, res.Error,
			)
			continue
		}
		created++
	}

	if created > 0 {
		c.LoadFriends(ctx)
		c.LoadUpcomingBirthdays(ctx)
	}
	if failure != nil {
		slog.Error(config.ErrImport,
			config.LogKeyComponent, config.CompController,
			config.LogKeyCount, created,
			config.LogKeyError, failure,
		)
		c.notifier.Error(c.r.Text(config.TKeyNotifImportFailed, nil))
		return
	}
	c.notifier.Success(c.r.Text(config.TKeyNotifImported, map[string]any{"Count": created}))
}

// ExportVCards writes the current friend list as vCards.
func (c *Controller) ExportVCards(ctx context.Context, w io.Writer) error {
	friends, err := c.api.ListFriends(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrExport, err)
	}
	return engine.EncodeVCards(w, friends)
}
