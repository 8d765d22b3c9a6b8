package controller

import "context"

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// dialogConfirmer asks through the modal mount. A first delete post only opens
// the dialog; the dialog re-posts the same event with the confirmed flag set.
type dialogConfirmer struct {
	c  *Controller
	ev Event
}

func (d dialogConfirmer) Confirm(_ context.Context, prompt string) bool {
	if d.ev.Confirmed {
		d.c.CloseModal()
		return true
	}
	d.c.modal.Render(d.c.r.ConfirmModal(prompt, d.ev.TargetID, d.ev.Label))
	return false
}
