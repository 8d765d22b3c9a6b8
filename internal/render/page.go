package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tartampluch/birthday-dashboard/internal/backend"
	"github.com/tartampluch/birthday-dashboard/internal/config"
)

// FormView is what the friend form displays.
type FormView struct {
	Editing  bool
	FriendID int64
	Input    backend.FriendInput
}

// Notice is one transient status popup.
type Notice struct {
	ID     string
	Kind   string // config.NotifyKindSuccess or config.NotifyKindError
	Text   string // plain text, escaped when rendered
	Fading bool
}

// Form renders the add/edit friend form. The hidden friend-id field is empty in
// Create mode and carries the friend id in Edit mode.
func (r *Renderer) Form(v FormView) string {
	icon, titleKey, hidden := "fa-user-plus", config.TKeyFormTitleAdd, ""
	if v.Editing {
		icon, titleKey, hidden = "fa-user-edit", config.TKeyFormTitleEdit, strconv.FormatInt(v.FriendID, 10)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<form id="friend-form" method="post" action="`+config.FormatEventAction+`">`, config.EventSubmit)
	fmt.Fprintf(&b, `<h2 id="form-title"><i class="fas %s"></i> %s</h2>`, icon, r.text(titleKey, nil))
	fmt.Fprintf(&b, `<input type="hidden" id="%[1]s" name="%[1]s" value="%[2]s">`, config.FieldFriendID, hidden)

	b.WriteString(r.field(config.FieldName, "text", config.TKeyLblName, v.Input.Name, true))
	b.WriteString(r.field(config.FieldBirthday, "date", config.TKeyLblBirthday, v.Input.Birthday, true))
	b.WriteString(r.field(config.FieldRelationship, "text", config.TKeyLblRelationship, v.Input.Relationship, false))
	b.WriteString(r.field(config.FieldEmail, "email", config.TKeyLblEmail, v.Input.Email, false))
	b.WriteString(r.field(config.FieldPhone, "tel", config.TKeyLblPhone, v.Input.Phone, false))
	fmt.Fprintf(&b, `<div class="form-group"><label for="%[1]s">%[2]s</label><textarea id="%[1]s" name="%[1]s">%[3]s</textarea></div>`,
		config.FieldNotes, r.text(config.TKeyLblNotes, nil), Escape(v.Input.Notes))

	b.WriteString(`<div class="form-actions">`)
	fmt.Fprintf(&b, `<button type="submit" class="btn btn-primary"><i class="fas fa-save"></i> %s</button>`,
		r.text(config.TKeyBtnSave, nil))
	if v.Editing {
		fmt.Fprintf(&b, `<button type="submit" id="cancel-edit" class="btn btn-secondary" formaction="`+config.FormatEventAction+`" formnovalidate>%s</button>`,
			config.EventCancelEdit, r.text(config.TKeyBtnCancelEdit, nil))
	}
	b.WriteString(`</div></form>`)
	return b.String()
}

func (r *Renderer) field(name, kind, labelKey, value string, required bool) string {
	req := ""
	if required {
		req = " required"
	}
	return fmt.Sprintf(`<div class="form-group"><label for="%[1]s">%[2]s</label><input type="%[3]s" id="%[1]s" name="%[1]s" value="%[4]s"%[5]s></div>`,
		name, r.text(labelKey, nil), kind, Escape(value), req)
}

// MessagesModal renders the open modal listing a friend's message history.
func (r *Renderer) MessagesModal(friendName string, messages []backend.Message) string {
	title := r.text(config.TKeyModalMessages, map[string]any{"Name": friendName})
	return r.modal("fa-comments", title, r.Messages(messages))
}

// ConfirmModal renders the open modal asking to confirm a friend deletion.
// Confirming re-posts the delete event with the confirmed flag.
func (r *Renderer) ConfirmModal(prompt string, friendID int64, friendName string) string {
	extra := fmt.Sprintf(`<input type="hidden" name="%s" value="%s">`, config.FieldConfirmed, config.ConfirmedValue)
	confirm := actionForm(config.EventDelete, strconv.FormatInt(friendID, 10), Escape(friendName), extra,
		`<button type="submit" class="btn btn-danger"><i class="fas fa-trash"></i> `+r.text(config.TKeyBtnDelete, nil)+`</button>`)
	cancel := fmt.Sprintf(`<form method="post" action="`+config.FormatEventAction+`" class="inline-action"><button type="submit" class="btn btn-secondary">%s</button></form>`,
		config.EventCloseModal, r.text(config.TKeyBtnCancel, nil))

	body := `<p class="confirm-prompt">` + Escape(prompt) + `</p><div class="confirm-actions">` + confirm + cancel + `</div>`
	return r.modal("fa-exclamation-triangle", r.text(config.TKeyModalConfirm, nil), body)
}

// ClosedModal is the modal mount content while no modal is displayed.
func (r *Renderer) ClosedModal() string {
	return `<div id="message-modal" class="modal" hidden></div>`
}

// modal renders the blocking overlay. The backdrop is a full-size button posting
// the backdrop-click event; the content area sits above it.
func (r *Renderer) modal(icon, title, body string) string {
	var b strings.Builder
	b.WriteString(`<div id="message-modal" class="modal" style="display: block">`)
	fmt.Fprintf(&b, `<form method="post" action="`+config.FormatEventAction+`" class="modal-backdrop"><button type="submit" class="modal-backdrop-hit" aria-label="%s"></button></form>`,
		config.EventBackdropClick, r.text(config.TKeyBtnClose, nil))
	b.WriteString(`<div class="modal-content">`)
	fmt.Fprintf(&b, `<form method="post" action="`+config.FormatEventAction+`" class="modal-close"><button type="submit" class="close" aria-label="%s">&times;</button></form>`,
		config.EventCloseModal, r.text(config.TKeyBtnClose, nil))
	fmt.Fprintf(&b, `<h2 id="modal-title"><i class="fas %s"></i> %s</h2>`, icon, title)
	fmt.Fprintf(&b, `<div id="modal-body">%s</div>`, body)
	b.WriteString(`</div></div>`)
	return b.String()
}

// Notifications renders the stack of active status popups.
func (r *Renderer) Notifications(notices []Notice) string {
	var b strings.Builder
	b.WriteString(`<div id="notifications">`)
	for _, n := range notices {
		color := config.ColorSuccess
		if n.Kind == config.NotifyKindError {
			color = config.ColorError
		}
		classes := "notification notification-" + Escape(n.Kind)
		if n.Fading {
			classes += " fade-out"
		}
		fmt.Fprintf(&b, `<div id="notice-%s" class="%s" role="status" style="`+config.FormatNotificationStyle+`">%s</div>`,
			Escape(n.ID), classes, color, Escape(n.Text))
	}
	b.WriteString(`</div>`)
	return b.String()
}
