package controller

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/birthday-dashboard/internal/backend"
	"github.com/tartampluch/birthday-dashboard/internal/backend/backendtest"
	"github.com/tartampluch/birthday-dashboard/internal/config"
	"github.com/tartampluch/birthday-dashboard/internal/engine"
	"github.com/tartampluch/birthday-dashboard/internal/render"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

var ann = backend.Friend{ID: 4, Name: "Ann", Birthday: "1990-06-15"}

// newTestController builds a controller whose notices stay on screen for the
// whole test unless opts says otherwise.
func newTestController(t *testing.T, api *backendtest.MockAPI, opts Options) *Controller {
	t.Helper()
	if opts.NotificationDelay == 0 {
		opts.NotificationDelay = time.Hour
	}
	c := New(api, render.New("en", time.UTC), NewBus(), engine.NewGenerator(), opts)
	t.Cleanup(c.Close)
	return c
}

// expectLoads makes the three collection reads succeed with friends.
func expectLoads(api *backendtest.MockAPI, friends ...backend.Friend) {
	api.On("ListFriends", mock.Anything).Return(friends, nil).Maybe()
	api.On("ListAlerts", mock.Anything).Return([]backend.Alert{}, nil).Maybe()
	api.On("UpcomingBirthdays", mock.Anything).Return([]backend.UpcomingEntry{}, nil).Maybe()
}

func html(c *Controller, mount string) string {
	return c.Mount(mount).HTML()
}

func lastNotice(t *testing.T, c *Controller) render.Notice {
	t.Helper()
	active := c.Notifier().Active()
	require.NotEmpty(t, active, "a notification was expected")
	return active[len(active)-1]
}

// -----------------------------------------------------------------------------
// Construction & loading
// -----------------------------------------------------------------------------

func TestNew_InitialMounts(t *testing.T) {
	c := newTestController(t, new(backendtest.MockAPI), Options{})

	assert.Contains(t, html(c, config.MountForm), "Add New Friend")
	assert.Contains(t, html(c, config.MountModal), "hidden")
	assert.Equal(t, `<div id="notifications"></div>`, html(c, config.MountNotifications))
	assert.Empty(t, html(c, config.MountFriends), "nothing is fetched before Start")
	assert.Nil(t, c.Calendar().Load())
	assert.Nil(t, c.Mount(config.MountCalendar), "the calendar is not a page mount")
	assert.False(t, c.Mode().IsEdit())
}

func TestLoaders_Placeholders(t *testing.T) {
	api := new(backendtest.MockAPI)
	api.On("ListFriends", mock.Anything).Return(nil, errors.New("down"))
	api.On("ListAlerts", mock.Anything).Return([]backend.Alert{}, nil)
	api.On("UpcomingBirthdays", mock.Anything).Return(nil, errors.New("down"))
	c := newTestController(t, api, Options{})
	ctx := context.Background()

	c.LoadFriends(ctx)
	c.LoadAlerts(ctx)
	c.LoadUpcomingBirthdays(ctx)

	assert.Contains(t, html(c, config.MountFriends), "Error loading friends. Please try again.")
	assert.Contains(t, html(c, config.MountAlerts), "No alerts yet.")
	assert.Contains(t, html(c, config.MountUpcoming), "Error loading birthdays.")
	assert.Nil(t, c.Calendar().Load(), "a failed friend load does not touch the calendar")
	assert.Empty(t, c.Notifier().Active(), "load failures raise no notification")
}

func TestLoadFriends_RebuildsCalendar(t *testing.T) {
	api := new(backendtest.MockAPI)
	api.On("ListFriends", mock.Anything).Return([]backend.Friend{ann}, nil)
	c := newTestController(t, api, Options{})

	c.LoadFriends(context.Background())

	assert.Contains(t, html(c, config.MountFriends), `data-friend-id="4"`)
	frag := c.Calendar().Load()
	require.NotNil(t, frag)
	assert.Contains(t, string(frag.Data), "BEGIN:VEVENT")
	assert.Contains(t, string(frag.Data), "SUMMARY:Birthday: Ann")
	assert.NotEmpty(t, frag.ETag)
}

// -----------------------------------------------------------------------------
// Submit
// -----------------------------------------------------------------------------

func TestSubmitForm_CreateOrUpdate(t *testing.T) {
	tests := []struct {
		name   string
		hidden string
		setup  func(*backendtest.MockAPI, backend.FriendInput)
		notice string
	}{
		{
			name:   "Create",
			hidden: "",
			setup: func(api *backendtest.MockAPI, in backend.FriendInput) {
				api.On("CreateFriend", mock.Anything, in).Return(backend.Result{Success: true, ID: 12}, nil).Once()
			},
			notice: "Friend added successfully!",
		},
		{
			name:   "Update",
			hidden: "7",
			setup: func(api *backendtest.MockAPI, in backend.FriendInput) {
				api.On("UpdateFriend", mock.Anything, int64(7), in).Return(backend.Result{Success: true}, nil).Once()
			},
			notice: "Friend updated successfully!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := FormData{FriendID: tt.hidden, Name: "Ann", Birthday: "1990-06-15", Phone: "555"}
			api := new(backendtest.MockAPI)
			expectLoads(api, ann)
			tt.setup(api, form.Input())
			c := newTestController(t, api, Options{})

			c.SubmitForm(context.Background(), form)

			api.AssertExpectations(t)
			api.AssertCalled(t, "ListFriends", mock.Anything)
			api.AssertCalled(t, "UpcomingBirthdays", mock.Anything)
			assert.False(t, c.Mode().IsEdit(), "the form returns to Create mode")
			assert.Contains(t, html(c, config.MountForm), "Add New Friend")
			assert.NotContains(t, html(c, config.MountForm), "555")

			n := lastNotice(t, c)
			assert.Equal(t, config.NotifyKindSuccess, n.Kind)
			assert.Equal(t, tt.notice, n.Text)
		})
	}
}

func TestSubmitForm_Failures(t *testing.T) {
	form := FormData{FriendID: "7", Name: "Ann", Birthday: "1990-06-15"}

	tests := []struct {
		name   string
		res    backend.Result
		err    error
		notice string
	}{
		{"Refused", backend.Result{Error: "Name taken"}, nil, "Error: Name taken"},
		{"RefusedNoMessage", backend.Result{}, nil, "Error: " + config.FallbackServerError},
		{"Transport", backend.Result{}, errors.New("connection refused"), "Error saving friend. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(backendtest.MockAPI)
			api.On("UpdateFriend", mock.Anything, int64(7), form.Input()).Return(tt.res, tt.err).Once()
			c := newTestController(t, api, Options{})

			c.SubmitForm(context.Background(), form)

			api.AssertNotCalled(t, "ListFriends", mock.Anything)
			n := lastNotice(t, c)
			assert.Equal(t, config.NotifyKindError, n.Kind)
			assert.Equal(t, tt.notice, n.Text)

			// The typed values and the edit binding survive the failure.
			assert.Equal(t, Edit(7), c.Mode())
			assert.Contains(t, html(c, config.MountForm), `value="Ann"`)
			assert.Contains(t, html(c, config.MountForm), `value="7"`)
		})
	}
}

func TestSubmitForm_RejectedLocally(t *testing.T) {
	tests := []struct {
		name   string
		form   FormData
		notice string
	}{
		{"MissingName", FormData{Birthday: "1990-06-15"}, "Please enter a valid Name."},
		{"BadDate", FormData{Name: "Ann", Birthday: "15/06/1990"}, "Please enter a valid Birthday."},
		{"BadEmail", FormData{Name: "Ann", Birthday: "1990-06-15", Email: "not-an-email"}, "Please enter a valid Email."},
		{"BadHiddenID", FormData{FriendID: "abc", Name: "Zed Typed", Birthday: "1990-06-15"}, "Error saving friend. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(backendtest.MockAPI)
			c := newTestController(t, api, Options{})

			c.SubmitForm(context.Background(), tt.form)

			api.AssertNotCalled(t, "CreateFriend", mock.Anything, mock.Anything)
			api.AssertNotCalled(t, "UpdateFriend", mock.Anything, mock.Anything, mock.Anything)
			assert.Equal(t, tt.notice, lastNotice(t, c).Text)
			assert.Contains(t, html(c, config.MountForm), `value="`+tt.form.Birthday+`"`, "typed values stay in the form")
			if tt.form.Name != "" {
				assert.Contains(t, html(c, config.MountForm), `value="`+tt.form.Name+`"`)
			}
			assert.False(t, c.Mode().IsEdit())
		})
	}
}

// -----------------------------------------------------------------------------
// Edit
// -----------------------------------------------------------------------------

func TestEditFriend(t *testing.T) {
	full := ann
	full.Notes = "likes <tea>"
	api := new(backendtest.MockAPI)
	api.On("ListFriends", mock.Anything).Return([]backend.Friend{full}, nil)
	c := newTestController(t, api, Options{})
	ctx := context.Background()

	assert.False(t, c.EditFriend(ctx, 99), "unknown id leaves the form alone")
	assert.False(t, c.Mode().IsEdit())

	require.True(t, c.EditFriend(ctx, 4))
	assert.Equal(t, Edit(4), c.Mode())
	form := html(c, config.MountForm)
	assert.Contains(t, form, "Edit Friend")
	assert.Contains(t, form, `value="4"`)
	assert.Contains(t, form, "likes &lt;tea&gt;")
	assert.Contains(t, form, "cancel-edit")

	c.ResetForm()
	assert.Equal(t, Create(), c.Mode())
	assert.NotContains(t, html(c, config.MountForm), "Ann")
}

func TestEditFriend_FetchFailure(t *testing.T) {
	api := new(backendtest.MockAPI)
	api.On("ListFriends", mock.Anything).Return(nil, errors.New("down"))
	c := newTestController(t, api, Options{})

	assert.False(t, c.EditFriend(context.Background(), 4))
	assert.Equal(t, Create(), c.Mode())
}

// -----------------------------------------------------------------------------
// Delete
// -----------------------------------------------------------------------------

func TestDeleteFriend_Declined(t *testing.T) {
	api := new(backendtest.MockAPI)
	c := newTestController(t, api, Options{})

	var prompt string
	c.DeleteFriend(context.Background(), 4, "Ann", ConfirmFunc(func(_ context.Context, p string) bool {
		prompt = p
		return false
	}))

	assert.Equal(t, "Are you sure you want to delete Ann? This action cannot be undone.", prompt)
	api.AssertNotCalled(t, "DeleteFriend", mock.Anything, mock.Anything)
	assert.Empty(t, c.Notifier().Active())
}

func TestDeleteFriend_Outcomes(t *testing.T) {
	yes := ConfirmFunc(func(context.Context, string) bool { return true })

	tests := []struct {
		name   string
		res    backend.Result
		err    error
		kind   string
		notice string
		reload bool
	}{
		{"Deleted", backend.Result{Success: true}, nil, config.NotifyKindSuccess, "Ann has been deleted.", true},
		{"Refused", backend.Result{Error: "locked"}, nil, config.NotifyKindError, "Error deleting friend.", false},
		{"Transport", backend.Result{}, errors.New("timeout"), config.NotifyKindError, "Error deleting friend. Please try again.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(backendtest.MockAPI)
			expectLoads(api)
			api.On("DeleteFriend", mock.Anything, int64(4)).Return(tt.res, tt.err).Once()
			c := newTestController(t, api, Options{})

			c.DeleteFriend(context.Background(), 4, "Ann", yes)

			n := lastNotice(t, c)
			assert.Equal(t, tt.kind, n.Kind)
			assert.Equal(t, tt.notice, n.Text)
			if tt.reload {
				api.AssertCalled(t, "ListFriends", mock.Anything)
				api.AssertCalled(t, "UpcomingBirthdays", mock.Anything)
			} else {
				api.AssertNotCalled(t, "ListFriends", mock.Anything)
			}
		})
	}
}

func TestDeleteFriend_DialogThroughBus(t *testing.T) {
	api := new(backendtest.MockAPI)
	expectLoads(api, ann)
	api.On("DeleteFriend", mock.Anything, int64(4)).Return(backend.Result{Success: true}, nil).Once()
	c := newTestController(t, api, Options{})
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	// First post: the dialog opens, nothing is deleted.
	require.True(t, c.Bus().Dispatch(ctx, Event{Type: EventDelete, TargetID: 4, Label: "Ann"}))
	api.AssertNotCalled(t, "DeleteFriend", mock.Anything, mock.Anything)
	modal := html(c, config.MountModal)
	assert.Contains(t, modal, "Are you sure you want to delete Ann?")
	assert.Contains(t, modal, `name="confirmed" value="yes"`)

	// Second post from the dialog: confirmed.
	require.True(t, c.Bus().Dispatch(ctx, Event{Type: EventDelete, TargetID: 4, Label: "Ann", Confirmed: true}))
	api.AssertCalled(t, "DeleteFriend", mock.Anything, int64(4))
	assert.Equal(t, c.Renderer().ClosedModal(), html(c, config.MountModal))
	assert.Equal(t, "Ann has been deleted.", lastNotice(t, c).Text)
}

// -----------------------------------------------------------------------------
// Modal & alerts
// -----------------------------------------------------------------------------

func TestShowMessages(t *testing.T) {
	api := new(backendtest.MockAPI)
	api.On("FriendMessages", mock.Anything, int64(4)).
		Return([]backend.Message{{ID: 1, Message: "Happy birthday!", Year: 2024, EmailSent: true}}, nil)
	api.On("FriendMessages", mock.Anything, int64(5)).Return(nil, errors.New("down"))
	c := newTestController(t, api, Options{})
	ctx := context.Background()

	c.ShowMessages(ctx, 4, "Ann")
	modal := html(c, config.MountModal)
	assert.Contains(t, modal, "Birthday Messages for Ann")
	assert.Contains(t, modal, "Happy birthday!")
	assert.Contains(t, modal, "display: block")

	c.CloseModal()
	c.ShowMessages(ctx, 5, "Bob")
	assert.Equal(t, c.Renderer().ClosedModal(), html(c, config.MountModal), "the modal stays closed on failure")
	assert.Equal(t, "Error loading messages.", lastNotice(t, c).Text)
}

func TestModal_CloseEvents(t *testing.T) {
	api := new(backendtest.MockAPI)
	expectLoads(api)
	api.On("FriendMessages", mock.Anything, int64(4)).Return([]backend.Message{}, nil)
	c := newTestController(t, api, Options{})
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	for _, et := range []EventType{EventCloseModal, EventBackdropClick} {
		require.True(t, c.Bus().Dispatch(ctx, Event{Type: EventViewMessages, TargetID: 4, Label: "Ann"}))
		assert.Contains(t, html(c, config.MountModal), "Birthday Messages for Ann")

		require.True(t, c.Bus().Dispatch(ctx, Event{Type: et}))
		assert.Equal(t, c.Renderer().ClosedModal(), html(c, config.MountModal), string(et))
	}
}

func TestMarkAlertRead(t *testing.T) {
	api := new(backendtest.MockAPI)
	api.On("ListAlerts", mock.Anything).
		Return([]backend.Alert{{ID: 3, AlertType: "reminder", Message: "Soon", IsRead: true}}, nil)
	api.On("MarkAlertRead", mock.Anything, int64(3)).Return(backend.Result{Success: true}, nil)
	api.On("MarkAlertRead", mock.Anything, int64(8)).Return(backend.Result{Error: "gone"}, nil)
	api.On("MarkAlertRead", mock.Anything, int64(9)).Return(backend.Result{}, errors.New("down"))
	c := newTestController(t, api, Options{})
	ctx := context.Background()

	c.MarkAlertRead(ctx, 3)
	api.AssertNumberOfCalls(t, "ListAlerts", 1)
	assert.Contains(t, html(c, config.MountAlerts), "alert-item alert-reminder read")

	c.MarkAlertRead(ctx, 8)
	c.MarkAlertRead(ctx, 9)
	api.AssertNumberOfCalls(t, "ListAlerts", 1)
	assert.Empty(t, c.Notifier().Active(), "mark-read failures are only logged")
}

// -----------------------------------------------------------------------------
// Import & export
// -----------------------------------------------------------------------------

func vcards(cards ...[2]string) string {
	var b strings.Builder
	for _, c := range cards {
		b.WriteString("BEGIN:VCARD\r\nVERSION:4.0\r\nFN:" + c[0] + "\r\nBDAY:" + c[1] + "\r\nEND:VCARD\r\n")
	}
	return b.String()
}

func byName(name string) any {
	return mock.MatchedBy(func(in backend.FriendInput) bool { return in.Name == name })
}

func TestImportVCards(t *testing.T) {
	api := new(backendtest.MockAPI)
	expectLoads(api)
	api.On("CreateFriend", mock.Anything, byName("Ann")).Return(backend.Result{Success: true}, nil).Once()
	api.On("CreateFriend", mock.Anything, byName("Bob")).Return(backend.Result{Error: "duplicate"}, nil).Once()
	api.On("CreateFriend", mock.Anything, byName("Cid")).Return(backend.Result{Success: true}, nil).Once()
	c := newTestController(t, api, Options{})

	c.ImportVCards(context.Background(), strings.NewReader(vcards(
		[2]string{"Ann", "1990-06-15"},
		[2]string{"Bob", "1985-01-02"},
		[2]string{"Yearless", "--0101"},
		[2]string{"Cid", "19800303"},
	)))

	api.AssertExpectations(t)
	api.AssertNumberOfCalls(t, "CreateFriend", 3)
	api.AssertCalled(t, "ListFriends", mock.Anything)
	n := lastNotice(t, c)
	assert.Equal(t, config.NotifyKindSuccess, n.Kind)
	assert.Equal(t, "Imported 2 friends.", n.Text)
}

func TestImportVCards_TransportStops(t *testing.T) {
	api := new(backendtest.MockAPI)
	api.On("CreateFriend", mock.Anything, byName("Ann")).Return(backend.Result{}, errors.New("down")).Once()
	c := newTestController(t, api, Options{})

	c.ImportVCards(context.Background(), strings.NewReader(vcards(
		[2]string{"Ann", "1990-06-15"},
		[2]string{"Bob", "1985-01-02"},
	)))

	api.AssertNumberOfCalls(t, "CreateFriend", 1)
	api.AssertNotCalled(t, "ListFriends", mock.Anything)
	assert.Equal(t, "Error importing vCards.", lastNotice(t, c).Text)
}

func TestImportVCards_Garbage(t *testing.T) {
	api := new(backendtest.MockAPI)
	c := newTestController(t, api, Options{})

	c.ImportVCards(context.Background(), strings.NewReader("garbage\r\n"))

	api.AssertNotCalled(t, "CreateFriend", mock.Anything, mock.Anything)
	assert.Equal(t, "Error importing vCards.", lastNotice(t, c).Text)
}

func TestExportVCards(t *testing.T) {
	api := new(backendtest.MockAPI)
	api.On("ListFriends", mock.Anything).Return([]backend.Friend{ann}, nil).Once()
	api.On("ListFriends", mock.Anything).Return(nil, errors.New("down")).Once()
	c := newTestController(t, api, Options{})

	var b strings.Builder
	require.NoError(t, c.ExportVCards(context.Background(), &b))
	assert.Contains(t, b.String(), "FN:Ann")

	err := c.ExportVCards(context.Background(), &b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrExport)
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

func TestStartClose_Lifecycle(t *testing.T) {
	api := new(backendtest.MockAPI)
	expectLoads(api, ann)
	c := newTestController(t, api, Options{})
	ctx := context.Background()

	require.NoError(t, c.Start(ctx))
	assert.Equal(t, 12, c.Bus().Len(), "one subscription per event type")
	assert.True(t, c.scheduler.IsRunning())
	assert.NotEmpty(t, html(c, config.MountFriends))
	assert.NotNil(t, c.Calendar().Load())

	err := c.Start(ctx)
	require.Error(t, err)
	assert.Equal(t, config.ErrControllerStarted, err.Error())

	c.Close()
	assert.Equal(t, 0, c.Bus().Len())
	assert.False(t, c.scheduler.IsRunning())
	assert.False(t, c.Bus().Dispatch(ctx, Event{Type: EventRefreshFriends}))

	c.Close() // idempotent
	err = c.Start(ctx)
	require.Error(t, err)
	assert.Equal(t, config.ErrControllerClosed, err.Error())
}

func TestStart_SchedulesAlertReload(t *testing.T) {
	var alertLoads atomic.Int32
	api := new(backendtest.MockAPI)
	api.On("ListFriends", mock.Anything).Return([]backend.Friend{}, nil)
	api.On("UpcomingBirthdays", mock.Anything).Return([]backend.UpcomingEntry{}, nil)
	api.On("ListAlerts", mock.Anything).
		Run(func(mock.Arguments) { alertLoads.Add(1) }).
		Return([]backend.Alert{}, nil)

	c := newTestController(t, api, Options{AlertRefreshInterval: 20 * time.Millisecond})
	require.NoError(t, c.Start(context.Background()))

	// One load at start, then one per tick.
	require.Eventually(t, func() bool { return alertLoads.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
	api.AssertNumberOfCalls(t, "ListFriends", 1)

	c.Close()
	settled := alertLoads.Load()
	time.Sleep(80 * time.Millisecond)
	assert.LessOrEqual(t, alertLoads.Load(), settled+1, "no reload after Close")
}

func TestEvents_RefreshAndCancel(t *testing.T) {
	api := new(backendtest.MockAPI)
	expectLoads(api, ann)
	c := newTestController(t, api, Options{})
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	for _, et := range []EventType{EventRefreshFriends, EventRefreshAlerts, EventRefreshUpcoming} {
		require.True(t, c.Bus().Dispatch(ctx, Event{Type: et}))
	}
	api.AssertNumberOfCalls(t, "ListFriends", 2)
	api.AssertNumberOfCalls(t, "ListAlerts", 2)
	api.AssertNumberOfCalls(t, "UpcomingBirthdays", 2)

	require.True(t, c.Bus().Dispatch(ctx, Event{Type: EventEdit, TargetID: 4}))
	assert.Equal(t, Edit(4), c.Mode())
	require.True(t, c.Bus().Dispatch(ctx, Event{Type: EventCancelEdit}))
	assert.Equal(t, Create(), c.Mode())

	// An import post without a file is ignored.
	require.True(t, c.Bus().Dispatch(ctx, Event{Type: EventImport}))
	assert.Empty(t, c.Notifier().Active())
}
