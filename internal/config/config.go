package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client towards the backend API.
var UserAgent = "Birthday-Dashboard/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Birthday Dashboard"
	AppID             = "com.github.tartampluch.birthday-dashboard"
	CLIName           = "birthday-dashboard"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "dashboard.log"
	EnvPrefix         = "BIRTHDAY"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Commands, Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	CmdServe   = "serve"
	CmdCheck   = "check"
	CmdVersion = "version"

	CmdDescRoot    = "Birthday reminder dashboard rendered from the reminder backend API"
	CmdDescServe   = "Serve the dashboard page and keep its fragments in sync with the backend"
	CmdDescCheck   = "Verify that the backend API answers every read endpoint"
	CmdDescVersion = "Show application version and exit"

	FlagConfig  = "config"
	FlagDebug   = "debug"
	FlagPort    = "port"
	FlagAddr    = "addr"
	FlagBackend = "backend"
	FlagLang    = "lang"

	FlagDescConfig  = "Path to a YAML settings file"
	FlagDescDebug   = "Enable debug logging to stdout"
	FlagDescPort    = "Port the dashboard listens on"
	FlagDescAddr    = "Address the dashboard binds to"
	FlagDescBackend = "Base URL of the backend API (including /api)"
	FlagDescLang    = "Dashboard language, one of: %s"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Settings Keys (viper)
// -----------------------------------------------------------------------------

const (
	KeyServerAddr        = "server.addr"
	KeyServerPort        = "server.port"
	KeyBackendURL        = "backend.url"
	KeyBackendTimeout    = "backend.timeout"
	KeyLanguage          = "ui.language"
	KeyAlertRefresh      = "alerts.refresh_interval"
	KeyNotificationDelay = "notifications.delay"
	KeyNotificationFade  = "notifications.fade"
	SettingsFileType     = "yaml"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
// The first entry is the fallback.
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Default Values
// -----------------------------------------------------------------------------

const (
	DefaultPort              = "18081"
	DefaultBackendURL        = "http://127.0.0.1:5000/api"
	DefaultLanguage          = "en"
	DefaultAlertRefresh      = 5 * time.Minute
	DefaultNotificationDelay = 3 * time.Second
	DefaultNotificationFade  = 300 * time.Millisecond
	UIDSalt                  = "birthday-dashboard-v1-"
	FallbackServerError      = "unknown error"
	FallbackSummary          = "Birthday: %s"
	FallbackSummaryAge       = "Birthday: %s (%d)"
)

// -----------------------------------------------------------------------------
// Backend API Contract
// -----------------------------------------------------------------------------

const (
	PathFriends          = "/friends"
	PathAlerts           = "/alerts"
	PathUpcoming         = "/upcoming-birthdays"
	FormatPathFriend     = "/friends/%d"
	FormatPathAlertRead  = "/alerts/%d/read"
	FormatPathMessages   = "/messages/%d"
	MimeJSON             = "application/json"
	MaxHTTPResponseSize  = 16 * 1024 * 1024 // 16MB
	MaxFormSize          = 8 * 1024 * 1024  // 8MB, vCard uploads included
	SchemeHTTP           = "http"
	SchemeHTTPS          = "https"
	FormatUnexpectedCode = "%w: %d (%s %s)"
)

// -----------------------------------------------------------------------------
// Dashboard Events
// -----------------------------------------------------------------------------

// Event names double as the last segment of the POST /events/{type} route.
const (
	EventSubmit          = "submit"
	EventCancelEdit      = "cancel-edit"
	EventCloseModal      = "close-modal"
	EventBackdropClick   = "backdrop-click"
	EventRefreshFriends  = "refresh-friends"
	EventRefreshAlerts   = "refresh-alerts"
	EventRefreshUpcoming = "refresh-upcoming"
	EventEdit            = "edit"
	EventDelete          = "delete"
	EventViewMessages    = "view-messages"
	EventMarkRead        = "mark-read"
	EventImport          = "import"

	FormatEventAction = "/events/%s"

	// Form field names shared by the renderer and the page server.
	FieldFriendID     = "friend-id"
	FieldName         = "name"
	FieldBirthday     = "birthday"
	FieldRelationship = "relationship"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldNotes        = "notes"
	FieldID           = "id"
	FieldLabel        = "label"
	FieldConfirmed    = "confirmed"
	FieldVCards       = "vcards"
	ConfirmedValue    = "yes"

	FormSectionAnchor = "#friend-form-section"
)

// -----------------------------------------------------------------------------
// Mount Points
// -----------------------------------------------------------------------------

const (
	MountFriends       = "friends"
	MountAlerts        = "alerts"
	MountUpcoming      = "upcoming"
	MountForm          = "form"
	MountModal         = "modal"
	MountNotifications = "notifications"
	MountCalendar      = "calendar"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyPageTitle       = "page_title"
	TKeySectionFriends  = "section_friends"
	TKeySectionAlerts   = "section_alerts"
	TKeySectionUpcoming = "section_upcoming"
	TKeySectionImport   = "section_import"

	TKeyFriendsEmpty  = "friends_empty"
	TKeyFriendsError  = "friends_error"
	TKeyAlertsEmpty   = "alerts_empty"
	TKeyAlertsError   = "alerts_error"
	TKeyUpcomingEmpty = "upcoming_empty"
	TKeyUpcomingError = "upcoming_error"
	TKeyMessagesEmpty = "messages_empty"

	TKeyDaysToday    = "days_today"
	TKeyDaysTomorrow = "days_tomorrow"
	TKeyDaysIn       = "days_in" // Requires Count

	TKeyBtnMessages   = "btn_messages"
	TKeyBtnEdit       = "btn_edit"
	TKeyBtnDelete     = "btn_delete"
	TKeyBtnMarkRead   = "btn_mark_read"
	TKeyBtnRefresh    = "btn_refresh"
	TKeyBtnSave       = "btn_save"
	TKeyBtnCancelEdit = "btn_cancel_edit"
	TKeyBtnClose      = "btn_close"
	TKeyBtnCancel     = "btn_cancel"
	TKeyBtnImport     = "btn_import"

	TKeyFormTitleAdd  = "form_title_add"
	TKeyFormTitleEdit = "form_title_edit"

	TKeyLblName         = "lbl_name"
	TKeyLblBirthday     = "lbl_birthday"
	TKeyLblRelationship = "lbl_relationship"
	TKeyLblEmail        = "lbl_email"
	TKeyLblPhone        = "lbl_phone"
	TKeyLblNotes        = "lbl_notes"

	TKeyModalMessages = "modal_messages_title" // Requires Name
	TKeyModalConfirm  = "modal_confirm_title"
	TKeyMsgYear       = "msg_year" // Requires Year
	TKeyMsgEmailSent  = "msg_email_sent"
	TKeyConfirmDelete = "confirm_delete" // Requires Name

	TKeyNotifAdded          = "notif_friend_added"
	TKeyNotifUpdated        = "notif_friend_updated"
	TKeyNotifErrorPrefix    = "notif_error_prefix" // Requires Error
	TKeyNotifSaveFailed     = "notif_save_failed"
	TKeyNotifDeleted        = "notif_friend_deleted" // Requires Name
	TKeyNotifDeleteFailed   = "notif_delete_failed"
	TKeyNotifDeleteError    = "notif_delete_error"
	TKeyNotifMessagesFailed = "notif_messages_failed"
	TKeyNotifImported       = "notif_imported" // Requires Count
	TKeyNotifImportFailed   = "notif_import_failed"
	TKeyNotifInvalidField   = "notif_invalid_field" // Requires Field

	TKeyEvtSummary    = "event_summary"     // Requires Name
	TKeyEvtSummaryAge = "event_summary_age" // Requires Name, Age

	// Date templates receive the fields of render.dateFields.
	TKeyFormatLongDate    = "format_long_date"
	TKeyFormatMonthDay    = "format_month_day"
	TKeyFormatAlertTime   = "format_alert_time"
	TKeyFormatMessageTime = "format_message_time"
	TKeyMonthNames        = "month_names"       // 12 names, comma separated
	TKeyMonthNamesShort   = "month_names_short" // 12 names, comma separated
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Birthday Dashboard//Calendar//EN"
	ICalCalName = "Friends' Birthdays"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "birthday-dashboard"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	VCardRelationship = "X-RELATIONSHIP"

	DefaultICalRefresh = 1 * time.Hour

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Data Formats
// -----------------------------------------------------------------------------

const (
	// DateLayout is the wire format of calendar dates (birthday, upcoming).
	DateLayout = "2006-01-02"
	// TimestampLayout is the wire format of created_at / sent_at.
	TimestampLayout  = "2006-01-02 15:04:05"
	TimestampLayoutT = "2006-01-02T15:04:05"

	// Display layouts apply when a locale lacks its format_* template.
	DisplayLongDate    = "January 2, 2006"
	DisplayMonthDay    = "January 2"
	DisplayAlertTime   = "Jan 2, 3:04 PM"
	DisplayMessageTime = "1/2/2006, 3:04:05 PM"
	MonthNameSeparator = ","

	// vCard BDAY layouts carrying a year
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"

	UIDHashLength   = 16
	FormatHashInput = "%s|%d|%s|%s"
	FormatUID       = "%s-%d@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout        = 30 * time.Second
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AddrSeparator      = ":"
	MinPort            = 1
	MaxPort            = 65535

	RouteRoot      = "/"
	RouteFragment  = "/fragments/{mount}"
	RouteEvent     = "/events/{type}"
	RouteCalendar  = "/calendar.ics"
	RouteVCards    = "/friends.vcf"
	RouteHealth    = "/health"
	RouteVarMount  = "mount"
	RouteVarType   = "type"
	HealthStatusOK = "ok"

	// FragmentPollInterval is how often the page pulls its mounts again.
	FragmentPollInterval = 5 * time.Second
	PageTemplate         = "templates/index.html"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderAccept          = "Accept"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderDisposition     = "Content-Disposition"

	MimeTextHTML        = "text/html; charset=utf-8"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeVCard           = "text/vcard; charset=utf-8"
	MimeJSONUTF8        = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"
	DispositionVCards   = `attachment; filename="friends.vcf"`

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrBackendURLEmpty    = "configuration error: backend URL is empty"
	ErrInvalidURL         = "invalid URL structure"
	ErrProtocol           = "unsupported protocol scheme (http/https only)"
	ErrNetwork            = "network error during request"
	ErrBuildRequest       = "failed to create request"
	ErrEncodeBody         = "failed to encode request body"
	ErrDecodeResponse     = "failed to decode response body"
	ErrUnexpectedStatus   = "backend returned unexpected status"
	ErrServerStartup      = "server startup failed"
	ErrServerShutdown     = "server shutdown failed"
	ErrPortRequired       = "server port is required"
	ErrPortNumber         = "server port must be a number"
	ErrPortRange          = "server port must be between 1 and 65535"
	ErrIntervalPositive   = "alert refresh interval must be positive"
	ErrReadSettings       = "failed to read settings file"
	ErrICalEncode         = "failed to encode iCalendar data"
	ErrVCardEncode        = "failed to encode vCard data"
	ErrVCardDecode        = "failed to decode vCard stream"
	ErrDateParse          = "unable to parse date"
	ErrLogFile            = "failed to open log file"
	ErrCacheDir           = "could not determine user cache dir"
	ErrCreateDir          = "could not create app cache dir"
	ErrAppFailed          = "application failed unexpectedly"
	ErrWriteResp          = "failed to write response body"
	ErrLocalesAccess      = "failed to access embedded locales"
	ErrLocaleLoad         = "failed to load locale file"
	ErrTemplate           = "failed to render page template"
	ErrSchedule           = "failed to schedule alert refresh"
	ErrControllerClosed   = "controller is closed"
	ErrControllerStarted  = "controller already started"
	ErrInvalidFriendID    = "invalid friend identifier"
	ErrInvalidEventTarget = "invalid event target identifier"
	ErrLoadFriends        = "Error loading friends"
	ErrLoadAlerts         = "Error loading alerts"
	ErrLoadUpcoming       = "Error loading upcoming birthdays"
	ErrSaveFriend         = "Error saving friend"
	ErrEditFriend         = "Error loading friend for edit"
	ErrDeleteFriend       = "Error deleting friend"
	ErrLoadMessages       = "Error loading messages"
	ErrMarkRead           = "Error marking alert as read"
	ErrImport             = "Error importing vCards"
	ErrExport             = "Error exporting vCards"
	ErrCalendar           = "Error building calendar feed"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Dashboard initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
	HTTPMsgUnknownMount = "Unknown fragment"
	HTTPMsgUnknownEvent = "Unknown event"
	HTTPMsgBadRequest   = "Bad Request"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStop          = "Application stopped gracefully"
	MsgAppStarting      = "Starting application"
	MsgServerListen     = "HTTP server listening"
	MsgServerStop       = "Shutting down HTTP server..."
	MsgHTTPRequest      = "HTTP request"
	MsgEventRejected    = "Malformed event post"
	MsgSettingsFile     = "Using settings file"
	MsgMountRendered    = "Mount rendered"
	MsgControllerStart  = "View controller started"
	MsgControllerStop   = "View controller stopped"
	MsgAlertTick        = "Scheduled alert refresh"
	MsgEventDispatched  = "Event dispatched"
	MsgEventUnhandled   = "No subscriber for event"
	MsgFriendNotFound   = "Friend not found for edit"
	MsgDeleteDeclined   = "Delete not confirmed"
	MsgFormInvalid      = "Form rejected by native constraints"
	MsgMarkReadRejected = "Backend refused to mark alert as read"
	MsgRequest          = "Backend request"
	MsgStatusError      = "Backend returned error status"
	MsgSkippedCard      = "Skipping malformed vCard"
	MsgSkippedDate      = "Skipping vCard without a full birthday"
	MsgGenSuccess       = "Calendar generation successful"
	MsgLocaleSkip       = "Skipping non-locale file"
	MsgLocaleBadName    = "Skipping malformed locale filename"
	MsgLocaleLoaded     = "Locale loaded successfully"
	MsgTransMissing     = "Missing translation key"
	MsgMonthNamesBad    = "Malformed month name list, using English names"
	MsgLogWarning       = "Warning: %s at %s: %v\n"
	MsgNotification     = "Notification shown"
	MsgImportCreate     = "Imported friend rejected by backend"

	// check command report
	MsgCheckHeader  = "%s - backend verification (%s)\n"
	MsgCheckOK      = "  ✓ %-22s %d record(s)\n"
	MsgCheckFail    = "  ✗ %-22s %v\n"
	MsgCheckSummary = "%d of %d endpoint(s) reachable\n"
	ErrCheckFailed  = "backend check failed"
)

// -----------------------------------------------------------------------------
// Presentation
// -----------------------------------------------------------------------------

const (
	NotifyKindSuccess = "success"
	NotifyKindError   = "error"

	ColorSuccess = "#28a745"
	ColorError   = "#dc3545"

	// FormatNotificationStyle expects the background color.
	FormatNotificationStyle = "position: fixed; top: 20px; right: 20px; background: %s; color: white; " +
		"padding: 15px 25px; border-radius: 8px; box-shadow: 0 5px 15px rgba(0,0,0,0.3); z-index: 10000;"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyMethod    = "method"
	LogKeyPath      = "path"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMount     = "mount"
	LogKeyEvent     = "event"
	LogKeyFriendID  = "friend_id"
	LogKeyAlertID   = "alert_id"
	LogKeyKind      = "kind"
	LogKeyInterval  = "interval"
	LogKeyCount     = "count"
	LogKeyField     = "field"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyName      = "name"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyTotal     = "friends"
	LogKeyEvents    = "events"
	LogKeyToday     = "birthdays_today"
	LogKeyDuration  = "duration_ms"
	LogKeyAddr      = "addr"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyDate    = "build_date"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain       = "main"
	CompBackend    = "backend"
	CompController = "controller"
	CompRender     = "render"
	CompEngine     = "engine"
	CompServer     = "server"
	CompScheduler  = "scheduler"
	CompNotifier   = "notifier"
	CompI18n       = "i18n"
	CompCheck      = "check"
)
