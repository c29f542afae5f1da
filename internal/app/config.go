package app

// Constants
const (
	// Persistence keys. The saved-items key matches the original PWA's
	// localStorage key so an exported blob can be imported as-is.
	SettingsKey = "dayoff_settings_v1"
	ItemsKey    = "dayoff_saved_v1"

	// Policy defaults
	DefaultAdvanceDays    = 30
	DefaultEarlyExtraDays = 2
	DefaultSubmitByTime   = "09:00"
	DefaultEarlyTime      = "09:00"

	// MinNoticeDays is the earliest a day-off date may be chosen, counted
	// from today. Deliberately not part of Settings.
	MinNoticeDays = 14

	// Error messages
	ErrInvalidDateFormat = "Invalid date format"
	ErrInvalidID         = "Invalid id"
	ErrInternalServer    = "Internal server error"
	ErrFailedToSave      = "Failed to save"
	ErrItemNotFound      = "Item not found"
	ErrItemExists        = "That saved item already exists"

	// ICS constants
	ICSProductID = "-//Winterberg//DayOffPlanner//DE"
	ICSExtension = ".ics"
	ICSMimeType  = "text/calendar"
)

// Export kinds used for filename suggestions.
const (
	ExportKindDayOff    = "dayoff"
	ExportKindReminders = "reminders"
)
