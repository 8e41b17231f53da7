package models

// IntentKind is the classified purpose of an inbound chat message
type IntentKind string

const (
	IntentKindChat     IntentKind = "chat"
	IntentKindCalendar IntentKind = "calendar"
	IntentKindNote     IntentKind = "note"
	IntentKindScan     IntentKind = "scan"
	IntentKindHelp     IntentKind = "help"
)

// CommandIntent is the transient result of routing one inbound message.
// It is produced per message and consumed immediately - never persisted.
type CommandIntent struct {
	Kind      IntentKind `json:"kind"`
	Remainder string     `json:"remainder"`
}
