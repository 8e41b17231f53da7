package commands

import (
	"strings"

	"pepperbackend/models"
)

// markerIntents maps recognized leading-token markers to intent kinds.
// Markers are case-sensitive - "#Calendar" is ordinary chat text.
var markerIntents = map[string]models.IntentKind{
	"#calendar": models.IntentKindCalendar,
	"#note":     models.IntentKindNote,
	"#scan":     models.IntentKindScan,
	"#help":     models.IntentKindHelp,
}

// Route classifies one inbound chat message into a CommandIntent. Only the
// leading token is inspected; an unrecognized marker falls back to chat with
// the full original text so no input is ever silently dropped. Pure function,
// no side effects.
func Route(text string) models.CommandIntent {
	trimmed := strings.TrimSpace(text)

	if !strings.HasPrefix(trimmed, "#") {
		return models.CommandIntent{Kind: models.IntentKindChat, Remainder: trimmed}
	}

	marker, remainder, _ := strings.Cut(trimmed, " ")
	kind, ok := markerIntents[marker]
	if !ok {
		return models.CommandIntent{Kind: models.IntentKindChat, Remainder: trimmed}
	}

	return models.CommandIntent{Kind: kind, Remainder: strings.TrimSpace(remainder)}
}

const chatPrompt = `You are Pepper, a helpful personal assistant.

You help with:
- Managing calendars connected through Google and Microsoft
- Taking and organizing notes
- Processing scanned documents
- Answering general questions

Rules:
- Be friendly, helpful and to the point
- Ask clarifying questions when a request is ambiguous
- Never claim an action succeeded unless it actually did

Available commands (optional):
- #calendar - for appointments and scheduling
- #note - for taking notes
- #scan - for document processing
- #help - for an overview of what you can do`

const calendarPrompt = `You are Pepper in calendar mode.

Help users with appointments and scheduling:
- Interpret dates and times precisely
- Ask for a specific date and time when they are unclear
- Summarize upcoming events clearly and briefly`

const notePrompt = `You are Pepper in note mode.

Help users with:
- Structuring and organizing notes
- Summarizing key points
- Suggesting tags and categories
- Identifying action items`

const scanPrompt = `You are Pepper in scan mode.

Help users with:
- Analyzing documents
- Extracting and structuring text
- Identifying important information
- Summarizing scanned content`

const helpPrompt = `You are Pepper, a helpful personal assistant.

The user asked for help. Explain briefly what you can do: calendar
management for connected Google and Microsoft accounts, taking notes,
processing scanned documents and general conversation. Mention the
#calendar, #note and #scan commands.`

// SystemPrompt selects the assistant's system-prompt variant for the intent
func SystemPrompt(kind models.IntentKind) string {
	switch kind {
	case models.IntentKindCalendar:
		return calendarPrompt
	case models.IntentKindNote:
		return notePrompt
	case models.IntentKindScan:
		return scanPrompt
	case models.IntentKindHelp:
		return helpPrompt
	default:
		return chatPrompt
	}
}
