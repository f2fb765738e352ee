package models

import "strings"

// CommandType enumerates the herd queries a farmer can send over WhatsApp.
type CommandType string

const (
	CommandReminders CommandType = "reminders"
	CommandStock     CommandType = "stock"
	CommandCalvings  CommandType = "calvings"
	CommandMilk      CommandType = "milk"
	CommandHelp      CommandType = "help"
	CommandUnknown   CommandType = "unknown"
)

var commandAliases = map[string]CommandType{
	"reminders": CommandReminders,
	"tasks":     CommandReminders,
	"stock":     CommandStock,
	"medicine":  CommandStock,
	"calvings":  CommandCalvings,
	"calving":   CommandCalvings,
	"milk":      CommandMilk,
	"help":      CommandHelp,
}

// Command represents a parsed query extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text. The leading slash is
// optional.
func ParseCommand(message string) Command {
	normalized := strings.TrimSpace(strings.ToLower(message))
	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return Command{Type: CommandUnknown, Raw: message}
	}

	cmd := Command{Raw: message, Type: CommandUnknown}
	if t, ok := commandAliases[strings.TrimPrefix(tokens[0], "/")]; ok {
		cmd.Type = t
	}
	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}
	return cmd
}
