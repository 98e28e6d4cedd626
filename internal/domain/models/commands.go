package models

import "strings"

// CommandType enumerates supported messaging command categories.
type CommandType string

const (
	CommandSale    CommandType = "sale"
	CommandReceipt CommandType = "receipt"
	CommandBalance CommandType = "balance"
	CommandStock   CommandType = "stock"
	CommandDues    CommandType = "dues"
	CommandSummary CommandType = "summary"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed operator instruction extracted from a WhatsApp
// text message.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
func ParseCommand(message string) Command {
	normalized := strings.TrimSpace(strings.ToLower(message))

	cmd := Command{Raw: message}
	if normalized == "" {
		cmd.Type = CommandUnknown
		return cmd
	}

	tokens := strings.Fields(normalized)
	head := strings.TrimPrefix(tokens[0], "/")
	switch head {
	case string(CommandSale):
		cmd.Type = CommandSale
	case string(CommandReceipt):
		cmd.Type = CommandReceipt
	case string(CommandBalance):
		cmd.Type = CommandBalance
	case string(CommandStock):
		cmd.Type = CommandStock
	case string(CommandDues):
		cmd.Type = CommandDues
	case string(CommandSummary):
		cmd.Type = CommandSummary
	default:
		cmd.Type = CommandUnknown
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
