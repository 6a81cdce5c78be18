package models

import "strings"

// CommandType enumerates the worker commands accepted over WhatsApp.
type CommandType string

const (
	CommandWeigh   CommandType = "peso"
	CommandCost    CommandType = "custo"
	CommandSummary CommandType = "resumo"
	CommandStock   CommandType = "estoque"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed worker instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from a free-form message such as "/peso P-12 84.5".
func ParseCommand(message string) Command {
	normalized := strings.TrimSpace(message)
	cmd := Command{Raw: message, Type: CommandUnknown}
	if normalized == "" {
		return cmd
	}

	tokens := strings.Fields(normalized)
	switch CommandType(strings.ToLower(strings.TrimPrefix(tokens[0], "/"))) {
	case CommandWeigh:
		cmd.Type = CommandWeigh
	case CommandCost:
		cmd.Type = CommandCost
	case CommandSummary:
		cmd.Type = CommandSummary
	case CommandStock:
		cmd.Type = CommandStock
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}
	return cmd
}
