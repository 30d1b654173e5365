package discord

import (
	"fmt"
	"strings"
)

// CommandType is one of the bot's mention commands.
type CommandType string

const (
	CommandStart       = CommandType("start")
	CommandSkip        = CommandType("skip")
	CommandLeaderboard = CommandType("leaderboard")
	CommandHelp        = CommandType("help")
)

// Command is a parsed mention command.
type Command struct {
	Type CommandType
	Args []string
}

// parseCommand extracts a command from a message that starts by
// mentioning the bot. Messages that do not address the bot yield a nil
// command and no error; an addressed message with an unknown command
// word is an error the caller should surface to the channel.
func parseCommand(content, botID string) (*Command, error) {
	var rest string
	found := false
	for _, mention := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
		if strings.HasPrefix(content, mention) {
			rest = strings.TrimSpace(content[len(mention):])
			found = true
			break
		}
	}
	if !found {
		return nil, nil
	}

	words := strings.Fields(rest)
	if len(words) == 0 {
		return nil, fmt.Errorf("no command given")
	}

	switch CommandType(words[0]) {
	case CommandStart, CommandSkip, CommandLeaderboard, CommandHelp:
		return &Command{Type: CommandType(words[0]), Args: words[1:]}, nil
	}
	return nil, fmt.Errorf("unknown command %q", words[0])
}
