package discord

import "testing"

const botID = "424242"

func TestParseCommand_NotAddressed(t *testing.T) {
	command, err := parseCommand("the shawshank redemption", botID)
	if err != nil {
		t.Fatalf("parseCommand() error = %v", err)
	}
	if command != nil {
		t.Errorf("command = %+v, want nil", command)
	}
}

func TestParseCommand_StartWithDifficulty(t *testing.T) {
	command, err := parseCommand("<@424242> start hard", botID)
	if err != nil {
		t.Fatalf("parseCommand() error = %v", err)
	}
	if command.Type != CommandStart {
		t.Errorf("Type = %q, want %q", command.Type, CommandStart)
	}
	if len(command.Args) != 1 || command.Args[0] != "hard" {
		t.Errorf("Args = %v, want [hard]", command.Args)
	}
}

func TestParseCommand_NicknameMention(t *testing.T) {
	command, err := parseCommand("<@!424242> skip", botID)
	if err != nil {
		t.Fatalf("parseCommand() error = %v", err)
	}
	if command.Type != CommandSkip {
		t.Errorf("Type = %q, want %q", command.Type, CommandSkip)
	}
}

func TestParseCommand_UnknownCommand(t *testing.T) {
	if _, err := parseCommand("<@424242> dance", botID); err == nil {
		t.Error("parseCommand() error = nil, want unknown-command error")
	}
}

func TestParseCommand_EmptyCommand(t *testing.T) {
	if _, err := parseCommand("<@424242>", botID); err == nil {
		t.Error("parseCommand() error = nil, want missing-command error")
	}
}
