// Package singleinstance keeps one resident Kairo per user session. A second
// launch forwards its command to the resident over loopback TCP and exits.
package singleinstance

import (
	"errors"
	"strings"
)

const (
	residentHost = "127.0.0.1"
	pingRequest  = "PING\n"
	pongResponse = "PONG\n"
	okResponse   = "OK\n"
	errResponse  = "ERROR\n"
)

// Command is what a delegating launch asks the resident to do.
type Command string

const (
	CommandCapture    Command = "CAPTURE"
	CommandScreenshot Command = "SCREENSHOT"
	CommandShowChat   Command = "SHOW"
)

var ErrUnknownCommand = errors.New("singleinstance: unknown command")

// ParseCommand reads one request line.
func ParseCommand(line string) (Command, error) {
	switch c := Command(strings.TrimSpace(line)); c {
	case CommandCapture, CommandScreenshot, CommandShowChat:
		return c, nil
	default:
		return "", ErrUnknownCommand
	}
}

// Handler runs a delegated command in the resident. A returned error is sent
// back to the delegating process.
type Handler func(cmd Command) error
