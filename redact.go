package ftp

import (
	"log/slog"
	"strings"
)

const redactedArgument = "********"

// command is raw command text on its way to a logger. Its LogValue masks
// credentials, so handlers never see a password.
type command string

// LogValue implements slog.LogValuer.
func (c command) LogValue() slog.Value {
	return slog.StringValue(redact(string(c)))
}

// redact masks the argument of a PASS command. Other commands are returned
// unchanged.
func redact(text string) string {
	verb, _, _ := strings.Cut(text, " ")
	if strings.EqualFold(verb, "PASS") {
		return verb + " " + redactedArgument
	}
	return text
}
