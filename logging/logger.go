// Package logging provides the structured, per-party logger handed to
// network sessions (package network) and used by the demo command.
package logging

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

var logout = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
	// Format the party ID
	FormatPrepare: func(e map[string]interface{}) error {
		e["partyID"] = fmt.Sprintf("[party %s]", e["partyID"])
		return nil
	},
	// Change the order in which things appear
	PartsOrder: []string{
		zerolog.TimestampFieldName,
		zerolog.LevelFieldName,
		"partyID",
		zerolog.MessageFieldName,
	},
	// Prevent the partyID from being printed again
	FieldsExclude: []string{"partyID"},
}

// GetLogger returns a logger tagged with the given party id. Set
// FRESCO_LOG=off to silence all session logging (useful for property tests
// that run many short-lived sessions).
func GetLogger(partyID int) zerolog.Logger {
	level := zerolog.InfoLevel
	if os.Getenv("FRESCO_LOG") == "off" {
		level = zerolog.Disabled
	}

	return zerolog.New(logout).
		Level(level).
		With().
		Timestamp().
		Str("partyID", strconv.Itoa(partyID)).
		Logger()
}
