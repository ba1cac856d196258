package rtp

import (
	"os"

	"github.com/rs/zerolog"
)

// NewDevelopmentLogger returns a human-readable console logger, suitable for
// local testing; production callers are expected to supply their own
// zerolog.Logger via SessionConfig.Logger.
func NewDevelopmentLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}
