package app

import "log"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home   string      // config directory, e.g. $HOME/.clasp
	Logger *log.Logger // optional; defaults to a silent logger
}
