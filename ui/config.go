package ui

// Config contains TUI-specific configuration.
type Config struct {
	// Category to start with; empty shows the menu.
	StartCategory string

	GlamourMaxWidth uint
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	EnableMouse     bool

	// For debugging the UI
	GlamourEnabled bool `env:"QUIZBUZZ_ENABLE_GLAMOUR" envDefault:"true"`
	ShowIndex      bool `env:"QUIZBUZZ_SHOW_INDEX"`
}
