package ui

// Config holds the windowed front end's display settings. Trimmed from the
// teacher's internal/ui/config.go: no ROM-browser directory, key-rebinding,
// or save-state-slot fields, since those surfaces are Non-goals (spec §1).
type Config struct {
	Title string
	Scale int
}

// Defaults fills unset fields with sane values, matching the teacher's
// Config.Defaults shape.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "dmgcore"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
}
