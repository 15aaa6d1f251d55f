package domain

// EventConfig identifies one prediction-market event and, optionally, the
// candidate names used for donation filtering and price-column selection.
type EventConfig struct {
	Slug       string `yaml:"slug"`
	Democrat   string `yaml:"democrat,omitempty"`
	Republican string `yaml:"republican,omitempty"`
}
