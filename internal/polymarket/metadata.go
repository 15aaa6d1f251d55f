package polymarket

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveEventMetadata writes the event JSON next to the slug's price files so
// later pipeline runs work offline.
func SaveEventMetadata(event *Event, path string) error {
	data, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal event metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write event metadata: %w", err)
	}
	return nil
}

// LoadEventMetadata reads a previously saved event file. Returns nil without
// error when the file does not exist; callers fall back to fetching.
func LoadEventMetadata(path string) (*Event, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read event metadata: %w", err)
	}

	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event metadata: %w", err)
	}
	return &event, nil
}
