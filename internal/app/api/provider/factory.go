package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Creator builds a Transcriber from free-form settings. Each provider
// package registers one from its init function, so importing the package
// is what makes the type available.
type Creator func(settings map[string]interface{}) (Transcriber, error)

var (
	creatorsMu sync.RWMutex
	creators   = make(map[string]Creator)
)

// RegisterCreator makes a provider type constructible by name. Later
// registrations for the same type win, which keeps tests free to swap
// implementations in.
func RegisterCreator(providerType string, creator Creator) {
	creatorsMu.Lock()
	defer creatorsMu.Unlock()
	creators[providerType] = creator
}

// Create builds a provider of the given type.
func Create(providerType string, settings map[string]interface{}) (Transcriber, error) {
	creatorsMu.RLock()
	creator, exists := creators[providerType]
	creatorsMu.RUnlock()

	if !exists {
		return nil, &TranscriptionError{
			Code:     ErrCodeInvalidConfig,
			Message:  fmt.Sprintf("unknown provider type: %s", providerType),
			Provider: providerType,
			Suggestions: []string{
				fmt.Sprintf("available types: %v", RegisteredTypes()),
				"check the TRANSCRIBER environment variable",
			},
		}
	}
	return creator(settings)
}

// RegisteredTypes returns the provider types that can be created, sorted.
func RegisteredTypes() []string {
	creatorsMu.RLock()
	defer creatorsMu.RUnlock()

	types := make([]string, 0, len(creators))
	for t := range creators {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// StringSetting pulls a string value out of creator settings, returning
// "" when the key is absent or not a string.
func StringSetting(settings map[string]interface{}, key string) string {
	if settings == nil {
		return ""
	}
	if v, ok := settings[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
