package llm

import (
	"fmt"
	"sort"
)

// defines a function that creates a new provider instance
type ProviderFactory func() (Provider, error)

// global registry of available providers
var providers = make(map[string]ProviderFactory)

// registers a provider factory with the given name
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// creates a new provider instance based on the given name
func NewProvider(name string) (Provider, error) {
	factory, exists := providers[name]
	if !exists {
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
	return factory()
}

// names of all registered providers, sorted
func Registered() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
