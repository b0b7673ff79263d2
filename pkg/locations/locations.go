// Package locations holds the registry of supported coastal locations:
// provider sources in merge-priority order, IANA timezones, and the
// coordinates the sunset calculator needs. The registry is the single
// source of truth for all three; nothing is inferred at runtime.
package locations

import (
	"sort"
	"strings"
)

// Source describes one external provider feed for a location.
type Source struct {
	// Name is the provider family ("isramar", "open-meteo-marine",
	// "open-meteo-forecast", "openweathermap"), used for API key lookup
	// and logging.
	Name string
	// URL is the complete request URL. Templates in the shipped table may
	// carry an {api_key} placeholder resolved at registry construction.
	URL string
	// Priority orders merge precedence; smaller wins. Sources with equal
	// priority merge in table order.
	Priority int
	// APIKey, when non-empty, is sent as a bearer token.
	APIKey string
}

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

type locationEntry struct {
	timezone string
	coords   Coordinates
	sources  []Source
}

// Registry resolves locations to their sources, timezone, and coordinates.
type Registry struct {
	entries map[string]locationEntry
}

const apiKeyPlaceholder = "{api_key}"

// NewRegistry builds a registry from the shipped location table, resolving
// {api_key} placeholders from the supplied per-provider key map. Sources
// whose placeholder cannot be resolved are dropped; their names are
// returned so the caller can log them.
func NewRegistry(apiKeys map[string]string) (*Registry, []string) {
	var dropped []string
	entries := make(map[string]locationEntry, len(locationTable))

	for name, loc := range locationTable {
		entry := locationEntry{
			timezone: loc.timezone,
			coords:   loc.coords,
		}
		for _, src := range loc.sources {
			if strings.Contains(src.URL, apiKeyPlaceholder) {
				key := apiKeys[src.Name]
				if key == "" {
					dropped = append(dropped, name+"/"+src.Name)
					continue
				}
				src.URL = strings.ReplaceAll(src.URL, apiKeyPlaceholder, key)
			}
			entry.sources = append(entry.sources, src)
		}
		// Stable sort keeps table order for equal priorities.
		sort.SliceStable(entry.sources, func(i, j int) bool {
			return entry.sources[i].Priority < entry.sources[j].Priority
		})
		entries[name] = entry
	}

	sort.Strings(dropped)
	return &Registry{entries: entries}, dropped
}

// Known reports whether the location is in the registry.
func (r *Registry) Known(location string) bool {
	_, ok := r.entries[location]
	return ok
}

// Sources returns the provider sources for a location in merge-priority
// order. The returned slice is a copy.
func (r *Registry) Sources(location string) ([]Source, bool) {
	entry, ok := r.entries[location]
	if !ok {
		return nil, false
	}
	out := make([]Source, len(entry.sources))
	copy(out, entry.sources)
	return out, true
}

// Timezone returns the location's IANA timezone name.
func (r *Registry) Timezone(location string) (string, bool) {
	entry, ok := r.entries[location]
	if !ok {
		return "", false
	}
	return entry.timezone, true
}

// Coordinates returns the location's latitude and longitude.
func (r *Registry) Coordinates(location string) (Coordinates, bool) {
	entry, ok := r.entries[location]
	if !ok {
		return Coordinates{}, false
	}
	return entry.coords, true
}

// Names returns all registered location names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
