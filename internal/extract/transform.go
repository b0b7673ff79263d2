package extract

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// Transformer applies provider recipes to parsed JSON documents.
type Transformer struct {
	logger *zap.SugaredLogger
}

// NewTransformer creates a transformer that logs extraction anomalies to
// the given logger.
func NewTransformer(logger *zap.SugaredLogger) *Transformer {
	return &Transformer{logger: logger}
}

// Transform extracts the canonical fields the URL's provider family
// publishes. Returns nil when no recipe applies to the URL; an empty
// observation when the recipe applied but nothing was extracted. now
// selects the slot in hourly series.
func (t *Transformer) Transform(doc map[string]interface{}, sourceURL string, now time.Time) *Observation {
	kind, ok := KindForURL(sourceURL)
	if !ok {
		t.logger.Warnf("no recipe for URL %s, skipping", sourceURL)
		return nil
	}

	if kind == KindIsramar {
		return t.extractIsramar(doc, sourceURL, now)
	}

	recipe := recipes[kind]
	hourIdx := 0
	if recipe.hasHourly() {
		hourIdx = t.currentHourIndex(doc, sourceURL, now)
	}

	fields := make(map[Field]float64)
	for field, fr := range recipe {
		if value := t.resolveField(doc, field, fr, hourIdx, sourceURL); value != nil {
			fields[field] = *value
		}
	}

	if len(fields) == 0 {
		t.logger.Debugf("recipe for %s extracted no fields from %s", kind, sourceURL)
	}

	return &Observation{
		Fields:      fields,
		SourceURL:   sourceURL,
		RetrievedAt: now.UTC(),
	}
}

// resolveField runs one field recipe: path extraction, conversion, then
// fallback. A failed conversion keeps the raw value.
func (t *Transformer) resolveField(doc map[string]interface{}, field Field, fr FieldRecipe, hourIdx int, sourceURL string) *float64 {
	value := extractField(doc, fr, hourIdx)
	if value != nil && fr.Convert != nil {
		converted, err := fr.Convert(*value)
		if err != nil {
			t.logger.Warnf("conversion failed for %s from %s: %v (keeping raw value)", field, sourceURL, err)
		} else {
			value = &converted
		}
	}
	if value == nil && fr.Fallback != nil {
		value = fr.Fallback
	}
	return value
}

func (r Recipe) hasHourly() bool {
	for _, fr := range r {
		if fr.Hourly {
			return true
		}
	}
	return false
}

// currentHourIndex locates the slot in hourly.time matching the current
// UTC hour (entries are "YYYY-MM-DDTHH:MM" strings with minute 00). Falls
// back to index 0 when the document has no matching slot.
func (t *Transformer) currentHourIndex(doc map[string]interface{}, sourceURL string, now time.Time) int {
	want := now.UTC().Format("2006-01-02T15") + ":00"

	hourly, ok := doc["hourly"].(map[string]interface{})
	if !ok {
		t.logger.Debugf("document from %s has no hourly block, using index 0", sourceURL)
		return 0
	}
	times, ok := hourly["time"].([]interface{})
	if !ok {
		t.logger.Debugf("document from %s has no hourly.time array, using index 0", sourceURL)
		return 0
	}

	for i, v := range times {
		if s, ok := v.(string); ok && strings.HasPrefix(s, want) {
			return i
		}
	}

	t.logger.Warnf("no hourly slot matching %s from %s, falling back to index 0", want, sourceURL)
	return 0
}

// extractField walks the recipe path through the document. Missing keys,
// type mismatches, explicit nulls, and empty hourly arrays all yield nil.
func extractField(doc map[string]interface{}, fr FieldRecipe, hourIdx int) *float64 {
	if fr.Path == nil {
		return nil
	}

	var cursor interface{} = doc
	for _, key := range fr.Path {
		m, ok := cursor.(map[string]interface{})
		if !ok {
			return nil
		}
		cursor, ok = m[key]
		if !ok {
			return nil
		}
	}

	if fr.Hourly {
		series, ok := cursor.([]interface{})
		if !ok || len(series) == 0 {
			return nil
		}
		idx := hourIdx
		if idx >= len(series) {
			// Series shorter than the time array; take the first slot.
			idx = 0
		}
		cursor = series[idx]
	}

	value, ok := cursor.(float64)
	if !ok {
		return nil
	}
	return &value
}
