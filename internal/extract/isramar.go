package extract

import (
	"strings"
	"time"
)

// The Isramar station feed doesn't fit path extraction: fields live in a
// parameters array keyed by descriptive names, with the current reading
// in the first element of each entry's values array.
var isramarParameters = []struct {
	match string
	field Field
}{
	{"Significant wave height", FieldWaveHeightM},
	{"Peak wave period", FieldWavePeriodS},
}

func (t *Transformer) extractIsramar(doc map[string]interface{}, sourceURL string, now time.Time) *Observation {
	fields := make(map[Field]float64)

	params, ok := doc["parameters"].([]interface{})
	if !ok {
		t.logger.Debugf("isramar document from %s has no parameters array", sourceURL)
	}

	for _, p := range params {
		entry, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := entry["name"].(string)
		for _, param := range isramarParameters {
			if !strings.Contains(name, param.match) {
				continue
			}
			values, ok := entry["values"].([]interface{})
			if !ok || len(values) == 0 {
				continue
			}
			if v, ok := values[0].(float64); ok {
				fields[param.field] = v
			}
		}
	}

	if len(fields) == 0 {
		t.logger.Debugf("no isramar parameters extracted from %s", sourceURL)
	}

	return &Observation{
		Fields:      fields,
		SourceURL:   sourceURL,
		RetrievedAt: now.UTC(),
	}
}
