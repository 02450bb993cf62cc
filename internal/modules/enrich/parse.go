package enrich

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/folio-space/core/internal/models"
)

var numberedLinePattern = regexp.MustCompile(`^\s*(\d+)[.)]\s*`)

// parseNumberedList keeps only lines carrying a leading "<number>." (or
// "<number>)") marker, strips the marker and trims. The cap counts marker
// lines, so an empty numbered item still uses up a slot; empties are then
// dropped from the output. Model output that matches nothing yields an
// empty slice.
func parseNumberedList(raw string, max int) []string {
	out := make([]string, 0, max)
	matched := 0
	for _, line := range strings.Split(raw, "\n") {
		m := numberedLinePattern.FindString(line)
		if m == "" {
			continue
		}
		matched++
		item := strings.TrimSpace(strings.TrimPrefix(line, m))
		if item != "" {
			out = append(out, item)
		}
		if matched == max {
			break
		}
	}
	return out
}

// parseLineList splits on line breaks, trims, drops empty and numbered lines,
// dedupes case-insensitively preserving first spelling, and caps at max.
func parseLineList(raw string, max int) []string {
	out := make([]string, 0, max)
	seen := make(map[string]struct{})
	for _, line := range strings.Split(raw, "\n") {
		item := strings.TrimSpace(line)
		if item == "" || numberedLinePattern.MatchString(item) {
			continue
		}
		item = strings.TrimPrefix(item, "- ")
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
		if len(out) == max {
			break
		}
	}
	return out
}

// parseProjectsJSON parses model output expected to be a strict JSON array of
// project objects. It tolerates code fences and trailing prose by slicing the
// outermost bracket pair, and fails closed to an error (callers map that to an
// empty result).
func parseProjectsJSON(raw string) ([]models.ProjectRecord, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var records []models.ProjectRecord
	if err := json.Unmarshal([]byte(cleaned), &records); err == nil {
		return records, nil
	}

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &records); err == nil {
			return records, nil
		}
	}

	return nil, fmt.Errorf("invalid JSON array in AI response")
}
