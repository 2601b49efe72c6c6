package report

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"example.com/pdbgate/internal/check"
	"example.com/pdbgate/internal/palm"
)

// Extraction bundles everything a report needs about one container.
type Extraction struct {
	File   string       `json:"file"`
	Size   int64        `json:"size,omitempty"`
	Sha256 string       `json:"sha256,omitempty"`
	Result *palm.Result `json:"result"`
	Checks check.Report `json:"checks"`
}

func SaveJSON(ext Extraction, out string) error {
	b, err := json.MarshalIndent(ext, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func LoadJSON(path string) (Extraction, error) {
	var ext Extraction
	b, err := os.ReadFile(path)
	if err != nil {
		return ext, err
	}
	err = json.Unmarshal(b, &ext)
	return ext, err
}

// sortedFieldNames returns the field names of a result in stable order
// for rendering.
func sortedFieldNames(res *palm.Result) []string {
	if res == nil {
		return nil
	}
	names := make([]string, 0, len(res.Fields))
	for name := range res.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// renderValue flattens a field value for display. List fields join their
// elements; raw byte payloads render as hex-free placeholders.
func renderValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, renderValue(item))
		}
		return strings.Join(parts, "; ")
	case []byte:
		return "(raw bytes)"
	default:
		return strings.TrimSpace(strings.ReplaceAll(jsonScalar(val), "\n", " "))
	}
}

func jsonScalar(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
