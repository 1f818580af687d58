package portability

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// Format represents a supported import format.
type Format string

// Supported formats.
const (
	FormatUnknown  Format = ""
	FormatOpenAPI  Format = "openapi"  // OpenAPI 3.x
	FormatInsomnia Format = "insomnia" // Insomnia workspace export v4
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid returns true if the format is a known format.
func (f Format) IsValid() bool {
	switch f {
	case FormatOpenAPI, FormatInsomnia:
		return true
	default:
		return false
	}
}

// DetectFormat attempts to auto-detect the format from file content and
// filename. Returns FormatUnknown if the format cannot be determined.
func DetectFormat(data []byte, filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))

	// YAML specs never come from Insomnia exports; match on content keys.
	if ext == ".yaml" || ext == ".yml" {
		return detectFormatFromYAML(data)
	}
	return detectFormatFromJSON(data)
}

// detectFormatFromJSON detects format from JSON content.
func detectFormatFromJSON(data []byte) Format {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return FormatUnknown
	}

	if _, hasOpenAPI := raw["openapi"]; hasOpenAPI {
		return FormatOpenAPI
	}

	// Insomnia exports carry a _type: "export" marker and a format number.
	if rawType, ok := raw["_type"]; ok {
		var typ string
		if err := json.Unmarshal(rawType, &typ); err == nil && typ == "export" {
			return FormatInsomnia
		}
	}
	if _, hasFormat := raw["__export_format"]; hasFormat {
		return FormatInsomnia
	}

	return FormatUnknown
}

// detectFormatFromYAML detects format from YAML content.
func detectFormatFromYAML(data []byte) Format {
	content := string(data)
	if strings.Contains(content, "openapi:") {
		return FormatOpenAPI
	}
	return FormatUnknown
}

// ParseFormat parses a format string into a Format type.
// Returns FormatUnknown for unrecognized format strings.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openapi", "swagger", "oas":
		return FormatOpenAPI
	case "insomnia":
		return FormatInsomnia
	default:
		return FormatUnknown
	}
}

// AllFormats returns a list of all supported formats.
func AllFormats() []Format {
	return []Format{FormatOpenAPI, FormatInsomnia}
}
