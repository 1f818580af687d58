package portability

import (
	"github.com/getquiver/quiver/pkg/collection"
)

// Importer defines the interface for importing collections from external
// formats.
type Importer interface {
	// Import parses data in the importer's format and returns a
	// Collection. The data should be the raw bytes of the source file.
	Import(data []byte) (*collection.Collection, error)

	// Format returns the format this importer handles.
	Format() Format
}

// Import is a convenience function that auto-detects format and imports.
func Import(data []byte, filename string) (*collection.Collection, error) {
	format := DetectFormat(data, filename)
	if format == FormatUnknown {
		return nil, &ImportError{
			Format:  format,
			Message: "unable to detect format from file content",
		}
	}

	importer := GetImporter(format)
	if importer == nil {
		return nil, &ImportError{
			Format:  format,
			Message: "no importer available for format",
		}
	}

	return importer.Import(data)
}

// ImportError represents an error during import.
type ImportError struct {
	Format  Format
	Message string
	Cause   error
}

func (e *ImportError) Error() string {
	msg := e.Message
	if e.Format != FormatUnknown {
		msg = string(e.Format) + ": " + msg
	}
	if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ImportError) Unwrap() error {
	return e.Cause
}
