package util

// MaxLogValueSize is the default maximum size for values included in log
// output (1KB). Template sources and chain payloads can be arbitrarily
// large; log lines should not be.
const MaxLogValueSize = 1024

// Truncate truncates a string to maxSize bytes, appending "...(truncated)"
// if truncated. If maxSize <= 0, uses MaxLogValueSize.
func Truncate(s string, maxSize int) string {
	if maxSize <= 0 {
		maxSize = MaxLogValueSize
	}
	if len(s) > maxSize {
		return s[:maxSize] + "...(truncated)"
	}
	return s
}
