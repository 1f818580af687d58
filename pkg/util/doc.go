// Package util provides shared helpers used across quiver packages.
//
//   - Truncate — cap template sources and chain payloads for safe logging
package util
