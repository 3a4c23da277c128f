// Package todo parses, validates, and updates the tasks file.
//
// The tasks file (tasks.json) is a JSON array in insertion order:
//
//	[
//	  {
//	    "id": "3f1a7c2e-9f5d-4b0a-8d65-1c2b3a4d5e6f",
//	    "name": "Write report",
//	    "due": "2026-02-05T14:30:00"
//	  }
//	]
//
// Due timestamps are local time without a zone suffix. The id field is
// optional on load; files written by older tools without ids remain
// loadable and entries are assigned ids when the store opens them.
//
// # Validation
//
// The package supports two validation modes:
//
// 1. JSON Schema validation against the built-in schema (or a schema file
// when one is configured):
//   - Full validation against JSON Schema draft-2020-12
//   - Checks the array shape, required fields, and timestamp form
//
// 2. Minimal fallback validation (when a configured schema file is
// unusable):
//   - Structural checks equivalent to what Load enforces
//   - No schema engine required
//
// Load always enforces the minimal checks, so a file with an entry
// missing name or due fails to load regardless of schema availability.
//
// # File Format
//
// When writing the tasks file, the package uses:
//   - 2-space indentation
//   - Trailing newline
//   - A temp-file-and-rename write, so a failed save never truncates
//     the previous contents
package todo
