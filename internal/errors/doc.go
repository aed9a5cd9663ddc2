// Package errors provides coded, actionable error messages for the
// spotify-info command.
//
// Each code (e.g., "E001") maps to a short message, an optional longer
// explanation, and a hint on how to fix the problem:
//
//	err := errors.New(errors.CodeBindFailed).Wrap(cause)
//	errors.PrintError(os.Stderr, err)
//
// Codes are grouped by category:
//   - transport (E001-E009): binding, accepting and dialing
//   - config (E010-E019): config file and codec selection
//   - cli (E020-E029): command arguments and auxiliary servers
package errors
