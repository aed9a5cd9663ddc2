package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// Registered error codes.
const (
	CodeBindFailed     = "E001"
	CodeListenerClosed = "E002"
	CodeDialFailed     = "E003"
	CodeConfigInvalid  = "E010"
	CodeUnknownCodec   = "E011"
	CodeBadFrame       = "E020"
	CodeStatusServer   = "E021"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Transport errors (E001-E009)
	CodeBindFailed: {
		Category:   CategoryTransport,
		Message:    "Could not bind the receiver address",
		Detail:     "The receiver listens on a single loopback port. Binding fails when another process already holds it or the port needs privileges.",
		Suggestion: "Stop the other receiver, or pick a free port with --port or --addr",
	},
	CodeListenerClosed: {
		Category: CategoryTransport,
		Message:  "The receiver stopped accepting connections",
		Detail:   "The bound socket failed or was closed while the receiver was still running.",
	},
	CodeDialFailed: {
		Category:   CategoryTransport,
		Message:    "Could not connect to the receiver",
		Suggestion: "Start one with `spotify-info listen` and check that --addr matches",
	},

	// Config errors (E010-E019)
	CodeConfigInvalid: {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Suggestion: "Check the TOML syntax and field names in the config file",
	},
	CodeUnknownCodec: {
		Category:   CategoryConfig,
		Message:    "Unknown wire codec",
		Suggestion: "Use \"tagged\" or \"json\"",
	},

	// CLI errors (E020-E029)
	CodeBadFrame: {
		Category:   CategoryCLI,
		Message:    "Invalid event arguments",
		Suggestion: "See `spotify-info emit --help` for the accepted event forms",
	},
	CodeStatusServer: {
		Category:   CategoryCLI,
		Message:    "Status server failed",
		Suggestion: "Pick a free address with --status-addr, or pass an empty value to disable it",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
