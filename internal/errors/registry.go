package errors

// Template defines a registered diagnostic.
type Template struct {
	Category Category
	Severity Severity
	Message  string
	Detail   string
}

// registry maps codes to their templates.
var registry = map[string]Template{
	// Builder diagnostics (S001-S049). All recovered.

	"S001": {
		Category: CategoryConfig,
		Severity: SeverityWarning,
		Message:  "Unknown configuration key",
	},
	"S002": {
		Category: CategoryConfig,
		Severity: SeverityWarning,
		Message:  "Configuration handler failed",
	},
	"S003": {
		Category: CategoryCreate,
		Severity: SeverityWarning,
		Message:  "Could not create element",
		Detail:   "A <span> was created instead.",
	},
	"S004": {
		Category: CategoryCreate,
		Severity: SeverityWarning,
		Message:  "Could not create custom element",
		Detail:   "The shared fallback custom element was created instead.",
	},
	"S005": {
		Category: CategoryAppend,
		Severity: SeverityWarning,
		Message:  "Unsupported child",
	},
	"S006": {
		Category: CategoryMount,
		Severity: SeverityWarning,
		Message:  "Mount target not found",
	},
	"S007": {
		Category: CategoryQuery,
		Severity: SeverityWarning,
		Message:  "Invalid selector",
	},
	"S008": {
		Category: CategoryAppend,
		Severity: SeverityWarning,
		Message:  "Could not insert child",
	},
	"S009": {
		Category: CategoryConfig,
		Severity: SeverityWarning,
		Message:  "Unknown event type",
		Detail:   "The listener was bound anyway.",
	},
	"S010": {
		Category: CategoryParse,
		Severity: SeverityWarning,
		Message:  "Shorthand degraded to a fragment",
	},

	// Document and tool errors (S050-S099). Returned to the caller.

	"S050": {
		Category: CategoryParse,
		Severity: SeverityError,
		Message:  "Invalid descriptor document",
	},
	"S051": {
		Category: CategoryParse,
		Severity: SeverityError,
		Message:  "Unsupported descriptor format",
		Detail:   "Use a .json, .yaml, .yml, .toml or .msgpack file.",
	},
	"S060": {
		Category: CategoryCLI,
		Severity: SeverityError,
		Message:  "Invalid configuration",
	},
	"S061": {
		Category: CategoryCLI,
		Severity: SeverityError,
		Message:  "Publish failed",
	},
	"S071": {
		Category: CategoryCLI,
		Severity: SeverityError,
		Message:  "Live reload unavailable",
	},
}

// GetTemplate returns the template for a code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces a code. Intended for init-time use only.
func Register(code string, template Template) {
	registry[code] = template
}
