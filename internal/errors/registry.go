package errors

// Template defines a registered error code.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

var registry = map[string]Template{
	// Configuration (J100-J119)
	"J100": {
		Category:   CategoryConfig,
		Message:    "Configuration file could not be read",
		Suggestion: "Check the path given with --config",
	},
	"J101": {
		Category:   CategoryConfig,
		Message:    "Configuration file is not valid YAML",
		Suggestion: "Compare it with the output of 'joestar config'",
	},
	"J102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},

	// Command line (J120-J139)
	"J120": {
		Category:   CategoryCLI,
		Message:    "Unknown driver",
		Detail:     "The driver selects the rendering surface: a native window or a browser tab.",
		Suggestion: "Use --driver webview or --driver browser",
	},
	"J121": {
		Category:   CategoryCLI,
		Message:    "Invalid output location",
		Suggestion: "Use a file path or s3://bucket/key",
	},

	// Rendering and publishing (J140-J159)
	"J140": {
		Category: CategoryRender,
		Message:  "Document could not be rendered",
	},
	"J141": {
		Category:   CategoryPublish,
		Message:    "Snapshot could not be published",
		Suggestion: "Check the destination exists and credentials are set",
	},

	// Runtime (J160-J179)
	"J160": {
		Category: CategoryRuntime,
		Message:  "Runtime stopped with an error",
	},
}

// Lookup returns the template for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
