package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Discovery Errors (E200-E209)
	// ============================================

	"E200": {
		Category: CategoryDiscovery,
		Message:  "Component scan failed",
		Detail:   "The component source could not be reached; the palette continues with an empty catalogue.",
	},
	"E201": {
		Category: CategoryDiscovery,
		Message:  "Component scan returned an invalid payload",
	},
	"E202": {
		Category: CategoryDiscovery,
		Message:  "Workspace directory not readable",
	},

	// ============================================
	// Load Errors (E210-E219)
	// ============================================

	"E210": {
		Category: CategoryLoad,
		Message:  "Application could not be loaded",
		Detail:   "Every loader tier failed.",
	},
	"E211": {
		Category: CategoryLoad,
		Message:  "Session workspace missing",
	},
	"E212": {
		Category: CategoryLoad,
		Message:  "Original package missing",
	},
	"E213": {
		Category: CategoryLoad,
		Message:  "Source parse failure",
	},
	"E215": {
		Category: CategoryLoad,
		Message:  "Workspace file could not be written",
	},
	"E214": {
		Category: CategoryLoad,
		Message:  "Component not found",
	},

	// ============================================
	// Drop Errors (E220-E229)
	// ============================================

	"E220": {
		Category: CategoryDrop,
		Message:  "Drop rejected",
		Detail:   "No compatible drop zone at the drop point.",
	},

	// ============================================
	// Mount Errors (E230-E239)
	// ============================================

	"E230": {
		Category: CategoryMount,
		Message:  "Render failed",
	},
	"E231": {
		Category: CategoryMount,
		Message:  "Unmount failed",
		Detail:   "The previous mount panicked during teardown; the container was cleared anyway.",
	},
	"E232": {
		Category: CategoryMount,
		Message:  "Render superseded",
		Detail:   "A newer render request started before this one completed.",
	},

	// ============================================
	// Protocol Errors (E240-E259)
	// ============================================

	"E240": {
		Category: CategoryProtocol,
		Message:  "Build server request failed",
	},
	"E241": {
		Category: CategoryProtocol,
		Message:  "Build server returned an error status",
	},
	"E242": {
		Category: CategoryProtocol,
		Message:  "Invalid build server response",
	},
	"E243": {
		Category: CategoryProtocol,
		Message:  "Event stream connection failed",
	},
	"E244": {
		Category: CategoryProtocol,
		Message:  "Invalid event stream message",
	},
	"E250": {
		Category: CategoryProtocol,
		Message:  "Invalid API request",
	},

	// ============================================
	// Config Errors (E260-E279)
	// ============================================

	"E260": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
	},
	"E261": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},
	"E262": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},

	// ============================================
	// CLI Errors (E280-E299)
	// ============================================

	"E280": {
		Category: CategoryCLI,
		Message:  "Invalid command arguments",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
