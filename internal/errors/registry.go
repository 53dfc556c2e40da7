package errors

// Registered error codes.
const (
	CodeNoMatch         = "R001"
	CodeRedirectCycle   = "R002"
	CodeBundleLoad      = "R003"
	CodeInvalidRoute    = "R004"
	CodeInvalidPath     = "R005"
	CodeTooManyRedirect = "R006"
	CodeConfigFile      = "R007"
	CodeSuperseded      = "R008"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	CodeNoMatch: {
		Category: CategoryRouting,
		Message:  "No route matches path",
		Detail:   "No entry in the route table, including a wildcard, accepts the path. Add a \"**\" entry to catch unmatched paths.",
	},
	CodeRedirectCycle: {
		Category: CategoryRouting,
		Message:  "Redirect cycle detected",
		Detail:   "A redirect chain revisited a target it had already produced, or a bundle mounted itself again at the same path.",
	},
	CodeBundleLoad: {
		Category: CategoryBundle,
		Message:  "Bundle load failed",
		Detail:   "The bundle source returned an error. The failure is not cached and the next navigation retries the load.",
	},
	CodeInvalidRoute: {
		Category: CategoryConfig,
		Message:  "Invalid route configuration",
		Detail:   "A route entry must set exactly one of redirectTo, viewId or loaderId, unless it only groups children.",
	},
	CodeInvalidPath: {
		Category: CategoryNavigation,
		Message:  "Invalid navigation path",
		Detail:   "Navigation paths must be relative, start with \"/\" and must not escape the root.",
	},
	CodeTooManyRedirect: {
		Category: CategoryRouting,
		Message:  "Too many redirects",
		Detail:   "The redirect chain exceeded the configured maximum length.",
	},
	CodeConfigFile: {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be read or decoded.",
	},
	CodeSuperseded: {
		Category: CategoryNavigation,
		Message:  "Navigation superseded",
		Detail:   "A newer navigation request arrived before this one resolved.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
