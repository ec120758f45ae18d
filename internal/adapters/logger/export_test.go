package logger

// Exported for white-box tests of the error renderer.
var (
	CollectErrorEntries = collectErrorEntries
	FormatErrorEntries  = formatErrorEntries
)
