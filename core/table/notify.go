package table

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier receives user-facing messages emitted by a table.
type Notifier func(message string, severity Severity)

func nopNotifier(string, Severity) {}
