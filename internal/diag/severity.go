package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for plain messages, including messages recorded in the trace.
	SevInfo Severity = iota
	// SevWarning marks a skipped packet or a degraded load.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
