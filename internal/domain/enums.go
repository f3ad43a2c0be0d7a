package domain

// Backend selects the extraction strategy used for a run.
type Backend string

const (
	BackendLocal Backend = "local"
	BackendCloud Backend = "cloud"
)

// ParseBackend returns the backend for s, or false if s is not a known backend.
func ParseBackend(s string) (Backend, bool) {
	switch Backend(s) {
	case BackendLocal:
		return BackendLocal, true
	case BackendCloud:
		return BackendCloud, true
	default:
		return "", false
	}
}

// RunStatus represents the lifecycle of an extraction run.
type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// ContentTypePDF is the only accepted upload content type.
const ContentTypePDF = "application/pdf"

// TechnicalErrorMessage is the single failure message shown to clients.
const TechnicalErrorMessage = "Erreur technique lors du traitement."
