package installer

// Status represents the state of an install workflow. It mirrors the
// status vocabulary of the server's download ledger.
type Status string

const (
	// StatusCreated means the download record exists but the transfer has
	// not started.
	StatusCreated Status = "ready"

	// StatusDownloading means the archive transfer is in progress.
	StatusDownloading Status = "downloading"

	// StatusDownloaded means the archive is on disk but not extracted.
	StatusDownloaded Status = "downloaded"

	// StatusExtracting means the archive is being extracted.
	StatusExtracting Status = "extracting"

	// StatusInstalled means the game is installed. Terminal.
	StatusInstalled Status = "installed"

	// StatusFailed means the workflow failed. Terminal.
	StatusFailed Status = "failed"
)

// String returns the string representation of the Status.
func (s Status) String() string {
	return string(s)
}

// IsActive returns true if the workflow is in a running state.
func (s Status) IsActive() bool {
	return s == StatusDownloading || s == StatusExtracting
}

// IsFinished returns true if the workflow reached a terminal state.
func (s Status) IsFinished() bool {
	return s == StatusInstalled || s == StatusFailed
}

// next holds the allowed forward transitions for each state.
var next = map[Status][]Status{
	StatusCreated:     {StatusDownloading},
	StatusDownloading: {StatusDownloaded},
	StatusDownloaded:  {StatusExtracting},
	StatusExtracting:  {StatusInstalled},
}

// CanTransition returns true if moving from one state to another is
// allowed. StatusFailed is reachable from any non terminal state.
func CanTransition(from, to Status) bool {
	if to == StatusFailed {
		return !from.IsFinished()
	}
	for _, s := range next[from] {
		if s == to {
			return true
		}
	}
	return false
}
