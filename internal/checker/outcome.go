package checker

import "github.com/CovenantEyes/winsparkle/internal/appcast"

// Mode tells a session who asked for it.
type Mode int

const (
	// Periodic checks come from the scheduler and honor SkipThisVersion.
	Periodic Mode = iota
	// Manual checks were requested by the user and ignore it.
	Manual
)

func (m Mode) String() string {
	if m == Manual {
		return "manual"
	}
	return "periodic"
}

type OutcomeKind int

const (
	NoUpdate OutcomeKind = iota
	UpdateAvailable
	UpdateInstalling
	Cancelled
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case NoUpdate:
		return "no-update"
	case UpdateAvailable:
		return "update-available"
	case UpdateInstalling:
		return "update-installing"
	case Cancelled:
		return "cancelled"
	default:
		return "error"
	}
}

// Outcome is the expected result of a session. Failures come back as errors
// alongside a Failed outcome.
type Outcome struct {
	Kind    OutcomeKind
	Appcast appcast.Appcast
	// Skipped is set when an update was found but the user asked to skip it.
	Skipped bool
	// ArtifactPath is the downloaded installer for UpdateInstalling.
	ArtifactPath string
}
