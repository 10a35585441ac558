package types

// Outcome is the terminal classification of a session.
type Outcome string

// Session outcomes.
const (
	// OutcomeCompleted means every file was analyzed without failure.
	OutcomeCompleted Outcome = "completed"
	// OutcomeCompletedWithFailures means every file was accounted for and
	// at least one failed.
	OutcomeCompletedWithFailures Outcome = "completed_with_failures"
	// OutcomeCancelled means the session stopped before all files ran.
	OutcomeCancelled Outcome = "cancelled"
)

// OutcomeOf classifies a finished session.
func OutcomeOf(cancelled bool, p Progress) Outcome {
	switch {
	case cancelled:
		return OutcomeCancelled
	case p.Failed > 0:
		return OutcomeCompletedWithFailures
	default:
		return OutcomeCompleted
	}
}
