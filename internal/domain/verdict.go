package domain

import "strings"

// Verdict is the Judge's categorical outcome for one validation attempt.
// It is a closed set: anything the Judge emits that is not PASS, FAIL, or
// RETRY parses to VerdictUnknown so an unrecognized value can never keep the
// loop running silently.
type Verdict string

const (
	VerdictPass    Verdict = "PASS"
	VerdictFail    Verdict = "FAIL"
	VerdictRetry   Verdict = "RETRY"
	VerdictUnknown Verdict = "UNKNOWN"
)

// ParseVerdict normalizes a raw verdict string into the closed set.
func ParseVerdict(raw string) Verdict {
	switch Verdict(strings.ToUpper(strings.TrimSpace(raw))) {
	case VerdictPass:
		return VerdictPass
	case VerdictFail:
		return VerdictFail
	case VerdictRetry:
		return VerdictRetry
	default:
		return VerdictUnknown
	}
}

// IsValid reports whether the verdict is one of the recognized outcomes.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictPass, VerdictFail, VerdictRetry:
		return true
	default:
		return false
	}
}

// Action is the Fixer's declared intent for one fix attempt. FIX means
// changes were produced, SKIP is a deliberate stop, and anything else parses
// to ActionUnexpected.
type Action string

const (
	ActionFix        Action = "FIX"
	ActionSkip       Action = "SKIP"
	ActionUnexpected Action = "UNEXPECTED"
)

// ParseAction normalizes a raw action string into the closed set.
func ParseAction(raw string) Action {
	switch Action(strings.ToUpper(strings.TrimSpace(raw))) {
	case ActionFix:
		return ActionFix
	case ActionSkip:
		return ActionSkip
	default:
		return ActionUnexpected
	}
}

// Status is the terminal, non-looping outcome recorded for one file. The
// failure terminals are deliberately distinct because each implies a
// different remediation.
type Status string

const (
	StatusSuccess          Status = "SUCCESS"
	StatusClean            Status = "CLEAN"
	StatusSkipped          Status = "SKIPPED"
	StatusAuditFailed      Status = "AUDIT_FAILED"
	StatusFixFailed        Status = "FIX_FAILED"
	StatusUnexpectedAction Status = "UNEXPECTED_ACTION"
	StatusUnknownVerdict   Status = "UNKNOWN_VERDICT"
	StatusMaxIterations    Status = "MAX_ITERATIONS"
)
