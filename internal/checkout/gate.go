package checkout

// Behavior is the checkout gate verdict.
type Behavior string

const (
	BehaviorAllow Behavior = "allow"
	BehaviorBlock Behavior = "block"
)

// GateDecision is returned when the shopper attempts to advance checkout.
// MessageKey is the shopper-facing message the host should surface when it
// performs the block; it is empty on allow.
type GateDecision struct {
	Behavior   Behavior
	Reason     string
	MessageKey string
}

// DecideAdvance evaluates the gate against the current session state. It is
// pure: it only reads already-derived flags and never triggers validation.
//
// Blocking policy: a session is blocked on a malformed number only when the
// business-user box is checked and the field is non-empty. An empty field or
// an unchecked box never blocks.
func DecideAdvance(s State, canBlockProgress bool) GateDecision {
	if !canBlockProgress {
		return GateDecision{Behavior: BehaviorAllow}
	}

	if s.BusinessUser && s.VATNumber != "" && !s.FormatValid {
		return GateDecision{
			Behavior:   BehaviorBlock,
			Reason:     "Please enter a valid VAT number.",
			MessageKey: MsgFormat,
		}
	}

	if s.LoginRequired() {
		// Tax exemption requires an account to attach the exemption to. The
		// home jurisdiction is exempt from this rule because it never grants
		// exemption in the first place.
		return GateDecision{
			Behavior:   BehaviorBlock,
			Reason:     "Please login or create an account to order tax exempt.",
			MessageKey: MsgLogin,
		}
	}

	return GateDecision{Behavior: BehaviorAllow}
}
