package subscription

// Action names a state-changing operation on a subscription.
type Action string

// Known actions.
const (
	ActionActivate Action = "activate"
	ActionCancel   Action = "cancel"
	ActionPause    Action = "pause"
	ActionResume   Action = "resume"
)

// ErrCodeNoBillingRecord is reported against activation when the initial
// billing record has not been created yet. It does not block scheduling.
const ErrCodeNoBillingRecord = "NO_BILLING_RECORD"

// ActionError explains why an action is not currently possible.
type ActionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ActionState is the availability of one action.
type ActionState struct {
	Allowed bool          `json:"allowed"`
	Errors  []ActionError `json:"errors,omitempty"`
}

// ActionSet maps actions to their availability.
type ActionSet map[Action]ActionState

// Allowed reports whether the action is allowed.
func (s ActionSet) Allowed(a Action) bool {
	return s[a].Allowed
}

// Errors returns the errors reported against the action.
func (s ActionSet) Errors(a Action) []ActionError {
	return s[a].Errors
}

// BlockingErrors returns the errors against the action other than the ones
// whose codes are listed as acceptable.
func (s ActionSet) BlockingErrors(a Action, acceptable ...string) []ActionError {
	var blocking []ActionError
	for _, e := range s[a].Errors {
		ok := false
		for _, code := range acceptable {
			if e.Code == code {
				ok = true
				break
			}
		}
		if !ok {
			blocking = append(blocking, e)
		}
	}
	return blocking
}

// ActivationScheduled reports whether activation is allowed and nothing but a
// missing initial billing record stands in its way.
func (s ActionSet) ActivationScheduled() bool {
	return s.Allowed(ActionActivate) &&
		len(s.BlockingErrors(ActionActivate, ErrCodeNoBillingRecord)) == 0
}
