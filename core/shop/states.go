// Package shop implements the per-user conversation state machine of the
// storefront: it decides, per inbound chat event, which commerce operation to
// perform, which reply to produce, and which conversational state to persist.
package shop

// State identifies a step of the storefront conversation.
type State string

const (
	// StateStart is the initial state; /start also forces it as a reset.
	StateStart State = "START"
	// StateMenu means the catalog menu is on screen.
	StateMenu State = "MENU"
	// StateProduct means a product card is on screen.
	StateProduct State = "PRODUCT"
	// StateCart means the cart view is on screen.
	StateCart State = "CART"
	// StateAwaitingEmail means checkout started and the next free-text
	// message is treated as the customer's email.
	StateAwaitingEmail State = "AWAITING_EMAIL"
)

// ParseState maps a stored state name to a State. Absent or unknown names
// resolve to the initial state.
func ParseState(name string) State {
	switch State(name) {
	case StateMenu, StateProduct, StateCart, StateAwaitingEmail:
		return State(name)
	}
	return StateStart
}
