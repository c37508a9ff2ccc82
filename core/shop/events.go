package shop

import (
	"strconv"
	"strings"
)

// EventKind tags the parsed form of an inbound chat event. Callback payloads
// are parsed exactly once, at the transport boundary; handlers never re-parse
// the raw string.
type EventKind int

const (
	// EventStart is the /start command.
	EventStart EventKind = iota
	// EventText is any other free-text message.
	EventText
	// EventProductSelected is a callback carrying a plain product id.
	// In the cart view the same payload means "remove this item".
	EventProductSelected
	// EventQuantitySelected is a callback carrying "<product_id>, <quantity>".
	EventQuantitySelected
	// EventViewCart is the fixed "view shopping cart" control action.
	EventViewCart
	// EventCheckout is the fixed "checkout" control action.
	EventCheckout
	// EventMenuReturn is the fixed "back to menu" control action.
	EventMenuReturn
)

// String names the event kind for logs and errors.
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventText:
		return "text"
	case EventProductSelected:
		return "product_selected"
	case EventQuantitySelected:
		return "quantity_selected"
	case EventViewCart:
		return "view_cart"
	case EventCheckout:
		return "checkout"
	case EventMenuReturn:
		return "menu_return"
	}
	return "unknown"
}

// Control tokens as they travel in callback data.
const (
	tokenViewCart   = "display_cart_details"
	tokenCheckout   = "request_email"
	tokenMenuReturn = "main_menu_return"
)

// quantitySeparator joins product id and quantity in a callback payload.
const quantitySeparator = ", "

// Event is one inbound chat event after boundary parsing.
type Event struct {
	Kind       EventKind
	ChatID     int64
	MessageID  int
	SenderName string

	// Text carries the raw message for EventStart and EventText.
	Text string
	// ProductID is set for EventProductSelected and EventQuantitySelected.
	ProductID string
	// Quantity is set for EventQuantitySelected.
	Quantity int
}

// TextEvent classifies a free-text message.
func TextEvent(chatID int64, senderName, text string) Event {
	ev := Event{ChatID: chatID, SenderName: senderName, Text: text}
	if strings.TrimSpace(text) == "/start" {
		ev.Kind = EventStart
		return ev
	}
	ev.Kind = EventText
	return ev
}

// CallbackEvent classifies a button-press payload.
func CallbackEvent(chatID int64, messageID int, senderName, data string) Event {
	ev := Event{ChatID: chatID, MessageID: messageID, SenderName: senderName}
	switch data {
	case tokenViewCart:
		ev.Kind = EventViewCart
		return ev
	case tokenCheckout:
		ev.Kind = EventCheckout
		return ev
	case tokenMenuReturn:
		ev.Kind = EventMenuReturn
		return ev
	}
	if productID, quantity, ok := ParseQuantityPayload(data); ok {
		ev.Kind = EventQuantitySelected
		ev.ProductID = productID
		ev.Quantity = quantity
		return ev
	}
	ev.Kind = EventProductSelected
	ev.ProductID = data
	return ev
}

// EncodeQuantityPayload packs a product id and quantity into callback data.
func EncodeQuantityPayload(productID string, quantity int) string {
	return productID + quantitySeparator + strconv.Itoa(quantity)
}

// ParseQuantityPayload unpacks callback data produced by EncodeQuantityPayload.
func ParseQuantityPayload(payload string) (string, int, bool) {
	idx := strings.LastIndex(payload, quantitySeparator)
	if idx < 0 {
		return "", 0, false
	}
	productID := payload[:idx]
	quantity, err := strconv.Atoi(payload[idx+len(quantitySeparator):])
	if err != nil || productID == "" {
		return "", 0, false
	}
	return productID, quantity, true
}
