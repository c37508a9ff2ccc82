package shop

import (
	"context"
	"log/slog"

	"github.com/m3rciful/seashop/core/elastic"
	"github.com/m3rciful/seashop/core/logger"
	"github.com/m3rciful/seashop/core/session"
)

// Commerce is what the dispatcher needs from the commerce backend facade.
type Commerce interface {
	Products(ctx context.Context) ([]elastic.Product, error)
	Product(ctx context.Context, productID string) (elastic.Product, error)
	ImageURL(ctx context.Context, fileID string) (string, error)
	CartItems(ctx context.Context, cartID string) ([]elastic.CartItem, error)
	CartSummary(ctx context.Context, cartID string) (elastic.CartSummary, error)
	AddToCart(ctx context.Context, cartID, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, cartID, productID string) error
	CreateCustomer(ctx context.Context, email, name string) (string, error)
}

// ImageStore hands out single-use local image files.
type ImageStore interface {
	Acquire(ctx context.Context, url, productName string) (string, error)
	Release(ctx context.Context, path string)
}

// Transport delivers outbound replies to the chat.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string, menu *Menu) error
	SendPhoto(ctx context.Context, chatID int64, path, caption string, menu *Menu) error
	Delete(ctx context.Context, chatID int64, messageID int) error
}

// handlerFunc executes a transition's action and returns the next state.
type handlerFunc func(d *Dispatcher, ctx context.Context, ev Event) (State, error)

// transitions is the conversation's transition table. A (state, event) pair
// absent from it is a contract violation, not a silent no-op.
var transitions = map[State]map[EventKind]handlerFunc{
	StateStart: {
		EventStart: (*Dispatcher).showMenu,
	},
	StateMenu: {
		EventProductSelected: (*Dispatcher).showProduct,
		EventViewCart:        (*Dispatcher).showCart,
	},
	StateProduct: {
		EventQuantitySelected: (*Dispatcher).addToCart,
		EventMenuReturn:       (*Dispatcher).backToMenu,
	},
	StateCart: {
		EventCheckout:        (*Dispatcher).startCheckout,
		EventMenuReturn:      (*Dispatcher).leaveCart,
		EventProductSelected: (*Dispatcher).removeFromCart,
	},
	StateAwaitingEmail: {
		EventText: (*Dispatcher).submitEmail,
	},
}

// Dispatcher routes each inbound event through the transition table and
// persists the resulting conversation state.
type Dispatcher struct {
	commerce  Commerce
	sessions  session.Store
	locks     *session.Locker
	images    ImageStore
	transport Transport
}

// NewDispatcher wires the dispatcher's collaborators. Nothing here is a
// package-level global: one dispatcher is constructed at startup and owns
// its session and image handles for its lifetime.
func NewDispatcher(commerce Commerce, sessions session.Store, images ImageStore, transport Transport) *Dispatcher {
	return &Dispatcher{
		commerce:  commerce,
		sessions:  sessions,
		locks:     session.NewLocker(),
		images:    images,
		transport: transport,
	}
}

// Handle processes one inbound event: look up the chat's state, run the
// matching transition, persist the next state. The per-chat lock covers the
// whole read-handle-write sequence, so two quick events for the same chat
// cannot clobber each other's state. On error the state is left untouched
// and the next interaction retries from it.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) error {
	d.locks.Lock(ev.ChatID)
	defer d.locks.Unlock(ev.ChatID)

	var state State
	if ev.Kind == EventStart {
		// Explicit reset, not a transition: /start forces the initial state
		// regardless of what the store holds.
		state = StateStart
	} else {
		name, err := d.sessions.Get(ctx, ev.ChatID)
		if err != nil {
			return err
		}
		state = ParseState(name)
	}

	handler := transitions[state][ev.Kind]
	if handler == nil {
		return &UnhandledEventError{State: state, Kind: ev.Kind}
	}

	logger.Debug(ctx, "shop", "event.dispatch",
		slog.String("state", string(state)),
		slog.String("kind", ev.Kind.String()),
		slog.Int64("chat_id", ev.ChatID),
	)

	next, err := handler(d, ctx, ev)
	if err != nil {
		return err
	}
	return d.sessions.Set(ctx, ev.ChatID, string(next))
}
