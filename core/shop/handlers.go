package shop

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/m3rciful/seashop/core/elastic"
	"github.com/m3rciful/seashop/core/logger"
)

// cartID derives the backend cart identifier from the chat identifier.
// The chat session is the cart: one cart per chat, created lazily by the
// backend on first write.
func cartID(ev Event) string {
	return strconv.FormatInt(ev.ChatID, 10)
}

func (d *Dispatcher) showMenu(ctx context.Context, ev Event) (State, error) {
	products, err := d.commerce.Products(ctx)
	if err != nil {
		return "", err
	}
	menu := BuildMenu(products)
	if err := d.transport.SendText(ctx, ev.ChatID, MenuPrompt(), &menu); err != nil {
		return "", err
	}
	return StateMenu, nil
}

func (d *Dispatcher) backToMenu(ctx context.Context, ev Event) (State, error) {
	return d.showMenu(ctx, ev)
}

func (d *Dispatcher) showProduct(ctx context.Context, ev Event) (State, error) {
	product, err := d.commerce.Product(ctx, ev.ProductID)
	if err != nil {
		return "", err
	}
	imageURL, err := d.commerce.ImageURL(ctx, product.MainImageID)
	if err != nil {
		return "", err
	}

	path, err := d.images.Acquire(ctx, imageURL, product.Name)
	if err != nil {
		return "", err
	}
	// Single-use file: gone again on every exit path, or the image
	// directory grows without bound.
	defer d.images.Release(ctx, path)

	// The menu message goes away only once the card is ready to replace it.
	d.deleteMessage(ctx, ev)

	card := BuildProductCard(product)
	if err := d.transport.SendPhoto(ctx, ev.ChatID, path, card.Caption, card.Menu); err != nil {
		return "", err
	}
	return StateProduct, nil
}

func (d *Dispatcher) showCart(ctx context.Context, ev Event) (State, error) {
	if err := d.sendCartView(ctx, ev); err != nil {
		return "", err
	}
	return StateCart, nil
}

func (d *Dispatcher) addToCart(ctx context.Context, ev Event) (State, error) {
	if err := d.commerce.AddToCart(ctx, cartID(ev), ev.ProductID, ev.Quantity); err != nil {
		return "", err
	}
	// The product card stays on screen for further purchases.
	return StateProduct, nil
}

func (d *Dispatcher) removeFromCart(ctx context.Context, ev Event) (State, error) {
	if err := d.commerce.RemoveFromCart(ctx, cartID(ev), ev.ProductID); err != nil {
		return "", err
	}
	if err := d.sendCartView(ctx, ev); err != nil {
		return "", err
	}
	return StateCart, nil
}

// sendCartView renders the current cart contents with a remove button per
// line and the checkout and back controls. The originating message is
// deleted only once the view is ready to replace it.
func (d *Dispatcher) sendCartView(ctx context.Context, ev Event) error {
	id := cartID(ev)
	items, err := d.commerce.CartItems(ctx, id)
	if err != nil {
		return err
	}
	summary, err := d.commerce.CartSummary(ctx, id)
	if err != nil {
		return err
	}
	d.deleteMessage(ctx, ev)
	view := BuildCartView(items, summary)
	return d.transport.SendText(ctx, ev.ChatID, view.Text, view.Menu)
}

func (d *Dispatcher) startCheckout(ctx context.Context, ev Event) (State, error) {
	if err := d.transport.SendText(ctx, ev.ChatID, EmailPrompt(), nil); err != nil {
		return "", err
	}
	return StateAwaitingEmail, nil
}

func (d *Dispatcher) leaveCart(ctx context.Context, ev Event) (State, error) {
	d.deleteMessage(ctx, ev)
	return d.showMenu(ctx, ev)
}

func (d *Dispatcher) submitEmail(ctx context.Context, ev Event) (State, error) {
	email := ev.Text
	customerID, err := d.commerce.CreateCustomer(ctx, email, ev.SenderName)
	if err != nil {
		var validationErr *elastic.ValidationError
		if errors.As(err, &validationErr) {
			// Recoverable: tell the user and wait for another email.
			logger.Info(ctx, "shop", "checkout.email_rejected",
				slog.Int64("chat_id", ev.ChatID),
				slog.String("reason", validationErr.Error()),
			)
			if sendErr := d.transport.SendText(ctx, ev.ChatID, BuildErrorReply(), nil); sendErr != nil {
				return "", sendErr
			}
			return StateAwaitingEmail, nil
		}
		return "", err
	}

	logger.Info(ctx, "shop", "checkout.customer_created",
		slog.Int64("chat_id", ev.ChatID),
		slog.String("customer_id", customerID),
	)
	if err := d.transport.SendText(ctx, ev.ChatID, BuildEmailAccepted(email), nil); err != nil {
		return "", err
	}
	return d.showMenu(ctx, ev)
}

// deleteMessage removes the message whose button produced the event. A
// failure here is cosmetic; it is logged and the transition proceeds.
func (d *Dispatcher) deleteMessage(ctx context.Context, ev Event) {
	if ev.MessageID == 0 {
		return
	}
	if err := d.transport.Delete(ctx, ev.ChatID, ev.MessageID); err != nil {
		logger.Warn(ctx, "shop", "message.delete_fail",
			slog.Int64("chat_id", ev.ChatID),
			slog.Int("message_id", ev.MessageID),
			slog.String("err", err.Error()),
		)
	}
}
