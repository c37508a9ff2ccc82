package shop

import (
	"fmt"
	"strings"

	"github.com/m3rciful/seashop/core/elastic"
)

// Button is one selectable action entry of a reply menu.
type Button struct {
	Label string
	Data  string
}

// Menu is an action-entry keyboard, one row per entry slice.
type Menu struct {
	Rows [][]Button
}

// Card is a photo reply: caption plus action menu.
type Card struct {
	Caption string
	Menu    *Menu
}

// CartView is the rendered cart: text plus action menu.
type CartView struct {
	Text string
	Menu *Menu
}

const (
	menuPrompt   = "Please choose:"
	viewCartText = "View shopping cart"
	backText     = "Back"
	checkoutText = "Checkout"
	emailPrompt  = "Please send your email to complete the purchase."
	emailRetry   = "We could not accept that email. Please send your email again."
)

// Quantities offered on every product card.
var cardQuantities = []int{1, 5, 10}

// BuildMenu renders the catalog menu: one entry per product plus the fixed
// cart entry.
func BuildMenu(products []elastic.Product) Menu {
	rows := make([][]Button, 0, len(products)+1)
	for _, p := range products {
		rows = append(rows, []Button{{Label: p.Name, Data: p.ID}})
	}
	rows = append(rows, []Button{{Label: viewCartText, Data: tokenViewCart}})
	return Menu{Rows: rows}
}

// MenuPrompt is the text accompanying the catalog menu.
func MenuPrompt() string {
	return menuPrompt
}

// BuildProductCard renders a product caption with fixed purchase quantities
// and a return entry.
func BuildProductCard(p elastic.Product) Card {
	caption := fmt.Sprintf("%s\n\n%s per one piece\n\n%d pieces available on stock\n\n%s",
		p.Name, p.Price, p.Stock, p.Description)

	rows := make([][]Button, 0, len(cardQuantities)+1)
	for _, quantity := range cardQuantities {
		rows = append(rows, []Button{{
			Label: fmt.Sprintf("Buy %d", quantity),
			Data:  EncodeQuantityPayload(p.ID, quantity),
		}})
	}
	rows = append(rows, []Button{{Label: backText, Data: tokenMenuReturn}})
	return Card{Caption: caption, Menu: &Menu{Rows: rows}}
}

// BuildCartView renders one block per item, a trailing total line, a remove
// entry per item, and the checkout and return entries. An empty cart still
// renders the total and the navigation entries.
func BuildCartView(items []elastic.CartItem, summary elastic.CartSummary) CartView {
	blocks := make([]string, 0, len(items)+1)
	rows := make([][]Button, 0, len(items)+2)
	for _, item := range items {
		blocks = append(blocks, fmt.Sprintf("%s\n%s\n%s\n%d pieces in cart for %s",
			item.Name, item.Description, item.UnitPrice, item.Quantity, item.LineTotal))
		rows = append(rows, []Button{{
			Label: fmt.Sprintf("Remove %s", item.Name),
			Data:  item.ProductID,
		}})
	}
	blocks = append(blocks, fmt.Sprintf("Total: %s", summary.Total))
	rows = append(rows,
		[]Button{{Label: checkoutText, Data: tokenCheckout}},
		[]Button{{Label: backText, Data: tokenMenuReturn}},
	)
	return CartView{Text: strings.Join(blocks, "\n\n"), Menu: &Menu{Rows: rows}}
}

// EmailPrompt is the checkout message asking for the customer's email.
func EmailPrompt() string {
	return emailPrompt
}

// BuildErrorReply is the user-facing message for a failed customer-creation
// attempt; it explicitly asks the user to resubmit their email.
func BuildErrorReply() string {
	return emailRetry
}

// BuildEmailAccepted confirms a completed checkout.
func BuildEmailAccepted(email string) string {
	return fmt.Sprintf("Thank you! We will contact you at %s.", email)
}
