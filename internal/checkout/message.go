package checkout

import (
	"strings"
	"time"

	"shopfront/internal/cart"
	"shopfront/internal/model"
)

// messageDateLayout mirrors the en-US short-month date style the store
// staff are used to reading, e.g. "Sep 5, 2025, 02:30 PM".
const messageDateLayout = "Jan 2, 2006, 03:04 PM"

// Formatter renders order messages. Given the same inputs it always
// produces byte-identical output; the clock and reference are supplied
// by the caller, never read here.
type Formatter struct {
	// StoreName appears in the banner (uppercased) and the closing
	// line (as given).
	StoreName string
}

// OrderMessage is the customer-entered checkout form plus the cart
// snapshot being ordered.
type OrderMessage struct {
	Reference       string
	Date            time.Time
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Items           []cart.LineItem
	Total           model.Cents
}

// Render builds the new-order request message the customer sends to
// the store. The layout is fixed: banner, order header, customer box,
// per-item details with SKU and canonical product ID for store-side
// processing, summary, and next steps.
func (f Formatter) Render(m OrderMessage) string {
	var b strings.Builder

	b.WriteString("╔═══════════════════════════╗\n")
	b.WriteString("   *" + strings.ToUpper(f.StoreName) + "*\n")
	b.WriteString("   📦 NEW ORDER REQUEST\n")
	b.WriteString("╚═══════════════════════════╝\n\n")

	b.WriteString("*Order Ref:* " + m.Reference + "\n")
	b.WriteString("*Date:* " + m.Date.Format(messageDateLayout) + "\n\n")

	b.WriteString("┌─ 👤 CUSTOMER INFO ─────────┐\n")
	b.WriteString("│ Name:    " + m.CustomerName + "\n")
	b.WriteString("│ Phone:   " + m.CustomerPhone + "\n")
	if m.CustomerAddress != "" {
		b.WriteString("│ Address: " + m.CustomerAddress + "\n")
	}
	b.WriteString("└────────────────────────────┘\n\n")

	b.WriteString("┌─ 📋 ORDER ITEMS ───────────┐\n")
	for i, item := range m.Items {
		b.WriteString("│\n")
		b.WriteString("│ " + itoa(i+1) + ". *" + item.Name + "*\n")
		if item.Barcode != "" {
			b.WriteString("│    📌 SKU: *" + item.Barcode + "*\n")
		}
		b.WriteString("│    🔑 ID: " + item.ProductID + "\n")
		if item.Image != "" {
			b.WriteString("│    🖼️ Image: " + item.Image + "\n")
		}
		if item.ShareURL != "" {
			b.WriteString("│    🔗 Link: " + item.ShareURL + "\n")
		}
		if item.SelectedSize != "" {
			b.WriteString("│    📏 Size: " + item.SelectedSize + "\n")
		}
		if item.SelectedColor != "" {
			b.WriteString("│    🎨 Color: " + item.SelectedColor + "\n")
		}
		b.WriteString("│    💰 Price: " + item.UnitPrice.String() + " × " + itoa(item.Quantity) + "\n")
		b.WriteString("│    💵 Subtotal: " + item.Subtotal().String() + "\n")
	}
	b.WriteString("│\n")
	b.WriteString("└────────────────────────────┘\n\n")

	itemCount := 0
	for _, item := range m.Items {
		itemCount += item.Quantity
	}
	b.WriteString("┌─ 💳 ORDER SUMMARY ─────────┐\n")
	b.WriteString("│ Total Items:  " + itoa(itemCount) + "\n")
	b.WriteString("│ Subtotal:     " + m.Total.String() + "\n")
	b.WriteString("│ Delivery:     TBD\n")
	b.WriteString("│ ────────────────────────\n")
	b.WriteString("│ *TOTAL:       " + m.Total.String() + "*\n")
	b.WriteString("└────────────────────────────┘\n\n")

	b.WriteString("📝 *Next Steps:*\n")
	b.WriteString("1. Confirm product availability\n")
	b.WriteString("2. Calculate delivery fee\n")
	b.WriteString("3. Send final invoice\n")
	b.WriteString("4. Process payment\n\n")

	b.WriteString("⏰ Please confirm within 24 hours.\n")
	b.WriteString("Thank you for choosing " + f.StoreName + "! 🎉")

	return b.String()
}

// RenderConfirmation builds the message store staff send back to the
// customer once an order is confirmed. baseURL is the storefront
// origin used for per-product links.
func (f Formatter) RenderConfirmation(o *model.Order, baseURL string) string {
	var b strings.Builder

	b.WriteString("╔═══════════════════════════╗\n")
	b.WriteString("   *" + strings.ToUpper(f.StoreName) + "*\n")
	b.WriteString("   📦 ORDER CONFIRMATION\n")
	b.WriteString("╚═══════════════════════════╝\n\n")

	b.WriteString("Hello *" + o.CustomerName + "*! 👋\n\n")
	b.WriteString("Thank you for your order!\n\n")

	b.WriteString("*Order Reference:* " + o.OrderReference + "\n")
	b.WriteString("*Date:* " + o.OrderDate.Format(messageDateLayout) + "\n")
	b.WriteString("*Status:* " + strings.ToUpper(string(o.Status)) + "\n\n")

	if len(o.Items) > 0 {
		b.WriteString("┌─ 📋 YOUR ORDER ITEMS ──────┐\n")
		for i, item := range o.Items {
			name := item.ProductName
			if name == "" {
				name = item.Product
			}
			b.WriteString("│\n")
			b.WriteString("│ " + itoa(i+1) + ". *" + name + "*\n")
			b.WriteString("│    🔗 View: " + strings.TrimSuffix(baseURL, "/") + "/products/" + item.Product + "\n")
			if item.ProductBarcode != "" {
				b.WriteString("│    📌 SKU: " + item.ProductBarcode + "\n")
			}
			if item.SelectedSize != "" {
				b.WriteString("│    📏 Size: " + item.SelectedSize + "\n")
			}
			if item.SelectedColor != "" {
				b.WriteString("│    🎨 Color: " + item.SelectedColor + "\n")
			}
			b.WriteString("│    💰 Price: " + item.UnitPrice.String() + " × " + itoa(item.Quantity) + "\n")
			b.WriteString("│    💵 Subtotal: " + (item.UnitPrice * model.Cents(item.Quantity)).String() + "\n")
		}
		b.WriteString("│\n")
		b.WriteString("└────────────────────────────┘\n\n")
	} else {
		b.WriteString("📦 *Order Summary:*\n")
		b.WriteString("Total Items: " + itoa(o.ItemCount) + "\n\n")
	}

	b.WriteString("┌─ 💳 ORDER TOTAL ───────────┐\n")
	b.WriteString("│ *TOTAL: " + o.Total.String() + "*\n")
	b.WriteString("└────────────────────────────┘\n\n")

	b.WriteString("📝 *Next Steps:*\n")
	b.WriteString("• We'll confirm product availability\n")
	b.WriteString("• Calculate delivery fee to your location\n")
	b.WriteString("• Send you final invoice\n")
	b.WriteString("• Arrange payment & delivery\n\n")

	b.WriteString("If you have any questions about your order, please reply to this message.\n\n")
	b.WriteString("Thank you for choosing " + f.StoreName + "! 🎉")

	return b.String()
}
