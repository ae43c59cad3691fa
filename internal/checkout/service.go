package checkout

import (
	"context"
	"log/slog"
	"time"

	"shopfront/internal/api"
	"shopfront/internal/cart"
	"shopfront/internal/model"
)

// persistFailedMessage is shown when the backend rejects the order but
// the WhatsApp handoff can still proceed with the local reference.
const persistFailedMessage = "Failed to save order. You can still send via WhatsApp, but please inform the store about this issue."

// OrderCreator is the slice of the API client checkout needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, draft api.OrderDraft) (*model.Order, error)
}

// Service orchestrates checkout: validate the form, persist the order,
// render the WhatsApp message, and clear the cart on success.
type Service struct {
	orders    OrderCreator
	cart      *cart.Store
	formatter Formatter
	prefix    string
	phone     string
	logger    *slog.Logger

	// now and newRef are swapped out by tests for deterministic
	// references and dates.
	now    func() time.Time
	newRef func(prefix string, now time.Time) string
}

// ServiceConfig configures a checkout Service.
type ServiceConfig struct {
	Orders OrderCreator
	Cart   *cart.Store
	// StoreName appears in the rendered message.
	StoreName string
	// RefPrefix prefixes generated order references.
	RefPrefix string
	// StorePhone is the store's WhatsApp number, any format.
	StorePhone string
	Logger     *slog.Logger
}

// NewService creates a Service from cfg.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		orders:    cfg.Orders,
		cart:      cfg.Cart,
		formatter: Formatter{StoreName: cfg.StoreName},
		prefix:    cfg.RefPrefix,
		phone:     cfg.StorePhone,
		logger:    logger,
		now:       time.Now,
		newRef:    GenerateReference,
	}
}

// Form is the customer-entered checkout form.
type Form struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
}

// Result is the outcome of a checkout. Persisted reports whether the
// backend accepted the order; when false, Warning carries the text to
// surface and the reference is the locally generated one.
type Result struct {
	Reference string
	Order     *model.Order
	Message   string
	Link      string
	Persisted bool
	Warning   string
}

// Checkout runs the full flow. Persistence failure does not abort: the
// customer can still send the order via WhatsApp, with the local
// reference, and the store reconciles later. The cart is cleared only
// when the backend accepted the order.
func (s *Service) Checkout(ctx context.Context, form Form) (*Result, error) {
	if form.CustomerName == "" {
		return nil, model.NewValidationError("customer_name", "must not be empty")
	}
	if form.CustomerPhone == "" {
		return nil, model.NewValidationError("customer_phone", "must not be empty")
	}
	items := s.cart.Items()
	if len(items) == 0 {
		return nil, model.NewValidationError("cart", "cart is empty")
	}

	now := s.now()
	ref := s.newRef(s.prefix, now)
	total := s.cart.Total()

	draft := api.OrderDraft{
		Reference:       ref,
		Date:            now,
		CustomerName:    form.CustomerName,
		CustomerPhone:   form.CustomerPhone,
		CustomerAddress: form.CustomerAddress,
		Items:           draftLines(items),
	}

	res := &Result{Reference: ref}
	order, err := s.orders.CreateOrder(ctx, draft)
	switch {
	case err != nil:
		// Keep the local reference and flag the discrepancy.
		res.Warning = persistFailedMessage
		s.logger.Warn("order persistence failed, continuing with local reference",
			slog.String("reference", ref),
			slog.String("error", err.Error()),
		)
	default:
		res.Persisted = true
		res.Order = order
		if order.OrderReference != "" {
			// The backend's reference is canonical.
			res.Reference = order.OrderReference
		}
	}

	res.Message = s.formatter.Render(OrderMessage{
		Reference:       res.Reference,
		Date:            now,
		CustomerName:    form.CustomerName,
		CustomerPhone:   form.CustomerPhone,
		CustomerAddress: form.CustomerAddress,
		Items:           items,
		Total:           total,
	})
	res.Link = WhatsAppLink(s.phone, res.Message)

	if res.Persisted {
		if err := s.cart.Clear(); err != nil {
			s.logger.Warn("clearing cart after checkout failed", slog.String("error", err.Error()))
		}
		s.logger.Info("order placed",
			slog.String("reference", res.Reference),
			slog.Int("items", len(items)),
			slog.String("total", total.String()),
		)
	}
	return res, nil
}

// ConfirmationMessage renders the staff-to-customer confirmation text
// for an order, plus the wa.me link targeting the customer's phone.
func (s *Service) ConfirmationMessage(o *model.Order, baseURL string) (message, link string) {
	message = s.formatter.RenderConfirmation(o, baseURL)
	link = WhatsAppLink(o.CustomerPhone, message)
	return message, link
}

func draftLines(items []cart.LineItem) []api.OrderLine {
	lines := make([]api.OrderLine, len(items))
	for i, it := range items {
		lines[i] = api.OrderLine{
			ProductID:     it.ProductID,
			Name:          it.Name,
			Barcode:       it.Barcode,
			Image:         it.Image,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			SelectedSize:  it.SelectedSize,
			SelectedColor: it.SelectedColor,
		}
	}
	return lines
}
