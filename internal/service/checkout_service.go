package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"furliva/internal/domain"
	"furliva/internal/mailer"
	"furliva/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrEmptyCart is returned when a checkout carries no purchasable lines
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidCartItem is returned for non-positive quantities
	ErrInvalidCartItem = errors.New("invalid cart item")
	// ErrCartProductNotFound is returned when a cart line references an
	// unknown product.
	ErrCartProductNotFound = errors.New("product in cart not found")
)

// StockError reports which product could not satisfy the requested quantity
type StockError struct {
	ProductName string
	Available   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: only %d in stock", e.ProductName, e.Available)
}

// CartItem is one requested order line keyed by product id in the cart map
type CartItem struct {
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// CheckoutInput is everything the checkout workflow consumes: the cart, the
// shipping contact, and the authenticated buyer.
type CheckoutInput struct {
	UserID        uuid.UUID
	Cart          map[string]CartItem
	FirstName     string
	LastName      string
	Email         string
	Street        string
	City          string
	State         string
	Zipcode       string
	Country       string
	Phone         string
	PaymentStatus string
}

// CheckoutResult reports the created order plus the pricing context that
// applied to it.
type CheckoutResult struct {
	Order        *domain.Order `json:"order"`
	Features     []string      `json:"features"`
	SaleDiscount float64       `json:"saleDiscount"`
}

// CheckoutService runs the order placement workflow
type CheckoutService interface {
	// Checkout validates the cart, applies the active sale and the buyer's
	// plan features, then atomically persists the order, decrements stock,
	// and queues the confirmation email. Either everything commits or
	// nothing does.
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
	// Quote resolves the pricing context for a cart without writing anything:
	// the active sale discount and the buyer's plan features.
	Quote(ctx context.Context, userID uuid.UUID, cart map[string]CartItem) (*QuoteResult, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
}

// QuoteResult is the read-only pricing context for a cart
type QuoteResult struct {
	Features     []string `json:"features"`
	SaleDiscount float64  `json:"saleDiscount"`
}

type checkoutService struct {
	orderRepo        repository.OrderRepository
	productRepo      repository.ProductRepository
	saleRepo         repository.SaleRepository
	userPlanRepo     repository.UserPlanRepository
	subscriptionRepo repository.SubscriptionRepository
	notify           bool
	logger           *zap.Logger
	now              func() time.Time
}

// NewCheckoutService creates a new instance of CheckoutService. notify
// controls whether confirmation emails are queued; it is false when no
// mailer is configured.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	userPlanRepo repository.UserPlanRepository,
	subscriptionRepo repository.SubscriptionRepository,
	notify bool,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo:        orderRepo,
		productRepo:      productRepo,
		saleRepo:         saleRepo,
		userPlanRepo:     userPlanRepo,
		subscriptionRepo: subscriptionRepo,
		notify:           notify,
		logger:           logger,
		now:              time.Now,
	}
}

// Checkout implements the order placement workflow
func (s *checkoutService) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if len(input.Cart) == 0 {
		return nil, ErrEmptyCart
	}

	// Resolve and validate every cart line up front. The transaction guard
	// below remains the authority on stock; this pass exists to reject bad
	// requests with a product-specific message before any write.
	items := make([]domain.OrderItem, 0, len(input.Cart))
	for rawID, line := range input.Cart {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidCartItem)
		}

		productID, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad product id %q", ErrInvalidCartItem, rawID)
		}

		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			if err == repository.ErrProductNotFound {
				return nil, fmt.Errorf("%w: %s", ErrCartProductNotFound, rawID)
			}
			return nil, fmt.Errorf("failed to load product: %w", err)
		}

		if product.Quantity < line.Quantity {
			return nil, &StockError{ProductName: product.Name, Available: product.Quantity}
		}

		items = append(items, domain.OrderItem{
			ID:        uuid.New(),
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}

	saleDiscount := s.activeSaleDiscount(ctx)
	features, err := s.planFeatures(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	if saleDiscount > 0 {
		total = total * (1 - saleDiscount/100)
	}
	// Plan features (including "10% off") are reported back to the client
	// for display; they never stack an additional reduction on the total.

	order := &domain.Order{
		ID:            uuid.New(),
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Email:         input.Email,
		Street:        input.Street,
		City:          input.City,
		State:         input.State,
		Zipcode:       input.Zipcode,
		Country:       input.Country,
		Phone:         input.Phone,
		PaymentStatus: input.PaymentStatus,
		TotalPrice:    total,
		CreatedAt:     s.now(),
		Items:         items,
	}

	var email *domain.OutboxEmail
	if s.notify && order.Email != "" {
		email = &domain.OutboxEmail{
			Recipient: order.Email,
			Subject:   mailer.OrderConfirmationSubject,
			Body:      mailer.RenderOrderConfirmationEmail(order),
			Status:    domain.OutboxStatusPending,
			CreatedAt: s.now(),
		}
	}

	if err := s.orderRepo.CreateWithItems(ctx, order, email); err != nil {
		if err == repository.ErrInsufficientStock {
			// A concurrent checkout won the race for the last units
			return nil, &StockError{ProductName: "one of the ordered products", Available: 0}
		}
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.Int("items", len(order.Items)),
		zap.Float64("total", order.TotalPrice),
	)

	return &CheckoutResult{
		Order:        order,
		Features:     features,
		SaleDiscount: saleDiscount,
	}, nil
}

// Quote validates the cart lines and returns the pricing context
func (s *checkoutService) Quote(ctx context.Context, userID uuid.UUID, cart map[string]CartItem) (*QuoteResult, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	for rawID, line := range cart {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidCartItem)
		}

		productID, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad product id %q", ErrInvalidCartItem, rawID)
		}

		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			if err == repository.ErrProductNotFound {
				return nil, fmt.Errorf("%w: %s", ErrCartProductNotFound, rawID)
			}
			return nil, fmt.Errorf("failed to load product: %w", err)
		}

		if product.Quantity < line.Quantity {
			return nil, &StockError{ProductName: product.Name, Available: product.Quantity}
		}
	}

	features, err := s.planFeatures(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &QuoteResult{
		Features:     features,
		SaleDiscount: s.activeSaleDiscount(ctx),
	}, nil
}

// GetOrder retrieves an order with its line items
func (s *checkoutService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

// ListOrders retrieves all orders, newest first
func (s *checkoutService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orderRepo.List(ctx)
}

// activeSaleDiscount returns the discount percentage of the currently
// running sale, or zero. Sale lookup failures degrade to no discount.
func (s *checkoutService) activeSaleDiscount(ctx context.Context) float64 {
	sale, err := s.saleRepo.FindActive(ctx, s.now())
	if err != nil {
		if err != repository.ErrSaleNotFound {
			s.logger.Warn("Failed to resolve active sale", zap.Error(err))
		}
		return 0
	}
	return sale.DiscountPercentage
}

// planFeatures flattens the feature lists of the buyer's active plans,
// deduplicated, preserving first-seen order.
func (s *checkoutService) planFeatures(ctx context.Context, userID uuid.UUID) ([]string, error) {
	plans, err := s.userPlanRepo.ListActiveByUser(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list active plans: %w", err)
	}
	if len(plans) == 0 {
		return []string{}, nil
	}

	ids := make([]uuid.UUID, 0, len(plans))
	seen := map[uuid.UUID]bool{}
	for _, plan := range plans {
		if !seen[plan.SubscriptionID] {
			seen[plan.SubscriptionID] = true
			ids = append(ids, plan.SubscriptionID)
		}
	}

	subs, err := s.subscriptionRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan features: %w", err)
	}

	features := []string{}
	have := map[string]bool{}
	for _, sub := range subs {
		for _, feature := range sub.Features {
			if !have[feature] {
				have[feature] = true
				features = append(features, feature)
			}
		}
	}

	return features, nil
}

// DecodeCart parses the wire cart representation, which arrives as an
// object keyed by product id.
func DecodeCart(raw json.RawMessage) (map[string]CartItem, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyCart
	}
	cart := map[string]CartItem{}
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCartItem, err)
	}
	return cart, nil
}
