package service

import (
	"context"
	"time"

	"furliva/internal/domain"
	"furliva/internal/payment"
	"furliva/internal/repository"

	"github.com/google/uuid"
)

// In-memory repository fakes shared by the service tests.

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (m *mockProductRepository) List(ctx context.Context, category *string, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	products := []*domain.Product{}
	for _, p := range m.products {
		if category == nil || p.Category == *category {
			products = append(products, p)
		}
	}
	return products, len(products), nil
}

func (m *mockProductRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	products := []*domain.Product{}
	for _, p := range m.products {
		products = append(products, p)
	}
	return products, len(products), nil
}

func (m *mockProductRepository) ListSummaries(ctx context.Context) ([]*repository.ProductSummary, error) {
	summaries := []*repository.ProductSummary{}
	for _, p := range m.products {
		summaries = append(summaries, &repository.ProductSummary{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			ImageURL: p.ImageURL,
		})
	}
	return summaries, nil
}

type mockSubscriptionRepository struct {
	subs map[uuid.UUID]*domain.Subscription
}

func newMockSubscriptionRepository() *mockSubscriptionRepository {
	return &mockSubscriptionRepository{subs: make(map[uuid.UUID]*domain.Subscription)}
}

func (m *mockSubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription, productIDs []uuid.UUID) error {
	m.subs[sub.ID] = sub
	return nil
}

func (m *mockSubscriptionRepository) Update(ctx context.Context, sub *domain.Subscription, productIDs []uuid.UUID) error {
	if _, exists := m.subs[sub.ID]; !exists {
		return repository.ErrSubscriptionNotFound
	}
	m.subs[sub.ID] = sub
	return nil
}

func (m *mockSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.subs[id]; !exists {
		return repository.ErrSubscriptionNotFound
	}
	delete(m.subs, id)
	return nil
}

func (m *mockSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	sub, exists := m.subs[id]
	if !exists {
		return nil, repository.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (m *mockSubscriptionRepository) FindByIDWithProducts(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	return m.FindByID(ctx, id)
}

func (m *mockSubscriptionRepository) List(ctx context.Context) ([]*domain.Subscription, error) {
	subs := []*domain.Subscription{}
	for _, sub := range m.subs {
		subs = append(subs, sub)
	}
	return subs, nil
}

func (m *mockSubscriptionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Subscription, error) {
	subs := []*domain.Subscription{}
	for _, id := range ids {
		if sub, exists := m.subs[id]; exists {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

type mockUserPlanRepository struct {
	plans map[uuid.UUID]*domain.UserPlan
}

func newMockUserPlanRepository() *mockUserPlanRepository {
	return &mockUserPlanRepository{plans: make(map[uuid.UUID]*domain.UserPlan)}
}

func (m *mockUserPlanRepository) Create(ctx context.Context, plan *domain.UserPlan) error {
	m.plans[plan.ID] = plan
	return nil
}

func (m *mockUserPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.plans[id]; !exists {
		return repository.ErrUserPlanNotFound
	}
	delete(m.plans, id)
	return nil
}

func (m *mockUserPlanRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserPlan, error) {
	plans := []*domain.UserPlan{}
	for _, plan := range m.plans {
		if plan.UserID == userID {
			plans = append(plans, plan)
		}
	}
	return plans, nil
}

func (m *mockUserPlanRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.UserPlan, error) {
	plans := []*domain.UserPlan{}
	for _, plan := range m.plans {
		if plan.UserID == userID && plan.Active(now) {
			plans = append(plans, plan)
		}
	}
	return plans, nil
}

func (m *mockUserPlanRepository) ListExpiring(ctx context.Context, from, to time.Time) ([]*domain.UserPlan, error) {
	plans := []*domain.UserPlan{}
	for _, plan := range m.plans {
		if plan.ExpiryDate == nil || !plan.AutoRenew {
			continue
		}
		if !plan.ExpiryDate.Before(from) && plan.ExpiryDate.Before(to) {
			plans = append(plans, plan)
		}
	}
	return plans, nil
}

func (m *mockUserPlanRepository) ListSubscribers(ctx context.Context, filter string, now time.Time) ([]*domain.Subscriber, error) {
	subscribers := []*domain.Subscriber{}
	for _, plan := range m.plans {
		active := plan.Active(now)
		if filter == domain.SubscriberFilterActive && !active {
			continue
		}
		if filter == domain.SubscriberFilterExpired && active {
			continue
		}
		subscribers = append(subscribers, &domain.Subscriber{
			PlanID:     plan.ID,
			StartDate:  plan.StartDate,
			ExpiryDate: plan.ExpiryDate,
			AutoRenew:  plan.AutoRenew,
		})
	}
	return subscribers, nil
}

type mockSaleRepository struct {
	sales map[uuid.UUID]*domain.Sale
}

func newMockSaleRepository() *mockSaleRepository {
	return &mockSaleRepository{sales: make(map[uuid.UUID]*domain.Sale)}
}

func (m *mockSaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	m.sales[sale.ID] = sale
	return nil
}

func (m *mockSaleRepository) Update(ctx context.Context, sale *domain.Sale) error {
	if _, exists := m.sales[sale.ID]; !exists {
		return repository.ErrSaleNotFound
	}
	m.sales[sale.ID] = sale
	return nil
}

func (m *mockSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.sales[id]; !exists {
		return repository.ErrSaleNotFound
	}
	delete(m.sales, id)
	return nil
}

func (m *mockSaleRepository) List(ctx context.Context) ([]*domain.Sale, error) {
	sales := []*domain.Sale{}
	for _, sale := range m.sales {
		sales = append(sales, sale)
	}
	return sales, nil
}

func (m *mockSaleRepository) FindActive(ctx context.Context, now time.Time) (*domain.Sale, error) {
	for _, sale := range m.sales {
		if sale.IsActive && !sale.StartDate.After(now) && !sale.EndDate.Before(now) {
			return sale, nil
		}
	}
	return nil, repository.ErrSaleNotFound
}

// mockOrderRepository emulates the transactional write path: the order, its
// stock decrements, and the outbox enqueue all land or none do.
type mockOrderRepository struct {
	products *mockProductRepository
	orders   map[uuid.UUID]*domain.Order
	outbox   []*domain.OutboxEmail
}

func newMockOrderRepository(products *mockProductRepository) *mockOrderRepository {
	return &mockOrderRepository{
		products: products,
		orders:   make(map[uuid.UUID]*domain.Order),
	}
}

func (m *mockOrderRepository) CreateWithItems(ctx context.Context, order *domain.Order, email *domain.OutboxEmail) error {
	// Guard pass first so nothing is written on failure
	for _, item := range order.Items {
		product, exists := m.products.products[item.ProductID]
		if !exists || product.Quantity < item.Quantity {
			return repository.ErrInsufficientStock
		}
	}

	for _, item := range order.Items {
		m.products.products[item.ProductID].Quantity -= item.Quantity
	}

	m.orders[order.ID] = order
	if email != nil {
		m.outbox = append(m.outbox, email)
	}
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, exists := m.orders[id]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for _, order := range m.orders {
		orders = append(orders, order)
	}
	return orders, nil
}

// mockPaymentClient records session requests instead of calling out
type mockPaymentClient struct {
	enabled  bool
	fail     bool
	requests []payment.SessionRequest
}

func (m *mockPaymentClient) Enabled() bool {
	return m.enabled
}

func (m *mockPaymentClient) CreatePlanSession(ctx context.Context, req payment.SessionRequest) (string, error) {
	if !m.enabled {
		return "", payment.ErrDisabled
	}
	if m.fail {
		return "", payment.ErrProvider
	}
	m.requests = append(m.requests, req)
	return "cs_test_" + uuid.NewString(), nil
}
