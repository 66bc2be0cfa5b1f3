package transport

import (
	"context"

	"furliva/internal/domain"
	"furliva/internal/repository"
	"furliva/internal/service"

	"github.com/google/uuid"
)

// Mock repositories for testing
type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
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
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
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

// stubCheckoutService returns canned results so handler tests can exercise
// the error-to-status mapping without a database.
type stubCheckoutService struct {
	checkoutErr    error
	quoteErr       error
	lastInput      service.CheckoutInput
	lastQuoteUser  uuid.UUID
	checkoutResult *service.CheckoutResult
}

func (s *stubCheckoutService) Checkout(ctx context.Context, input service.CheckoutInput) (*service.CheckoutResult, error) {
	s.lastInput = input
	if s.checkoutErr != nil {
		return nil, s.checkoutErr
	}
	if s.checkoutResult != nil {
		return s.checkoutResult, nil
	}
	return &service.CheckoutResult{Order: &domain.Order{ID: uuid.New()}}, nil
}

func (s *stubCheckoutService) Quote(ctx context.Context, userID uuid.UUID, cart map[string]service.CartItem) (*service.QuoteResult, error) {
	s.lastQuoteUser = userID
	if s.quoteErr != nil {
		return nil, s.quoteErr
	}
	return &service.QuoteResult{}, nil
}

func (s *stubCheckoutService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return nil, repository.ErrOrderNotFound
}

func (s *stubCheckoutService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return []*domain.Order{}, nil
}
