package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"furliva/internal/middleware"
	"furliva/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func orderRequestBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(OrderRequest{
		Cart: map[string]service.CartItem{
			uuid.NewString(): {Quantity: 1, Price: 500},
		},
		FirstName: "Ayesha",
		LastName:  "Khan",
		Email:     "ayesha@example.com",
		Street:    "12 Mall Road",
		City:      "Lahore",
		Country:   "Pakistan",
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return body
}

func placeOrder(handler *OrderHandler, userID string, body []byte) *httptest.ResponseRecorder {
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, userID)
	req := httptest.NewRequest(http.MethodPost, "/api/orders/order", bytes.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.PlaceOrder(w, req)
	return w
}

// Checkout failures map onto status codes the client can act on
func TestPlaceOrder_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"insufficient stock", &service.StockError{ProductName: "Dog Food", Available: 2}, http.StatusBadRequest},
		{"empty cart", service.ErrEmptyCart, http.StatusBadRequest},
		{"invalid cart item", service.ErrInvalidCartItem, http.StatusBadRequest},
		{"unknown product", service.ErrCartProductNotFound, http.StatusNotFound},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			stub := &stubCheckoutService{checkoutErr: c.err}
			handler := NewOrderHandler(stub, zap.NewNop())

			w := placeOrder(handler, uuid.NewString(), orderRequestBody(t))
			if w.Code != c.want {
				t.Errorf("status: got %d, want %d", w.Code, c.want)
			}
		})
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	stub := &stubCheckoutService{}
	handler := NewOrderHandler(stub, zap.NewNop())
	userID := uuid.New()

	w := placeOrder(handler, userID.String(), orderRequestBody(t))
	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201", w.Code)
	}

	// Identity comes from the token context, not the body
	if stub.lastInput.UserID != userID {
		t.Errorf("checkout ran as %s, want token identity %s", stub.lastInput.UserID, userID)
	}
	if stub.lastInput.PaymentStatus != "Cash on Delivery" {
		t.Errorf("default payment status not applied: %q", stub.lastInput.PaymentStatus)
	}
}

func TestPlaceOrder_NoIdentityRejected(t *testing.T) {
	handler := NewOrderHandler(&stubCheckoutService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/orders/order", bytes.NewReader(orderRequestBody(t)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.PlaceOrder(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", w.Code)
	}
}

func TestQuote_UsesTokenIdentity(t *testing.T) {
	stub := &stubCheckoutService{}
	handler := NewOrderHandler(stub, zap.NewNop())
	userID := uuid.New()

	body, _ := json.Marshal(QuoteRequest{
		Cart: map[string]service.CartItem{uuid.NewString(): {Quantity: 1, Price: 100}},
	})
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, userID.String())
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.Quote(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	if stub.lastQuoteUser != userID {
		t.Errorf("quote ran as %s, want token identity %s", stub.lastQuoteUser, userID)
	}
}

// Card payment for orders is an advertised but unimplemented capability
func TestCreateCheckoutSession_NotImplemented(t *testing.T) {
	handler := NewOrderHandler(&stubCheckoutService{}, zap.NewNop())

	ctx := context.WithValue(context.Background(), middleware.UserIDKey, uuid.NewString())
	req := httptest.NewRequest(http.MethodPost, "/api/orders/create-checkout-session", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	handler.CreateCheckoutSession(w, req)

	if w.Code != http.StatusNotImplemented {
		t.Errorf("status: got %d, want 501", w.Code)
	}
}
