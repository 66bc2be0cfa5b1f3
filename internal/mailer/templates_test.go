package mailer

import (
	"strings"
	"testing"

	"furliva/internal/config"
	"furliva/internal/domain"

	"github.com/google/uuid"
)

func TestRenderReminderEmail(t *testing.T) {
	body := RenderReminderEmail("Hira", 3)

	if !strings.Contains(body, "Hira") {
		t.Error("reminder body missing user name")
	}
	if !strings.Contains(body, "3 days") {
		t.Error("reminder body missing horizon")
	}
}

func TestRenderOrderConfirmationEmail(t *testing.T) {
	order := &domain.Order{
		ID:            uuid.New(),
		FirstName:     "Ayesha",
		LastName:      "Khan",
		Street:        "12 Mall Road",
		PaymentStatus: "Cash on Delivery",
		TotalPrice:    1800,
		Items: []domain.OrderItem{
			{Name: "Cat Litter", Quantity: 2, Price: 900},
		},
	}

	body := RenderOrderConfirmationEmail(order)

	for _, want := range []string{"Ayesha Khan", "Cat Litter", "1800.00 PKR", "Cash on Delivery", "12 Mall Road"} {
		if !strings.Contains(body, want) {
			t.Errorf("confirmation body missing %q", want)
		}
	}
}

func TestSMTPMailerConfigured(t *testing.T) {
	// Configuration requires host and credentials together
	cases := []struct {
		name string
		host string
		user string
		pass string
		want bool
	}{
		{"fully configured", "smtp.example.com", "mailer", "secret", true},
		{"missing host", "", "mailer", "secret", false},
		{"missing credentials", "smtp.example.com", "", "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := SMTPMailer{cfg: config.SMTPConfig{Host: c.host, Username: c.user, Password: c.pass}}
			if got := m.Configured(); got != c.want {
				t.Errorf("Configured() = %v, want %v", got, c.want)
			}
		})
	}
}
