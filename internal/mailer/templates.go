package mailer

import (
	"fmt"
	"strings"

	"furliva/internal/domain"
)

const (
	ReminderSubject          = "Subscription Renewal Reminder"
	OrderConfirmationSubject = "Order Confirmation - Furliva"
)

// RenderReminderEmail builds the renewal reminder body for a user whose
// plan expires within the reminder horizon.
func RenderReminderEmail(userName string, horizonDays int) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #ddd; border-radius: 10px; background-color: #f9f9f9;">
  <div style="text-align: center; color: #4CAF50; font-size: 22px; font-weight: bold;">
    Subscription Renewal Reminder
  </div>
  <hr style="border: 1px solid #ddd;">
  <div style="font-size: 16px; color: #333;">
    <p>Hello <strong>%s</strong>,</p>
  </div>
  <div style="font-size: 16px; color: #555; line-height: 1.6;">
    <p>We hope you're enjoying our services! Just a quick reminder: your subscription is set to cancel in <strong>%d days</strong>.</p>
    <p>If you wish to resubscribe, now is the perfect time to do so to continue enjoying uninterrupted access!</p>
  </div>
  <hr style="border: 1px solid #ddd;">
  <div style="font-size: 14px; color: #888; text-align: center;">
    <p>Thank you for being a valued member!</p>
    <p>Best, <br> <strong>Furliva Team</strong></p>
  </div>
</div>`, userName, horizonDays)
}

// RenderOrderConfirmationEmail builds the order confirmation body with the
// snapshotted line items.
func RenderOrderConfirmationEmail(order *domain.Order) string {
	var items strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&items, `
<div>
  <b>Name:</b> %s<br>
  <b>Quantity:</b> %d<br>
  <b>Price:</b> %.2f PKR
</div>`, item.Name, item.Quantity, item.Price)
	}

	return fmt.Sprintf(`
<h2>Order Confirmation - Furliva</h2>
<p>Dear %s %s,</p>
%s
<p><b>Total:</b> %.2f PKR</p>
<p><b>Payment Status:</b> %s</p>
<p><b>Shipping:</b> %s</p>`,
		order.FirstName, order.LastName, items.String(), order.TotalPrice, order.PaymentStatus, order.Street)
}
