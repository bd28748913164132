// Package smtp sends transactional mail through a plain SMTP relay
// (Mailpit in development, the hosting provider's relay in production).
package smtp

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	domorder "example.com/glowshop/internal/domain/order"
)

type Mailer struct {
	addr string
	from string
}

func NewMailer(addr, from string) *Mailer {
	return &Mailer{addr: addr, from: from}
}

// SendConfirmation mails the order receipt to the buyer.
func (m *Mailer) SendConfirmation(ctx context.Context, to string, receipt *domorder.Receipt) error {
	msg := buildConfirmation(m.from, to, receipt)

	// net/smtp has no context support; run the dial in a goroutine so the
	// caller's deadline still cuts the wait short.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(m.addr, nil, m.from, []string{to}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildConfirmation(from, to string, receipt *domorder.Receipt) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: Your order is confirmed\r\n")
	b.WriteString("\r\n")
	b.WriteString("Thank you for your order!\r\n\r\n")
	for _, item := range receipt.Items {
		fmt.Fprintf(&b, "  %d x %s  %s\r\n",
			item.Quantity, item.Name, formatCents(item.PriceCents, receipt.Currency))
	}
	fmt.Fprintf(&b, "\r\nTotal: %s\r\n", formatCents(receipt.TotalCents, receipt.Currency))
	fmt.Fprintf(&b, "Reference: %s\r\n", receipt.SessionID)
	return []byte(b.String())
}

func formatCents(cents int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, strings.ToUpper(currency))
}
