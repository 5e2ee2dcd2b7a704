// Package mailer provides account notification delivery.
package mailer

import (
	"context"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/interfaces"
	"github.com/stocksim/stocksim/internal/models"
)

// Compile-time interface check
var _ interfaces.Mailer = (*LogMailer)(nil)

// LogMailer writes notifications to the log instead of sending mail.
// It stands in for a real delivery backend in development; password
// reset tokens surface in the server log so the flow stays testable
// end to end.
type LogMailer struct {
	logger *common.Logger
}

// NewLogMailer creates a log-backed mailer.
func NewLogMailer(logger *common.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.logger.Info().
		Str("email", email).
		Str("token", token).
		Msg("Password reset requested")
	return nil
}

func (m *LogMailer) SendWelcome(ctx context.Context, email, firstName string) error {
	m.logger.Info().
		Str("email", email).
		Str("first_name", firstName).
		Msg("Welcome mail")
	return nil
}

func (m *LogMailer) SendTransaction(ctx context.Context, email string, view *models.TransactionView) error {
	m.logger.Info().
		Str("email", email).
		Str("symbol", view.Symbol).
		Str("type", view.Type).
		Int64("quantity", view.Quantity).
		Str("total", view.TotalAmount.String()).
		Msg("Transaction mail")
	return nil
}
