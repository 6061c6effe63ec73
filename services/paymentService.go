package services

import (
	"context"

	"RxClinic/apperrors"
	"RxClinic/models"
	"RxClinic/repositories"
	"RxClinic/validators"

	"github.com/shopspring/decimal"
)

type PaymentService = Service[models.Payment, *models.Payment]

// NewPaymentService records payments against consultations. An omitted amount
// is taken from the active detail lines.
func NewPaymentService(repos *repositories.Repositories, audit AuditLogger) *PaymentService {
	return NewService[models.Payment](repos.Payments, audit, Options[models.Payment, *models.Payment]{
		Validate: validators.ValidatePayment,
		Prepare: func(_ context.Context, _ models.Actor, p *models.Payment, _ validators.Op) error {
			for i := range p.Details {
				if p.Details[i].Status == "" {
					p.Details[i].Status = models.StatusActive
				}
			}
			if !p.Amount.Valid {
				p.Amount = decimal.NewNullDecimal(p.DetailTotal())
			}
			return nil
		},
		Check: func(_ context.Context, actor models.Actor, _ *models.Payment, _ validators.Op) error {
			if actor.IsAdmin() || actor.Role == models.UserTypeDoctor {
				return nil
			}
			return &apperrors.ForbiddenError{Reason: "only admins and doctors record payments"}
		},
	})
}
