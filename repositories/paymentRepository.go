package repositories

import (
	"context"
	"fmt"

	"RxClinic/apperrors"
	"RxClinic/cache"
	"RxClinic/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type PaymentStore = Store[models.Payment, *models.Payment]

type DetailStore = Store[models.PaymentDetail, *models.PaymentDetail]

// PaymentRepository writes a payment together with its detail lines.
type PaymentRepository struct {
	*PaymentStore
	details *DetailStore
}

func NewPaymentRepository(db *gorm.DB, resolver *Resolver, c *cache.Cache, log zerolog.Logger) *PaymentRepository {
	return &PaymentRepository{
		PaymentStore: NewStore[models.Payment](db, resolver, c, log),
		details:      NewStore[models.PaymentDetail](db, resolver, c, log),
	}
}

// Get always loads the detail lines.
func (r *PaymentRepository) Get(ctx context.Context, rawID string, includes []string) (*models.Payment, error) {
	return r.PaymentStore.Get(ctx, rawID, withDetails(includes))
}

func (r *PaymentRepository) List(ctx context.Context, includes []string, scopes ...Scope) ([]models.Payment, error) {
	return r.PaymentStore.List(ctx, withDetails(includes), scopes...)
}

func withDetails(includes []string) []string {
	for _, inc := range includes {
		if inc == "details" {
			return includes
		}
	}
	return append(append([]string{}, includes...), "details")
}

// Create inserts the payment and every detail line in one transaction.
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	return r.Transaction(ctx, func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Payment{}).Where("consult_id = ?", p.ConsultID).Count(&taken).Error; err != nil {
			return classify(err, "payments")
		}
		if taken > 0 {
			return &apperrors.UniquenessError{Field: "consult_id"}
		}
		if err := r.CreateTx(ctx, tx, p); err != nil {
			return err
		}
		for i := range p.Details {
			d := &p.Details[i]
			d.ID = 0
			d.PaymentID = p.ID
			d.Audit = p.Audit
			if err := r.details.CreateTx(ctx, tx, d); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update saves the payment and reconciles its detail lines: lines with an id
// are updated, new lines are inserted and missing lines are deleted.
func (r *PaymentRepository) Update(ctx context.Context, p *models.Payment) error {
	err := r.Transaction(ctx, func(tx *gorm.DB) error {
		if err := r.UpdateTx(ctx, tx, p); err != nil {
			return err
		}

		var existing []models.PaymentDetail
		if err := tx.Where("pay_id = ?", p.ID).Find(&existing).Error; err != nil {
			return classify(err, "payments_det")
		}
		current := make(map[uint]models.PaymentDetail, len(existing))
		for _, d := range existing {
			current[d.ID] = d
		}

		for i := range p.Details {
			d := &p.Details[i]
			d.PaymentID = p.ID
			if d.ID == 0 {
				d.Stamp(*p.UpdatedBy, true)
				if err := r.details.CreateTx(ctx, tx, d); err != nil {
					return err
				}
				continue
			}
			old, ok := current[d.ID]
			if !ok {
				return &apperrors.NotFoundError{Entity: "payments_det", ID: fmt.Sprint(d.ID)}
			}
			delete(current, d.ID)
			d.Audit = old.Audit
			d.Stamp(*p.UpdatedBy, false)
			if err := r.details.UpdateTx(ctx, tx, d); err != nil {
				return err
			}
		}

		for id := range current {
			if err := r.details.resolver.delete(ctx, tx, "payments_det", id); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		r.Invalidate(ctx, p.ID)
	}
	return err
}
