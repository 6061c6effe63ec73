package repositories

import (
	"context"
	"time"

	"RxClinic/apperrors"
	"RxClinic/cache"
	"RxClinic/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type DoctorStore = Store[models.Doctor, *models.Doctor]

// DoctorRepository adds the verification workflow to the doctors store.
type DoctorRepository struct {
	*DoctorStore
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB, resolver *Resolver, c *cache.Cache, log zerolog.Logger) *DoctorRepository {
	return &DoctorRepository{
		DoctorStore: NewStore[models.Doctor](db, resolver, c, log).
			Protect("verification_status", "verified_by", "verified_at"),
		db: db,
	}
}

// SetVerification records a verification decision on a doctor.
func (r *DoctorRepository) SetVerification(ctx context.Context, doctorID, status, verifierID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&models.Doctor{}).
		Where("user_id = ?", doctorID).
		Updates(map[string]interface{}{
			"verification_status": status,
			"verified_by":         verifierID,
			"verified_at":         at,
			"updated_by":          verifierID,
		})
	if res.Error != nil {
		return classify(res.Error, "doctors")
	}
	if res.RowsAffected == 0 {
		return &apperrors.NotFoundError{Entity: "doctors", ID: doctorID}
	}
	r.Invalidate(ctx, doctorID)
	return nil
}
