package services

import (
	"context"
	"time"

	"RxClinic/apperrors"
	"RxClinic/models"
	"RxClinic/repositories"
	"RxClinic/validators"
)

type (
	SpecializationService = Service[models.Specialization, *models.Specialization]
	ScheduleService       = Service[models.Schedule, *models.Schedule]
)

// DoctorService adds the verification workflow to the doctor pipeline.
type DoctorService struct {
	*Service[models.Doctor, *models.Doctor]
	doctors *repositories.DoctorRepository
	now     func() time.Time
}

func NewDoctorService(repos *repositories.Repositories, audit AuditLogger) *DoctorService {
	return &DoctorService{
		Service: NewService[models.Doctor](repos.Doctors, audit, Options[models.Doctor, *models.Doctor]{
			Validate: validators.ValidateDoctor,
			Prepare: func(_ context.Context, _ models.Actor, d *models.Doctor, op validators.Op) error {
				// Verification is only ever recorded through Verify.
				if op == validators.OpCreate {
					d.VerificationStatus = models.VerificationUnverified
					d.VerifiedBy = nil
					d.VerifiedAt = nil
				}
				return nil
			},
			Check: func(ctx context.Context, actor models.Actor, d *models.Doctor, op validators.Op) error {
				if op != validators.OpCreate {
					return nil
				}
				if !actor.IsAdmin() && actor.ID != d.UserID {
					return &apperrors.ForbiddenError{Reason: "doctors register their own credentials"}
				}
				return requireType(ctx, repos.Users, d.UserID, models.UserTypeDoctor)
			},
			CanModify: func(actor models.Actor, d *models.Doctor) bool {
				return actor.ID == d.UserID
			},
		}),
		doctors: repos.Doctors,
		now:     time.Now,
	}
}

// Verify records a verification decision. Doctors cannot verify themselves.
func (s *DoctorService) Verify(ctx context.Context, actor models.Actor, id, status string) (*models.Doctor, error) {
	if !actor.IsAdmin() && actor.Role != models.UserTypeDoctor {
		return nil, &apperrors.ForbiddenError{Reason: "only admins and doctors may verify doctors"}
	}
	if err := validators.ValidateVerification(status); err != nil {
		return nil, err
	}
	d, err := s.doctors.Get(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	if d.UserID == actor.ID {
		return nil, &apperrors.ForbiddenError{Reason: "doctors cannot verify themselves"}
	}
	if err := s.doctors.SetVerification(ctx, d.UserID, status, actor.ID, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.doctors.Get(ctx, id, nil)
}

func NewSpecializationService(repos *repositories.Repositories, audit AuditLogger) *SpecializationService {
	return NewService[models.Specialization](repos.Specializations, audit, Options[models.Specialization, *models.Specialization]{
		Validate: validators.ValidateSpecialization,
		Check: func(_ context.Context, actor models.Actor, _ *models.Specialization, _ validators.Op) error {
			if !actor.IsAdmin() {
				return &apperrors.ForbiddenError{Reason: "only admins manage specializations"}
			}
			return nil
		},
	})
}

func NewScheduleService(repos *repositories.Repositories, audit AuditLogger) *ScheduleService {
	return NewService[models.Schedule](repos.Schedules, audit, Options[models.Schedule, *models.Schedule]{
		Validate: validators.ValidateSchedule,
		Check: func(_ context.Context, actor models.Actor, s *models.Schedule, _ validators.Op) error {
			if actor.IsAdmin() || actor.ID == s.DoctorID {
				return nil
			}
			return &apperrors.ForbiddenError{Reason: "schedules belong to their doctor"}
		},
		CanModify: func(actor models.Actor, s *models.Schedule) bool {
			return actor.ID == s.DoctorID
		},
	})
}
