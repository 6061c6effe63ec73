package services

import (
	"context"

	"RxClinic/apperrors"
	"RxClinic/models"
	"RxClinic/repositories"
	"RxClinic/validators"
)

type (
	ConsultationService = Service[models.Consultation, *models.Consultation]
	AttachmentService   = Service[models.ConsultAttachment, *models.ConsultAttachment]
)

func attends(actor models.Actor, c *models.Consultation) bool {
	return c.DoctorID != nil && *c.DoctorID == actor.ID
}

// NewConsultationService books consultations. The booking patient owns the
// row and the attending doctor may record the diagnosis.
func NewConsultationService(repos *repositories.Repositories, audit AuditLogger) *ConsultationService {
	return NewService[models.Consultation](repos.Consultations, audit, Options[models.Consultation, *models.Consultation]{
		Validate: validators.ValidateConsultation,
		Check: func(_ context.Context, actor models.Actor, _ *models.Consultation, op validators.Op) error {
			if op == validators.OpCreate && actor.Role != models.UserTypePatient {
				return &apperrors.ForbiddenError{Reason: "only patients book consultations"}
			}
			return nil
		},
		CanModify: attends,
	})
}

func NewAttachmentService(repos *repositories.Repositories, audit AuditLogger) *AttachmentService {
	return NewService[models.ConsultAttachment](repos.Attachments, audit, Options[models.ConsultAttachment, *models.ConsultAttachment]{
		Validate: validators.ValidateAttachment,
		Check: func(ctx context.Context, actor models.Actor, a *models.ConsultAttachment, op validators.Op) error {
			if op != validators.OpCreate || actor.IsAdmin() {
				return nil
			}
			c, err := repos.Consultations.Get(ctx, a.ConsultID, nil)
			if apperrors.IsNotFound(err) {
				return &apperrors.ReferentialIntegrityError{Table: "consultations", Column: "consult_id", Reason: "consultations " + a.ConsultID + " does not exist"}
			}
			if err != nil {
				return err
			}
			if c.Owner() != actor.ID && !attends(actor, c) {
				return &apperrors.ForbiddenError{Reason: "cannot attach files to another patient's consultation"}
			}
			return nil
		},
	})
}
