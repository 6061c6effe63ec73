package handlers

import (
	"RxClinic/models"
	"RxClinic/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type (
	SpecializationHandler = CRUDHandler[models.Specialization, *models.Specialization]
	ScheduleHandler       = CRUDHandler[models.Schedule, *models.Schedule]
	ConsultationHandler   = CRUDHandler[models.Consultation, *models.Consultation]
	AttachmentHandler     = CRUDHandler[models.ConsultAttachment, *models.ConsultAttachment]
	PaymentHandler        = CRUDHandler[models.Payment, *models.Payment]
)

func NewSpecializationHandler(specializations *services.SpecializationService, log zerolog.Logger) *SpecializationHandler {
	return NewCRUDHandler[models.Specialization](specializations, func(s *models.Specialization) any { return s }, log)
}

func NewScheduleHandler(schedules *services.ScheduleService, baseURL string, log zerolog.Logger) *ScheduleHandler {
	return NewCRUDHandler[models.Schedule](schedules, func(s *models.Schedule) any {
		if s.Doctor != nil {
			d := s.Doctor.View(baseURL)
			out := *s
			out.Doctor = &d
			return out
		}
		return s
	}, log)
}

func NewConsultationHandler(consultations *services.ConsultationService, baseURL string, log zerolog.Logger) *ConsultationHandler {
	return NewCRUDHandler[models.Consultation](consultations, func(c *models.Consultation) any {
		return c.View(baseURL)
	}, log)
}

// NewAttachmentHandler serves /consultations/:id/attachments.
func NewAttachmentHandler(attachments *services.AttachmentService, baseURL string, log zerolog.Logger) *AttachmentHandler {
	return NewCRUDHandler[models.ConsultAttachment](attachments, func(a *models.ConsultAttachment) any {
		return a.View(baseURL)
	}, log).Nested(Parent[models.ConsultAttachment, *models.ConsultAttachment]{
		Param:  "id",
		Column: "consult_id",
		Key:    func(a *models.ConsultAttachment) string { return a.ConsultID },
		SetKey: func(a *models.ConsultAttachment, id string) { a.ConsultID = id },
	}, "attach_id")
}

// NewPaymentHandler replaces the detail lines on update only when the body
// carries them. An amount absent from the body is derived again from the
// resulting lines.
func NewPaymentHandler(payments *services.PaymentService, log zerolog.Logger) *PaymentHandler {
	return NewCRUDHandler[models.Payment](payments, func(p *models.Payment) any { return p }, log).
		WithMerge(func(c *gin.Context, p *models.Payment) error {
			stored := p.Details
			p.Details = nil
			p.Amount = decimal.NullDecimal{}
			if err := bind(c, p); err != nil {
				return err
			}
			if p.Details == nil {
				p.Details = stored
			}
			return nil
		})
}
