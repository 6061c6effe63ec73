package handlers

import (
	"RxClinic/services"

	"github.com/rs/zerolog"
)

// Handlers holds the HTTP handler of every resource.
type Handlers struct {
	Auth            *AuthHandler
	Users           *UserHandler
	Patients        *PatientHandler
	Allergies       *AllergyHandler
	FamilyHistory   *FamilyHistoryHandler
	Doctors         *DoctorHandler
	Specializations *SpecializationHandler
	Schedules       *ScheduleHandler
	Consultations   *ConsultationHandler
	Attachments     *AttachmentHandler
	Payments        *PaymentHandler
}

// New builds the handlers over svc. baseURL prefixes stored file names in
// responses.
func New(svc *services.Services, baseURL string, secureCookies bool, log zerolog.Logger) *Handlers {
	return &Handlers{
		Auth:            NewAuthHandler(svc.Users, baseURL, secureCookies, log),
		Users:           NewUserHandler(svc.Users, baseURL, log),
		Patients:        NewPatientHandler(svc.Patients, baseURL, log),
		Allergies:       NewAllergyHandler(svc.Allergies, log),
		FamilyHistory:   NewFamilyHistoryHandler(svc.FamilyHistory, log),
		Doctors:         NewDoctorHandler(svc.Doctors, baseURL, log),
		Specializations: NewSpecializationHandler(svc.Specializations, log),
		Schedules:       NewScheduleHandler(svc.Schedules, baseURL, log),
		Consultations:   NewConsultationHandler(svc.Consultations, baseURL, log),
		Attachments:     NewAttachmentHandler(svc.Attachments, baseURL, log),
		Payments:        NewPaymentHandler(svc.Payments, log),
	}
}
