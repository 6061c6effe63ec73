package services

import (
	"RxClinic/database"
	"RxClinic/repositories"
	"RxClinic/utils"

	"github.com/rs/zerolog"
)

// Services groups the business logic of every resource.
type Services struct {
	Users           *UserService
	Patients        *PatientService
	Allergies       *AllergyService
	FamilyHistory   *FamilyHistoryService
	Doctors         *DoctorService
	Specializations *SpecializationService
	Schedules       *ScheduleService
	Consultations   *ConsultationService
	Attachments     *AttachmentService
	Payments        *PaymentService
}

type Deps struct {
	Repos  *repositories.Repositories
	Locker *database.Locker
	Tokens *utils.TokenMaker
	Codes  *utils.ResetCodes
	Mailer utils.Mailer
	Audit  AuditLogger
	Log    zerolog.Logger
}

func New(deps Deps) *Services {
	repos := deps.Repos
	return &Services{
		Users: NewUserService(UserDeps{
			Users:    repos.Users,
			Patients: repos.Patients,
			Locker:   deps.Locker,
			Tokens:   deps.Tokens,
			Codes:    deps.Codes,
			Mailer:   deps.Mailer,
			Audit:    deps.Audit,
			Log:      deps.Log,
		}),
		Patients:        NewPatientService(repos, deps.Audit),
		Allergies:       NewAllergyService(repos, deps.Audit),
		FamilyHistory:   NewFamilyHistoryService(repos, deps.Audit),
		Doctors:         NewDoctorService(repos, deps.Audit),
		Specializations: NewSpecializationService(repos, deps.Audit),
		Schedules:       NewScheduleService(repos, deps.Audit),
		Consultations:   NewConsultationService(repos, deps.Audit),
		Attachments:     NewAttachmentService(repos, deps.Audit),
		Payments:        NewPaymentService(repos, deps.Audit),
	}
}
