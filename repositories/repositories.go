package repositories

import (
	"RxClinic/cache"
	"RxClinic/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type (
	PatientStore        = Store[models.Patient, *models.Patient]
	SpecializationStore = Store[models.Specialization, *models.Specialization]
	ScheduleStore       = Store[models.Schedule, *models.Schedule]
	ConsultationStore   = Store[models.Consultation, *models.Consultation]
	AttachmentStore     = Store[models.ConsultAttachment, *models.ConsultAttachment]
	AllergyStore        = Store[models.PatAllergy, *models.PatAllergy]
	FamilyHistoryStore  = Store[models.PatFamMedHist, *models.PatFamMedHist]
)

// Repositories groups the data access of every table.
type Repositories struct {
	Resolver        *Resolver
	Users           *UserRepository
	Patients        *PatientStore
	Doctors         *DoctorRepository
	Specializations *SpecializationStore
	Schedules       *ScheduleStore
	Consultations   *ConsultationStore
	Attachments     *AttachmentStore
	Allergies       *AllergyStore
	FamilyHistory   *FamilyHistoryStore
	Payments        *PaymentRepository
}

func New(db *gorm.DB, resolver *Resolver, c *cache.Cache, log zerolog.Logger) *Repositories {
	return &Repositories{
		Resolver:        resolver,
		Users:           NewUserRepository(db, resolver, c, log),
		Patients:        NewStore[models.Patient](db, resolver, c, log),
		Doctors:         NewDoctorRepository(db, resolver, c, log),
		Specializations: NewStore[models.Specialization](db, resolver, c, log),
		Schedules:       NewStore[models.Schedule](db, resolver, c, log),
		Consultations:   NewStore[models.Consultation](db, resolver, c, log),
		Attachments:     NewStore[models.ConsultAttachment](db, resolver, c, log),
		Allergies:       NewStore[models.PatAllergy](db, resolver, c, log),
		FamilyHistory:   NewStore[models.PatFamMedHist](db, resolver, c, log),
		Payments:        NewPaymentRepository(db, resolver, c, log),
	}
}
