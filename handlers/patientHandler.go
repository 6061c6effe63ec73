package handlers

import (
	"RxClinic/models"
	"RxClinic/services"

	"github.com/rs/zerolog"
)

type (
	PatientHandler       = CRUDHandler[models.Patient, *models.Patient]
	AllergyHandler       = CRUDHandler[models.PatAllergy, *models.PatAllergy]
	FamilyHistoryHandler = CRUDHandler[models.PatFamMedHist, *models.PatFamMedHist]
)

func NewPatientHandler(patients *services.PatientService, baseURL string, log zerolog.Logger) *PatientHandler {
	return NewCRUDHandler[models.Patient](patients, func(p *models.Patient) any {
		return p.View(baseURL)
	}, log)
}

// NewAllergyHandler serves /patients/:id/allergies.
func NewAllergyHandler(allergies *services.AllergyService, log zerolog.Logger) *AllergyHandler {
	return NewCRUDHandler[models.PatAllergy](allergies, func(a *models.PatAllergy) any { return a }, log).
		Nested(Parent[models.PatAllergy, *models.PatAllergy]{
			Param:  "id",
			Column: "user_id",
			Key:    func(a *models.PatAllergy) string { return a.PatientID },
			SetKey: func(a *models.PatAllergy, id string) { a.PatientID = id },
		}, "allergy_id")
}

// NewFamilyHistoryHandler serves /patients/:id/family-history.
func NewFamilyHistoryHandler(history *services.FamilyHistoryService, log zerolog.Logger) *FamilyHistoryHandler {
	return NewCRUDHandler[models.PatFamMedHist](history, func(h *models.PatFamMedHist) any { return h }, log).
		Nested(Parent[models.PatFamMedHist, *models.PatFamMedHist]{
			Param:  "id",
			Column: "user_id",
			Key:    func(h *models.PatFamMedHist) string { return h.PatientID },
			SetKey: func(h *models.PatFamMedHist, id string) { h.PatientID = id },
		}, "medhis_id")
}
