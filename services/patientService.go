package services

import (
	"context"
	"math"

	"RxClinic/apperrors"
	"RxClinic/models"
	"RxClinic/repositories"
	"RxClinic/validators"
)

type (
	PatientService       = Service[models.Patient, *models.Patient]
	AllergyService       = Service[models.PatAllergy, *models.PatAllergy]
	FamilyHistoryService = Service[models.PatFamMedHist, *models.PatFamMedHist]
)

const (
	BMIUnderweight = "Underweight"
	BMINormal      = "Normal"
	BMIOverweight  = "Overweight"
	BMIObese       = "Obese"
)

// BMI computes the body mass index from imperial measurements.
func BMI(weightLbs float64, heightFt, heightIn int) (float64, bool) {
	inches := float64(heightFt*12 + heightIn)
	if weightLbs <= 0 || inches <= 0 {
		return 0, false
	}
	bmi := 703 * weightLbs / (inches * inches)
	return math.Round(bmi*100) / 100, true
}

func BMIStatus(bmi float64) string {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	}
	return BMIObese
}

// deriveBMI fills bmi_num and bmi_status whenever weight and height are known.
func deriveBMI(p *models.Patient) {
	if p.WeightLbs == nil || p.HeightFt == nil {
		return
	}
	heightIn := 0
	if p.HeightIn != nil {
		heightIn = *p.HeightIn
	}
	bmi, ok := BMI(*p.WeightLbs, *p.HeightFt, heightIn)
	if !ok {
		return
	}
	status := BMIStatus(bmi)
	p.BMINum = &bmi
	p.BMIStatus = &status
}

func NewPatientService(repos *repositories.Repositories, audit AuditLogger) *PatientService {
	return NewService[models.Patient](repos.Patients, audit, Options[models.Patient, *models.Patient]{
		Validate: validators.ValidatePatient,
		Prepare: func(_ context.Context, _ models.Actor, p *models.Patient, _ validators.Op) error {
			deriveBMI(p)
			return nil
		},
		Check: func(ctx context.Context, actor models.Actor, p *models.Patient, op validators.Op) error {
			if op != validators.OpCreate {
				return nil
			}
			if !actor.IsAdmin() && actor.ID != p.UserID {
				return &apperrors.ForbiddenError{Reason: "cannot create another user's patient record"}
			}
			return requireType(ctx, repos.Users, p.UserID, models.UserTypePatient)
		},
		CanModify: func(actor models.Actor, p *models.Patient) bool {
			return actor.ID == p.UserID
		},
	})
}

// canChart reports whether actor may add to a patient's chart: the patient
// themselves, a doctor or an admin.
func canChart(actor models.Actor, patientID string) error {
	if actor.IsAdmin() || actor.Role == models.UserTypeDoctor || actor.ID == patientID {
		return nil
	}
	return &apperrors.ForbiddenError{Reason: "cannot edit the chart of another patient"}
}

func NewAllergyService(repos *repositories.Repositories, audit AuditLogger) *AllergyService {
	return NewService[models.PatAllergy](repos.Allergies, audit, Options[models.PatAllergy, *models.PatAllergy]{
		Validate: validators.ValidateAllergy,
		Check: func(_ context.Context, actor models.Actor, a *models.PatAllergy, _ validators.Op) error {
			return canChart(actor, a.PatientID)
		},
		CanModify: func(actor models.Actor, a *models.PatAllergy) bool {
			return actor.ID == a.PatientID
		},
	})
}

func NewFamilyHistoryService(repos *repositories.Repositories, audit AuditLogger) *FamilyHistoryService {
	return NewService[models.PatFamMedHist](repos.FamilyHistory, audit, Options[models.PatFamMedHist, *models.PatFamMedHist]{
		Validate: validators.ValidateFamilyHistory,
		Check: func(_ context.Context, actor models.Actor, h *models.PatFamMedHist, _ validators.Op) error {
			return canChart(actor, h.PatientID)
		},
		CanModify: func(actor models.Actor, h *models.PatFamMedHist) bool {
			return actor.ID == h.PatientID
		},
	})
}
