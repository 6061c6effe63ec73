package validators

import (
	"errors"
	"fmt"

	"RxClinic/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

func auditFields(op Op, a *models.Audit) []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&a.CreatedBy, uuidRef(op)...),
		validation.Field(&a.UpdatedBy, validation.When(op == OpUpdate, validation.Required), is.UUIDv4),
	}
}

func fields(op Op, a *models.Audit, rules ...*validation.FieldRules) []*validation.FieldRules {
	return append(rules, auditFields(op, a)...)
}

// ValidateUser checks a user record. The plaintext password is only checked on create.
func ValidateUser(u *models.User, password string, op Op) error {
	err := validation.ValidateStruct(u, fields(op, &u.Audit,
		validation.Field(&u.ID, is.UUIDv4),
		validation.Field(&u.UserType, required(op), in(models.UserTypes)),
		validation.Field(&u.Email, required(op), is.EmailFormat, text()),
		validation.Field(&u.FirstName, required(op), text()),
		validation.Field(&u.MiddleName, text()),
		validation.Field(&u.LastName, required(op), text()),
		validation.Field(&u.DateOfBirth, required(op), date()),
		validation.Field(&u.ContactNumber, required(op), text()),
		validation.Field(&u.Address, required(op), text()),
		validation.Field(&u.Photo, text()),
		validation.Field(&u.Status, required(op), in(models.Statuses)),
		validation.Field(&u.VerifiedBy, is.UUIDv4),
	)...)

	extra := map[string]string{}
	if op == OpCreate {
		if perr := ValidatePassword(password); perr != nil {
			extra["password"] = perr.Error()
		}
	}
	return toValidationError(err, extra)
}

// ValidatePassword checks a plaintext password before hashing.
func ValidatePassword(password string) error {
	return validation.Validate(password, validation.Required, validation.RuneLength(minPassword, maxPassword))
}

func ValidatePatient(p *models.Patient, op Op) error {
	err := validation.ValidateStruct(p, fields(op, &p.Audit,
		validation.Field(&p.UserID, uuidRef(op)...),
		validation.Field(&p.Sex, in(models.Sexes)),
		validation.Field(&p.CivilStatus, in(models.CivilStatuses)),
		validation.Field(&p.WeightLbs, validation.Min(0.0).Exclusive()),
		validation.Field(&p.HeightFt, validation.Min(0)),
		validation.Field(&p.HeightIn, validation.Min(0), validation.Max(11)),
		validation.Field(&p.BMINum, validation.Min(0.0)),
		validation.Field(&p.BMIStatus, text()),
		validation.Field(&p.TempCel, validation.Min(0.0)),
		validation.Field(&p.BPSystolic, validation.Min(1)),
		validation.Field(&p.BPDiastolic, validation.Min(1)),
		validation.Field(&p.BloodType, in(models.BloodTypes)),
		validation.Field(&p.MensPeriod, text()),
		validation.Field(&p.Status, required(op), in(models.Statuses)),
	)...)
	return toValidationError(err, nil)
}

func ValidateDoctor(d *models.Doctor, op Op) error {
	err := validation.ValidateStruct(d, fields(op, &d.Audit,
		validation.Field(&d.UserID, uuidRef(op)...),
		validation.Field(&d.SpecialtyID, required(op)),
		validation.Field(&d.SpecialtyCert, required(op), text()),
		validation.Field(&d.PRCNumber, required(op), validation.Min(1)),
		validation.Field(&d.PRCImage, required(op), text()),
		validation.Field(&d.PTRNumber, required(op), validation.Min(1)),
		validation.Field(&d.PhilHealthIDNum, required(op), validation.Min(1)),
		validation.Field(&d.PhilHealthIDImage, required(op), text()),
		validation.Field(&d.ResumeCV, required(op), text()),
		validation.Field(&d.NBIClearDate, required(op), date()),
		validation.Field(&d.NBIClearFile, required(op), text()),
		validation.Field(&d.MembershipDate, required(op), date()),
		validation.Field(&d.MembershipCert, required(op), text()),
		validation.Field(&d.VATStatus, required(op), in(models.VATStatuses)),
		validation.Field(&d.TINNumber, required(op), validation.Min(1)),
		validation.Field(&d.CertOfRegBIR, required(op), text()),
		validation.Field(&d.ReceiptDeclaration, required(op), text()),
		validation.Field(&d.VerificationStatus, required(op), in(models.VerificationStatuses)),
		validation.Field(&d.VerifiedBy, is.UUIDv4),
	)...)
	return toValidationError(err, nil)
}

func ValidateSpecialization(s *models.Specialization, op Op) error {
	err := validation.ValidateStruct(s, fields(op, &s.Audit,
		validation.Field(&s.Name, required(op), text()),
		validation.Field(&s.Description, text()),
		validation.Field(&s.Status, required(op), in(models.Statuses)),
	)...)
	return toValidationError(err, nil)
}

func ValidateSchedule(s *models.Schedule, op Op) error {
	err := validation.ValidateStruct(s, fields(op, &s.Audit,
		validation.Field(&s.DoctorID, uuidRef(op)...),
		validation.Field(&s.DayAvailable, required(op), in(models.Weekdays)),
		validation.Field(&s.TimeAvailable, required(op), clockTime),
		validation.Field(&s.Status, required(op), in(models.Statuses)),
	)...)
	return toValidationError(err, nil)
}

func ValidateConsultation(c *models.Consultation, op Op) error {
	err := validation.ValidateStruct(c, fields(op, &c.Audit,
		validation.Field(&c.ID, is.UUIDv4),
		validation.Field(&c.ConsultType, required(op), in(models.ConsultTypes)),
		validation.Field(&c.ConsultDate, required(op), date()),
		validation.Field(&c.ConsultTime, required(op), clockTime),
		validation.Field(&c.DocType, required(op), in(models.ConsultDocTypes)),
		validation.Field(&c.PatientRemarks, text()),
		validation.Field(&c.DoctorDiagnosis, text()),
		validation.Field(&c.DoctorRecommendations, text()),
		validation.Field(&c.DoctorID, is.UUIDv4),
	)...)
	return toValidationError(err, nil)
}

func ValidateAttachment(a *models.ConsultAttachment, op Op) error {
	err := validation.ValidateStruct(a, fields(op, &a.Audit,
		validation.Field(&a.ID, is.UUIDv4),
		validation.Field(&a.ConsultID, uuidRef(op)...),
		validation.Field(&a.AttachType, required(op), in(models.AttachTypes)),
		validation.Field(&a.File, required(op), text()),
		validation.Field(&a.Status, required(op), in(models.Statuses)),
	)...)
	return toValidationError(err, nil)
}

func ValidateAllergy(a *models.PatAllergy, op Op) error {
	err := validation.ValidateStruct(a, fields(op, &a.Audit,
		validation.Field(&a.PatientID, uuidRef(op)...),
		validation.Field(&a.Name, required(op), validation.RuneLength(1, maxAllergy)),
		validation.Field(&a.Status, required(op), in(models.Statuses)),
	)...)
	return toValidationError(err, nil)
}

func ValidateFamilyHistory(h *models.PatFamMedHist, op Op) error {
	err := validation.ValidateStruct(h, fields(op, &h.Audit,
		validation.Field(&h.ID, is.UUIDv4),
		validation.Field(&h.PatientID, uuidRef(op)...),
		validation.Field(&h.Name, required(op), text()),
		validation.Field(&h.Status, required(op), in(models.Statuses)),
	)...)
	return toValidationError(err, nil)
}

// ValidatePayment checks the payment, each of its details, and that the payment
// amount equals the sum of its active detail amounts.
func ValidatePayment(p *models.Payment, op Op) error {
	err := validation.ValidateStruct(p, fields(op, &p.Audit,
		validation.Field(&p.PaidAt, required(op)),
		validation.Field(&p.Amount, money),
		validation.Field(&p.Status, required(op), in(models.PaymentStatuses)),
		validation.Field(&p.ConsultID, uuidRef(op)...),
	)...)

	extra := map[string]string{}
	for i := range p.Details {
		d := &p.Details[i]
		derr := validation.ValidateStruct(d,
			validation.Field(&d.Description, text()),
			validation.Field(&d.Amount, money),
			validation.Field(&d.Status, required(op), in(models.Statuses)),
		)
		if derr == nil {
			continue
		}
		var errs validation.Errors
		if !errors.As(derr, &errs) {
			return derr
		}
		collect(extra, fmt.Sprintf("details[%d].", i), errs)
	}
	if !p.Amount.Valid {
		extra["pay_amount"] = "cannot be blank"
	} else if total := p.DetailTotal(); !p.Amount.Decimal.Equal(total) {
		extra["pay_amount"] = fmt.Sprintf("must equal the sum of active payment details (%s)", total.StringFixed(2))
	}
	return toValidationError(err, extra)
}
