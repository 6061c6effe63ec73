package models

// Defaulter fills unset columns with their declared defaults before validation.
type Defaulter interface {
	ApplyDefaults()
}

func orDefault(value *string, def string) {
	if *value == "" {
		*value = def
	}
}

func (u *User) ApplyDefaults() {
	orDefault(&u.Status, StatusActive)
}

func (p *Patient) ApplyDefaults() {
	orDefault(&p.Status, StatusActive)
}

func (a *PatAllergy) ApplyDefaults() {
	orDefault(&a.Status, StatusActive)
}

func (h *PatFamMedHist) ApplyDefaults() {
	orDefault(&h.Status, StatusActive)
}

func (s *Specialization) ApplyDefaults() {
	orDefault(&s.Status, StatusActive)
}

func (d *Doctor) ApplyDefaults() {
	orDefault(&d.VATStatus, "NON-VAT")
	orDefault(&d.VerificationStatus, VerificationUnverified)
}

func (s *Schedule) ApplyDefaults() {
	orDefault(&s.Status, StatusActive)
}

func (c *Consultation) ApplyDefaults() {
	orDefault(&c.ConsultType, "In Person")
	orDefault(&c.DocType, "Consultant")
}

func (a *ConsultAttachment) ApplyDefaults() {
	orDefault(&a.Status, StatusActive)
}

func (p *Payment) ApplyDefaults() {
	orDefault(&p.Status, PaymentPending)
	for i := range p.Details {
		orDefault(&p.Details[i].Status, StatusActive)
	}
}
