package models

var (
	ConsultTypes    = []string{"Online", "In Person"}
	ConsultDocTypes = []string{"Consultant", "Referral"}
	AttachTypes     = []string{"Lab Results", "Med Cert"}
)

// Consultation is booked by a patient (created_by) with an optional attending doctor.
type Consultation struct {
	ID                    string              `gorm:"primaryKey;column:consult_id;type:uuid" json:"consult_id" form:"-"`
	ConsultType           string              `gorm:"column:consult_type;size:10;not null;default:In Person;check:consult_type IN ('Online', 'In Person')" json:"consult_type" form:"consult_type"`
	ConsultDate           string              `gorm:"column:consult_date;size:10;not null" json:"consult_date" form:"consult_date"`
	ConsultTime           string              `gorm:"column:consult_time;size:8;not null" json:"consult_time" form:"consult_time"`
	DocType               string              `gorm:"column:consult_doctype;size:10;not null;default:Consultant;check:consult_doctype IN ('Consultant', 'Referral')" json:"consult_doctype" form:"consult_doctype"`
	PatientRemarks        *string             `gorm:"column:pat_remarks;size:255" json:"pat_remarks" form:"pat_remarks"`
	DoctorDiagnosis       *string             `gorm:"column:doc_diagnosis;size:255" json:"doc_diagnosis" form:"doc_diagnosis"`
	DoctorRecommendations *string             `gorm:"column:doc_recoms;size:255" json:"doc_recoms" form:"doc_recoms"`
	DoctorID              *string             `gorm:"column:doc_user_id;type:uuid;index" json:"doc_user_id" form:"doc_user_id"`
	Doctor                *Doctor             `gorm:"foreignKey:DoctorID;references:UserID" json:"doctor,omitempty" form:"-"`
	Patient               *Patient            `gorm:"foreignKey:CreatedBy;references:UserID" json:"patient,omitempty" form:"-"`
	Attachments           []ConsultAttachment `gorm:"foreignKey:ConsultID;references:ID" json:"attachments,omitempty" form:"-"`
	Payment               *Payment            `gorm:"foreignKey:ConsultID;references:ID" json:"payment,omitempty" form:"-"`
	Audit
}

func (Consultation) TableName() string {
	return "consultations"
}

func (c Consultation) PrimaryKey() any {
	return c.ID
}

func (c *Consultation) EnsureID() {
	newUUID(&c.ID)
}

// ConsultAttachment is a file (lab result, medical certificate) attached to a consultation.
type ConsultAttachment struct {
	ID         string  `gorm:"primaryKey;column:attach_id;type:uuid" json:"attach_id" form:"-"`
	ConsultID  string  `gorm:"column:consult_id;type:uuid;not null;index" json:"consult_id" form:"consult_id"`
	AttachType string  `gorm:"column:attach_type;size:20;not null;check:attach_type IN ('Lab Results', 'Med Cert')" json:"attach_type" form:"attach_type"`
	File       *string `gorm:"column:attach_file;size:255;not null" json:"attach_file" form:"attach_file"`
	Status     string  `gorm:"column:attach_status;size:10;not null;default:Active;check:attach_status IN ('Active', 'Inactive')" json:"attach_status" form:"attach_status"`
	Audit
}

func (ConsultAttachment) TableName() string {
	return "consult_attachments"
}

func (a ConsultAttachment) PrimaryKey() any {
	return a.ID
}

func (a *ConsultAttachment) EnsureID() {
	newUUID(&a.ID)
}

func (ConsultAttachment) StatusColumn() string {
	return "attach_status"
}

func (ConsultAttachment) StatusValues() []string {
	return Statuses
}

func (a ConsultAttachment) View(baseURL string) ConsultAttachment {
	a.File = FileURL(baseURL, a.File)
	return a
}

// View materializes attachment URLs of a consultation.
func (c Consultation) View(baseURL string) Consultation {
	if len(c.Attachments) > 0 {
		attachments := make([]ConsultAttachment, len(c.Attachments))
		for i, a := range c.Attachments {
			attachments[i] = a.View(baseURL)
		}
		c.Attachments = attachments
	}
	if c.Doctor != nil {
		d := c.Doctor.View(baseURL)
		c.Doctor = &d
	}
	if c.Patient != nil && c.Patient.User != nil {
		p := *c.Patient
		u := *p.User
		u.Photo = FileURL(baseURL, u.Photo)
		p.User = &u
		c.Patient = &p
	}
	return c
}
