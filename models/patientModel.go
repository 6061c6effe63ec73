package models

var (
	Sexes         = []string{"Male", "Female"}
	CivilStatuses = []string{"Single", "Married", "Widowed", "Separated", "Divorced"}
	BloodTypes    = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
)

// Patient extends a User of type Patient and shares its primary key.
type Patient struct {
	UserID        string          `gorm:"primaryKey;column:user_id;type:uuid" json:"user_id" form:"user_id"`
	Sex           *string         `gorm:"column:sex;size:10" json:"sex" form:"sex"`
	CivilStatus   *string         `gorm:"column:civil_status;size:20" json:"civil_status" form:"civil_status"`
	WeightLbs     *float64        `gorm:"column:weight_lbs" json:"weight_lbs" form:"weight_lbs"`
	HeightFt      *int            `gorm:"column:height_ft" json:"height_ft" form:"height_ft"`
	HeightIn      *int            `gorm:"column:height_in" json:"height_in" form:"height_in"`
	BMINum        *float64        `gorm:"column:bmi_num" json:"bmi_num" form:"bmi_num"`
	BMIStatus     *string         `gorm:"column:bmi_status;size:20" json:"bmi_status" form:"bmi_status"`
	TempCel       *float64        `gorm:"column:temp_cel" json:"temp_cel" form:"temp_cel"`
	BPSystolic    *int            `gorm:"column:bp_systolic" json:"bp_systolic" form:"bp_systolic"`
	BPDiastolic   *int            `gorm:"column:bp_diastolic" json:"bp_diastolic" form:"bp_diastolic"`
	BloodType     *string         `gorm:"column:bloodtype;size:3" json:"bloodtype" form:"bloodtype"`
	MensPeriod    *string         `gorm:"column:mens_period;size:255" json:"mens_period" form:"mens_period"`
	Status        string          `gorm:"column:user_status;size:10;not null;default:Active;check:user_status IN ('Active', 'Inactive')" json:"user_status" form:"user_status"`
	User          *User           `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty" form:"-"`
	Allergies     []PatAllergy    `gorm:"foreignKey:PatientID;references:UserID" json:"allergies,omitempty" form:"-"`
	FamilyHistory []PatFamMedHist `gorm:"foreignKey:PatientID;references:UserID" json:"family_history,omitempty" form:"-"`
	Consultations []Consultation  `gorm:"foreignKey:CreatedBy;references:UserID" json:"consultations,omitempty" form:"-"`
	Audit
}

func (Patient) TableName() string {
	return "patients"
}

func (p Patient) PrimaryKey() any {
	return p.UserID
}

// EnsureID is a no-op: the key is the owning user's id.
func (p *Patient) EnsureID() {}

func (Patient) StatusColumn() string {
	return "user_status"
}

func (Patient) StatusValues() []string {
	return Statuses
}

// View materializes file URLs of the linked user and consultations.
func (p Patient) View(baseURL string) Patient {
	if p.User != nil {
		u := *p.User
		u.Photo = FileURL(baseURL, u.Photo)
		p.User = &u
	}
	if len(p.Consultations) > 0 {
		consultations := make([]Consultation, len(p.Consultations))
		for i, c := range p.Consultations {
			consultations[i] = c.View(baseURL)
		}
		p.Consultations = consultations
	}
	return p
}

// PatAllergy is a single allergy recorded for a patient.
type PatAllergy struct {
	ID        uint   `gorm:"primaryKey;autoIncrement;column:allergy_id" json:"allergy_id" form:"-"`
	PatientID string `gorm:"column:user_id;type:uuid;not null;index" json:"user_id" form:"user_id"`
	Name      string `gorm:"column:allergy_name;size:50;not null" json:"allergy_name" form:"allergy_name"`
	Status    string `gorm:"column:allergy_status;size:10;not null;default:Active;check:allergy_status IN ('Active', 'Inactive')" json:"allergy_status" form:"allergy_status"`
	Audit
}

func (PatAllergy) TableName() string {
	return "pat_allergies"
}

func (a PatAllergy) PrimaryKey() any {
	return a.ID
}

func (a *PatAllergy) EnsureID() {}

func (PatAllergy) StatusColumn() string {
	return "allergy_status"
}

func (PatAllergy) StatusValues() []string {
	return Statuses
}

// PatFamMedHist is a family medical history entry for a patient.
type PatFamMedHist struct {
	ID        string `gorm:"primaryKey;column:medhis_id;type:uuid" json:"medhis_id" form:"-"`
	PatientID string `gorm:"column:user_id;type:uuid;not null;index" json:"user_id" form:"user_id"`
	Name      string `gorm:"column:medhis_name;size:255;not null" json:"medhis_name" form:"medhis_name"`
	Status    string `gorm:"column:medhis_status;size:10;not null;default:Active;check:medhis_status IN ('Active', 'Inactive')" json:"medhis_status" form:"medhis_status"`
	Audit
}

func (PatFamMedHist) TableName() string {
	return "pat_fam_med_hist"
}

func (h PatFamMedHist) PrimaryKey() any {
	return h.ID
}

func (h *PatFamMedHist) EnsureID() {
	newUUID(&h.ID)
}

func (PatFamMedHist) StatusColumn() string {
	return "medhis_status"
}

func (PatFamMedHist) StatusValues() []string {
	return Statuses
}
