package models

import "time"

const (
	VerificationVerified   = "Verified"
	VerificationUnverified = "Unverified"
	VerificationDeclined   = "Declined"
)

var (
	VerificationStatuses = []string{VerificationVerified, VerificationUnverified, VerificationDeclined}
	VATStatuses          = []string{"VAT", "NON-VAT"}
	Weekdays             = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
)

// Specialization is a medical specialty doctors are registered under.
type Specialization struct {
	ID          uint    `gorm:"primaryKey;autoIncrement;column:specialty_id" json:"specialty_id" form:"-"`
	Name        string  `gorm:"column:specialty_name;size:255;not null" json:"specialty_name" form:"specialty_name"`
	Description *string `gorm:"column:specialty_desc;size:255" json:"specialty_desc" form:"specialty_desc"`
	Status      string  `gorm:"column:specialty_status;size:10;not null;default:Active;check:specialty_status IN ('Active', 'Inactive')" json:"specialty_status" form:"specialty_status"`
	Audit
}

func (Specialization) TableName() string {
	return "specializations"
}

func (s Specialization) PrimaryKey() any {
	return s.ID
}

func (s *Specialization) EnsureID() {}

func (Specialization) StatusColumn() string {
	return "specialty_status"
}

func (Specialization) StatusValues() []string {
	return Statuses
}

// Doctor extends a User of type Doctor with credentials awaiting verification.
type Doctor struct {
	UserID             string          `gorm:"primaryKey;column:user_id;type:uuid" json:"user_id" form:"user_id"`
	SpecialtyID        uint            `gorm:"column:specialty_id;not null;index" json:"specialty_id" form:"specialty_id"`
	SpecialtyCert      *string         `gorm:"column:specialty_cert;size:255;not null" json:"specialty_cert" form:"specialty_cert"`
	PRCNumber          int64           `gorm:"column:prcnumber;not null" json:"prcnumber" form:"prcnumber"`
	PRCImage           *string         `gorm:"column:prcimg;size:255;not null" json:"prcimg" form:"prcimg"`
	PTRNumber          int64           `gorm:"column:ptrnumber;not null" json:"ptrnumber" form:"ptrnumber"`
	PhilHealthIDNum    int64           `gorm:"column:philhealthidnum;not null" json:"philhealthidnum" form:"philhealthidnum"`
	PhilHealthIDImage  *string         `gorm:"column:philhealthidimg;size:255;not null" json:"philhealthidimg" form:"philhealthidimg"`
	ResumeCV           *string         `gorm:"column:resumecv;size:255;not null" json:"resumecv" form:"resumecv"`
	NBIClearDate       string          `gorm:"column:nbicleardate;size:10;not null" json:"nbicleardate" form:"nbicleardate"`
	NBIClearFile       *string         `gorm:"column:nbiclearfile;size:255;not null" json:"nbiclearfile" form:"nbiclearfile"`
	MembershipDate     string          `gorm:"column:membershipdate;size:10;not null" json:"membershipdate" form:"membershipdate"`
	MembershipCert     *string         `gorm:"column:membershipcert;size:255;not null" json:"membershipcert" form:"membershipcert"`
	VATStatus          string          `gorm:"column:vat_status;size:10;not null;default:NON-VAT;check:vat_status IN ('VAT', 'NON-VAT')" json:"vat_status" form:"vat_status"`
	TINNumber          int64           `gorm:"column:tinnum;not null" json:"tinnum" form:"tinnum"`
	CertOfRegBIR       *string         `gorm:"column:certofregbir;size:255;not null" json:"certofregbir" form:"certofregbir"`
	ReceiptDeclaration *string         `gorm:"column:receiptdeclaration;size:255;not null" json:"receiptdeclaration" form:"receiptdeclaration"`
	VerificationStatus string          `gorm:"column:verification_status;size:10;not null;default:Unverified;check:verification_status IN ('Verified', 'Unverified', 'Declined')" json:"verification_status" form:"-"`
	VerifiedBy         *string         `gorm:"column:verified_by;type:uuid" json:"verified_by" form:"-"`
	VerifiedAt         *time.Time      `gorm:"column:verified_at" json:"verified_at" form:"-"`
	User               *User           `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty" form:"-"`
	Specialization     *Specialization `gorm:"foreignKey:SpecialtyID;references:ID" json:"specialization,omitempty" form:"-"`
	Schedules          []Schedule      `gorm:"foreignKey:DoctorID;references:UserID" json:"schedules,omitempty" form:"-"`
	Consultations      []Consultation  `gorm:"foreignKey:DoctorID;references:UserID" json:"consultations,omitempty" form:"-"`
	Audit
}

func (Doctor) TableName() string {
	return "doctors"
}

func (d Doctor) PrimaryKey() any {
	return d.UserID
}

func (d *Doctor) EnsureID() {}

// DocumentFields lists the stored paths of every credential document.
func (d *Doctor) DocumentFields() []*string {
	return []*string{
		d.SpecialtyCert, d.PRCImage, d.PhilHealthIDImage, d.ResumeCV, d.NBIClearFile,
		d.MembershipCert, d.CertOfRegBIR, d.ReceiptDeclaration,
	}
}

// View returns a copy with every document path materialized as a public URL.
func (d Doctor) View(baseURL string) Doctor {
	d.SpecialtyCert = FileURL(baseURL, d.SpecialtyCert)
	d.PRCImage = FileURL(baseURL, d.PRCImage)
	d.PhilHealthIDImage = FileURL(baseURL, d.PhilHealthIDImage)
	d.ResumeCV = FileURL(baseURL, d.ResumeCV)
	d.NBIClearFile = FileURL(baseURL, d.NBIClearFile)
	d.MembershipCert = FileURL(baseURL, d.MembershipCert)
	d.CertOfRegBIR = FileURL(baseURL, d.CertOfRegBIR)
	d.ReceiptDeclaration = FileURL(baseURL, d.ReceiptDeclaration)
	if d.User != nil {
		u := *d.User
		u.Photo = FileURL(baseURL, u.Photo)
		d.User = &u
	}
	return d
}

// Schedule is a weekly availability slot of a doctor.
type Schedule struct {
	ID            uint    `gorm:"primaryKey;autoIncrement;column:sched_id" json:"sched_id" form:"-"`
	DoctorID      string  `gorm:"column:user_id;type:uuid;not null;index" json:"user_id" form:"user_id"`
	DayAvailable  string  `gorm:"column:day_available;size:10;not null" json:"day_available" form:"day_available"`
	TimeAvailable string  `gorm:"column:time_available;size:8;not null" json:"time_available" form:"time_available"`
	Status        string  `gorm:"column:sched_status;size:10;not null;default:Active;check:sched_status IN ('Active', 'Inactive')" json:"sched_status" form:"sched_status"`
	Doctor        *Doctor `gorm:"foreignKey:DoctorID;references:UserID" json:"doctor,omitempty" form:"-"`
	Audit
}

func (Schedule) TableName() string {
	return "schedules"
}

func (s Schedule) PrimaryKey() any {
	return s.ID
}

func (s *Schedule) EnsureID() {}

func (Schedule) StatusColumn() string {
	return "sched_status"
}

func (Schedule) StatusValues() []string {
	return Statuses
}
