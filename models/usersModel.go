package models

import (
	"strings"
	"time"
	"unicode"
)

// User is the root identity for admins, doctors and patients.
type User struct {
	ID            string  `gorm:"primaryKey;column:user_id;type:uuid" json:"user_id" form:"-"`
	UserType      string  `gorm:"column:user_type;size:20;not null;check:user_type IN ('Admin', 'Doctor', 'Patient')" json:"user_type" form:"user_type"`
	Email         string  `gorm:"column:email;size:255;not null;uniqueIndex" json:"email" form:"email"`
	Password      string  `gorm:"column:password;size:255;not null" json:"-" form:"-"`
	FirstName     string  `gorm:"column:fname;size:255;not null" json:"fname" form:"fname"`
	MiddleName    *string `gorm:"column:mname;size:255" json:"mname" form:"mname"`
	LastName      string  `gorm:"column:lname;size:255;not null;index" json:"lname" form:"lname"`
	DateOfBirth   string  `gorm:"column:dob;size:10;not null" json:"dob" form:"dob"`
	ContactNumber string  `gorm:"column:cellnum;size:255;not null" json:"cellnum" form:"cellnum"`
	Address       string  `gorm:"column:address;size:255;not null" json:"address" form:"address"`
	Photo         *string `gorm:"column:photo;size:255" json:"photo" form:"photo"`
	Status        string  `gorm:"column:user_status;size:10;not null;default:Active;check:user_status IN ('Active', 'Inactive')" json:"user_status" form:"user_status"`
	VerifiedBy    *string `gorm:"column:verified_by;type:uuid" json:"verified_by" form:"verified_by"`
	Audit
}

func (User) TableName() string {
	return "users"
}

func (u User) PrimaryKey() any {
	return u.ID
}

func (u *User) EnsureID() {
	newUUID(&u.ID)
}

func (User) StatusColumn() string {
	return "user_status"
}

func (User) StatusValues() []string {
	return Statuses
}

// UserView is the outward representation of a user. It never carries the password.
type UserView struct {
	ID            string    `json:"user_id"`
	UserType      string    `json:"user_type"`
	Email         string    `json:"email"`
	FirstName     string    `json:"fname"`
	MiddleName    *string   `json:"mname"`
	LastName      string    `json:"lname"`
	FullName      string    `json:"full_name"`
	DateOfBirth   string    `json:"dob"`
	ContactNumber string    `json:"cellnum"`
	Address       string    `json:"address"`
	Photo         *string   `json:"photo"`
	Status        string    `json:"user_status"`
	VerifiedBy    *string   `json:"verified_by"`
	CreatedBy     string    `json:"created_by"`
	UpdatedBy     *string   `json:"updated_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (u User) View(baseURL string) UserView {
	return UserView{
		ID:            u.ID,
		UserType:      u.UserType,
		Email:         u.Email,
		FirstName:     u.FirstName,
		MiddleName:    u.MiddleName,
		LastName:      u.LastName,
		FullName:      u.FullName(),
		DateOfBirth:   u.DateOfBirth,
		ContactNumber: u.ContactNumber,
		Address:       u.Address,
		Photo:         FileURL(baseURL, u.Photo),
		Status:        u.Status,
		VerifiedBy:    u.VerifiedBy,
		CreatedBy:     u.CreatedBy,
		UpdatedBy:     u.UpdatedBy,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (u User) FullName() string {
	middle := ""
	if u.MiddleName != nil {
		middle = *u.MiddleName
	}
	return FullName(u.FirstName, middle, u.LastName)
}

// FullName joins name parts, abbreviating the middle name to its uppercased initial.
func FullName(first, middle, last string) string {
	parts := make([]string, 0, 3)
	if first = strings.TrimSpace(first); first != "" {
		parts = append(parts, first)
	}
	for _, r := range strings.TrimSpace(middle) {
		parts = append(parts, string(unicode.ToUpper(r))+".")
		break
	}
	if last = strings.TrimSpace(last); last != "" {
		parts = append(parts, last)
	}
	return strings.Join(parts, " ")
}
