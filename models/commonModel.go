package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

const (
	UserTypeAdmin   = "Admin"
	UserTypeDoctor  = "Doctor"
	UserTypePatient = "Patient"
)

var (
	Statuses  = []string{StatusActive, StatusInactive}
	UserTypes = []string{UserTypeAdmin, UserTypeDoctor, UserTypePatient}
)

// Record is implemented by every persisted entity (through a pointer).
type Record interface {
	TableName() string
	PrimaryKey() any
	EnsureID()
	Owner() string
	Stamp(actorID string, creating bool)
}

// RecordPtr constrains generic code to pointers of persisted entities.
type RecordPtr[T any] interface {
	*T
	Record
}

// StatusRecord is implemented by entities with a soft lifecycle column.
type StatusRecord interface {
	Record
	StatusColumn() string
	StatusValues() []string
}

// Actor is the authenticated user performing a request.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == UserTypeAdmin
}

// Audit holds the ownership and timestamp columns shared by every table.
type Audit struct {
	CreatedBy string    `gorm:"column:created_by;type:uuid;not null;index" json:"created_by" form:"-"`
	UpdatedBy *string   `gorm:"column:updated_by;type:uuid" json:"updated_by" form:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at" form:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at" form:"-"`
}

func (a *Audit) Owner() string {
	return a.CreatedBy
}

// Stamp records the acting user. Ownership is only assigned on create.
func (a *Audit) Stamp(actorID string, creating bool) {
	if creating {
		a.CreatedBy = actorID
		a.UpdatedBy = nil
		return
	}
	a.UpdatedBy = &actorID
}

func newUUID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
