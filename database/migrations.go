package database

import (
	"context"
	"fmt"
	"time"

	"RxClinic/models"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// SchemaMigration records an applied migration step.
type SchemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:100;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

// Migration is one ordered, named schema step.
type Migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

// MigrationStatus reports whether a step has been applied.
type MigrationStatus struct {
	Version   int
	Name      string
	AppliedAt *time.Time
}

func autoMigrate(dst ...interface{}) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		return tx.AutoMigrate(dst...)
	}
}

// Migrations returns every schema step in order.
func Migrations(graph *models.Graph) []Migration {
	return []Migration{
		{1, "create_users", autoMigrate(&models.User{})},
		{2, "create_specializations", autoMigrate(&models.Specialization{})},
		{3, "create_patients_and_doctors", autoMigrate(&models.Patient{}, &models.Doctor{})},
		{4, "create_schedules", autoMigrate(&models.Schedule{})},
		{5, "create_consultations", autoMigrate(&models.Consultation{}, &models.ConsultAttachment{})},
		{6, "create_patient_history", autoMigrate(&models.PatAllergy{}, &models.PatFamMedHist{})},
		{7, "create_payments", autoMigrate(&models.Payment{}, &models.PaymentDetail{})},
		{8, "add_foreign_keys", foreignKeys(graph)},
	}
}

// foreignKeys adds one constraint per graph edge. Only postgres gets them;
// other dialects rely on the resolver checks alone.
func foreignKeys(graph *models.Graph) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		if tx.Dialector.Name() != "postgres" {
			return nil
		}
		keys, err := PrimaryKeys(tx)
		if err != nil {
			return err
		}
		for _, e := range graph.Edges {
			name := fmt.Sprintf("fk_%s_%s_%s", e.Child, e.ForeignKey, e.Parent)
			sql := fmt.Sprintf(
				"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s",
				e.Child, name, e.ForeignKey, e.Parent, keys[e.Parent], e.OnDelete,
			)
			if err := tx.Exec(sql).Error; err != nil {
				return errors.Wrapf(err, "failed to add constraint %s", name)
			}
		}
		return nil
	}
}

// PrimaryKeys maps every table to its primary key column.
func PrimaryKeys(db *gorm.DB) (map[string]string, error) {
	keys := map[string]string{}
	for _, entity := range models.Entities() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(entity); err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", entity.TableName())
		}
		if stmt.Schema.PrioritizedPrimaryField == nil {
			return nil, errors.Errorf("table %s has no primary key", entity.TableName())
		}
		keys[entity.TableName()] = stmt.Schema.PrioritizedPrimaryField.DBName
	}
	return keys, nil
}

// Up applies every pending step, each in its own transaction.
func Up(ctx context.Context, db *gorm.DB, steps []Migration, log zerolog.Logger) (int, error) {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return 0, errors.Wrap(err, "failed to create schema_migrations")
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, step := range steps {
		if _, ok := applied[step.Version]; ok {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := step.Up(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{Version: step.Version, Name: step.Name, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return count, errors.Wrapf(err, "migration %03d_%s failed", step.Version, step.Name)
		}
		log.Info().Int("version", step.Version).Str("name", step.Name).Msg("migration applied")
		count++
	}
	return count, nil
}

// Status lists every step with its applied time, if any.
func Status(ctx context.Context, db *gorm.DB, steps []Migration) ([]MigrationStatus, error) {
	db = db.WithContext(ctx)
	applied := map[int]time.Time{}
	if db.Migrator().HasTable(&SchemaMigration{}) {
		var err error
		if applied, err = appliedVersions(db); err != nil {
			return nil, err
		}
	}

	out := make([]MigrationStatus, 0, len(steps))
	for _, step := range steps {
		s := MigrationStatus{Version: step.Version, Name: step.Name}
		if at, ok := applied[step.Version]; ok {
			at := at
			s.AppliedAt = &at
		}
		out = append(out, s)
	}
	return out, nil
}

func appliedVersions(db *gorm.DB) (map[int]time.Time, error) {
	var rows []SchemaMigration
	if err := db.Order("version").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to read schema_migrations")
	}
	applied := make(map[int]time.Time, len(rows))
	for _, r := range rows {
		applied[r.Version] = r.AppliedAt
	}
	return applied, nil
}
