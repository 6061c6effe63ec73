package services

import (
	"context"
	"fmt"

	"RxClinic/apperrors"
	"RxClinic/models"
	"RxClinic/repositories"
	"RxClinic/validators"
)

// Repository is the data access a Service needs for one table.
type Repository[T any, P models.RecordPtr[T]] interface {
	Table() string
	KeyColumn() string
	Create(ctx context.Context, rec P) error
	Get(ctx context.Context, id string, includes []string) (P, error)
	List(ctx context.Context, includes []string, scopes ...repositories.Scope) ([]T, error)
	Update(ctx context.Context, rec P) error
	SetStatus(ctx context.Context, id, column, status, actorID string) error
	Delete(ctx context.Context, id string) error
}

// Options customise a Service for one entity.
type Options[T any, P models.RecordPtr[T]] struct {
	Validate func(rec P, op validators.Op) error
	// Prepare derives fields before validation.
	Prepare func(ctx context.Context, actor models.Actor, rec P, op validators.Op) error
	// Check enforces cross-entity rules on a valid record.
	Check func(ctx context.Context, actor models.Actor, rec P, op validators.Op) error
	// CanModify grants write access beyond the owner and admins.
	CanModify func(actor models.Actor, rec P) bool
}

// Service runs the write pipeline of one entity: defaults, derivation,
// ownership stamping, validation, reference checks and persistence.
type Service[T any, P models.RecordPtr[T]] struct {
	repo  Repository[T, P]
	opts  Options[T, P]
	audit AuditLogger
}

func NewService[T any, P models.RecordPtr[T]](repo Repository[T, P], audit AuditLogger, opts Options[T, P]) *Service[T, P] {
	if audit == nil {
		audit = nopAudit{}
	}
	return &Service[T, P]{repo: repo, opts: opts, audit: audit}
}

func (s *Service[T, P]) Table() string {
	return s.repo.Table()
}

// Create inserts rec on behalf of actor, who becomes its owner.
func (s *Service[T, P]) Create(ctx context.Context, actor models.Actor, rec P) (P, error) {
	if d, ok := any(rec).(models.Defaulter); ok {
		d.ApplyDefaults()
	}
	rec.Stamp(actor.ID, true)
	if s.opts.Prepare != nil {
		if err := s.opts.Prepare(ctx, actor, rec, validators.OpCreate); err != nil {
			return nil, err
		}
	}
	if err := s.opts.Validate(rec, validators.OpCreate); err != nil {
		return nil, err
	}
	if s.opts.Check != nil {
		if err := s.opts.Check(ctx, actor, rec, validators.OpCreate); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.audit.RecordCreated(s.repo.Table(), rec.PrimaryKey())
	return rec, nil
}

func (s *Service[T, P]) Get(ctx context.Context, id string, includes []string) (P, error) {
	return s.repo.Get(ctx, id, includes)
}

func (s *Service[T, P]) List(ctx context.Context, includes []string, scopes ...repositories.Scope) ([]T, error) {
	return s.repo.List(ctx, includes, scopes...)
}

// Update loads the stored row, lets apply merge the request onto it and
// saves the result after a full revalidation.
func (s *Service[T, P]) Update(ctx context.Context, actor models.Actor, id string, apply func(P) error) (P, error) {
	rec, err := s.repo.Get(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, rec); err != nil {
		return nil, err
	}

	key := fmt.Sprint(rec.PrimaryKey())
	owner := rec.Owner()
	if err := apply(rec); err != nil {
		return nil, err
	}
	if fmt.Sprint(rec.PrimaryKey()) != key {
		return nil, apperrors.NewValidationError(map[string]string{s.repo.KeyColumn(): "cannot be changed"})
	}
	rec.Stamp(owner, true)
	rec.Stamp(actor.ID, false)

	if s.opts.Prepare != nil {
		if err := s.opts.Prepare(ctx, actor, rec, validators.OpUpdate); err != nil {
			return nil, err
		}
	}
	if err := s.opts.Validate(rec, validators.OpUpdate); err != nil {
		return nil, err
	}
	if s.opts.Check != nil {
		if err := s.opts.Check(ctx, actor, rec, validators.OpUpdate); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	// Protected columns are not written, so the stored row is returned.
	return s.repo.Get(ctx, key, nil)
}

// SetStatus flips the lifecycle status of one row.
func (s *Service[T, P]) SetStatus(ctx context.Context, actor models.Actor, id, status string) (P, error) {
	rec, err := s.repo.Get(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	sr, ok := any(rec).(models.StatusRecord)
	if !ok {
		return nil, &apperrors.ForbiddenError{Reason: s.repo.Table() + " has no status"}
	}
	if err := s.authorize(actor, rec); err != nil {
		return nil, err
	}
	if err := validators.ValidateStatus(sr.StatusColumn(), status, sr.StatusValues()); err != nil {
		return nil, err
	}
	if err := s.repo.SetStatus(ctx, id, sr.StatusColumn(), status, actor.ID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id, nil)
}

// Delete removes one row under the referential policy.
func (s *Service[T, P]) Delete(ctx context.Context, actor models.Actor, id string) error {
	rec, err := s.repo.Get(ctx, id, nil)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, rec); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service[T, P]) authorize(actor models.Actor, rec P) error {
	if actor.IsAdmin() || rec.Owner() == actor.ID {
		return nil
	}
	if s.opts.CanModify != nil && s.opts.CanModify(actor, rec) {
		return nil
	}
	return &apperrors.ForbiddenError{Reason: fmt.Sprintf("%s %v is owned by another user", s.repo.Table(), rec.PrimaryKey())}
}
