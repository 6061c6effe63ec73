package repositories

import (
	"context"
	"database/sql/driver"
	"fmt"
	"net"
	"time"

	"RxClinic/apperrors"
	"RxClinic/cache"
	"RxClinic/models"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	queryTimeout      = 5 * time.Second
	EntityCacheExpiry = time.Hour
)

// uniqueFields names the column reported when a unique index rejects a write.
var uniqueFields = map[string]string{
	"users":    "email",
	"payments": "consult_id",
}

// classify maps store errors onto the application error taxonomy.
func classify(err error, table string) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &apperrors.NotFoundError{Entity: table}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		field, ok := uniqueFields[table]
		if !ok {
			field = "id"
		}
		return &apperrors.UniquenessError{Field: field}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &apperrors.ReferentialIntegrityError{Table: table, Reason: "foreign key constraint violated"}
	case errors.Is(err, driver.ErrBadConn), errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded):
		return &apperrors.ConnectionError{Err: err}
	}
	return errors.Wrapf(err, "query on %s failed", table)
}

// Store implements the CRUD surface of one table on top of the resolver.
// Single-row reads go through the cache and every write invalidates it.
type Store[T any, P models.RecordPtr[T]] struct {
	db        *gorm.DB
	resolver  *Resolver
	cache     *cache.Cache
	log       zerolog.Logger
	table     string
	// protected columns are never written by Update.
	protected []string
}

func NewStore[T any, P models.RecordPtr[T]](db *gorm.DB, resolver *Resolver, c *cache.Cache, log zerolog.Logger) *Store[T, P] {
	var zero T
	table := P(&zero).TableName()
	return &Store[T, P]{
		db:        db,
		resolver:  resolver,
		cache:     c,
		log:       log.With().Str("table", table).Logger(),
		table:     table,
		// Ownership never changes after insert.
		protected: []string{"created_by", "created_at"},
	}
}

// Protect excludes columns from Update. They change only through dedicated queries.
func (s *Store[T, P]) Protect(columns ...string) *Store[T, P] {
	s.protected = append(s.protected, columns...)
	return s
}

func (s *Store[T, P]) Table() string {
	return s.table
}

// KeyColumn returns the primary key column of the table.
func (s *Store[T, P]) KeyColumn() string {
	return s.resolver.PrimaryKey(s.table)
}

func (s *Store[T, P]) cacheKey(id any) string {
	return fmt.Sprintf("%s:%v", s.table, id)
}

func (s *Store[T, P]) invalidate(ctx context.Context, id any) {
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		s.log.Warn().Err(err).Msg("failed to delete cache entry")
	}
}

// Create inserts rec after checking its references.
func (s *Store[T, P]) Create(ctx context.Context, rec P) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.CreateTx(ctx, tx, rec)
	})
}

// CreateTx inserts rec inside an open transaction.
func (s *Store[T, P]) CreateTx(ctx context.Context, tx *gorm.DB, rec P) error {
	rec.EnsureID()
	if err := s.resolver.CheckReferences(ctx, tx, rec); err != nil {
		return err
	}
	if err := tx.Omit(clause.Associations).Create(rec).Error; err != nil {
		return classify(err, s.table)
	}
	return nil
}

// Get loads one row by its path id, preloading includes.
func (s *Store[T, P]) Get(ctx context.Context, rawID string, includes []string) (P, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id, err := s.resolver.ParseID(s.table, rawID)
	if err != nil {
		return nil, err
	}

	cacheable := len(includes) == 0
	if cacheable {
		var cached T
		found, err := s.cache.GetJSON(ctx, s.cacheKey(id), &cached)
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to get record from cache")
		} else if found {
			return &cached, nil
		}
	}

	q, err := s.resolver.Preload(s.db.WithContext(ctx), s.table, includes)
	if err != nil {
		return nil, err
	}
	var rec T
	if err := q.Where(s.resolver.PrimaryKey(s.table)+" = ?", id).First(&rec).Error; err != nil {
		err = classify(err, s.table)
		if nf, ok := err.(*apperrors.NotFoundError); ok {
			nf.ID = rawID
		}
		return nil, err
	}

	if cacheable {
		if err := s.cache.SetJSON(ctx, s.cacheKey(id), &rec, EntityCacheExpiry); err != nil {
			s.log.Warn().Err(err).Msg("failed to set record in cache")
		}
	}
	return &rec, nil
}

// Scope narrows a list query.
type Scope func(*gorm.DB) *gorm.DB

// Where returns a scope filtering column by value.
func Where(column string, value any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", value)
	}
}

// List returns every row matching scopes, newest first.
func (s *Store[T, P]) List(ctx context.Context, includes []string, scopes ...Scope) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	q, err := s.resolver.Preload(s.db.WithContext(ctx), s.table, includes)
	if err != nil {
		return nil, err
	}
	for _, scope := range scopes {
		q = scope(q)
	}

	rows := []T{}
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, classify(err, s.table)
	}
	return rows, nil
}

// Update saves every column of rec. The row must already exist.
func (s *Store[T, P]) Update(ctx context.Context, rec P) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.UpdateTx(ctx, tx, rec)
	})
	if err == nil {
		s.invalidate(ctx, rec.PrimaryKey())
	}
	return err
}

// UpdateTx saves rec inside an open transaction.
func (s *Store[T, P]) UpdateTx(ctx context.Context, tx *gorm.DB, rec P) error {
	pk := s.resolver.PrimaryKey(s.table)
	var count int64
	if err := tx.Table(s.table).Where(pk+" = ?", rec.PrimaryKey()).Count(&count).Error; err != nil {
		return classify(err, s.table)
	}
	if count == 0 {
		return &apperrors.NotFoundError{Entity: s.table, ID: fmt.Sprint(rec.PrimaryKey())}
	}
	if err := s.resolver.CheckReferences(ctx, tx, rec); err != nil {
		return err
	}
	omit := append([]string{clause.Associations}, s.protected...)
	if err := tx.Omit(omit...).Save(rec).Error; err != nil {
		return classify(err, s.table)
	}
	return nil
}

// SetStatus flips the lifecycle column of one row.
func (s *Store[T, P]) SetStatus(ctx context.Context, rawID, column, status, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id, err := s.resolver.ParseID(s.table, rawID)
	if err != nil {
		return err
	}
	var zero T
	res := s.db.WithContext(ctx).Model(P(&zero)).
		Where(s.resolver.PrimaryKey(s.table)+" = ?", id).
		Updates(map[string]interface{}{column: status, "updated_by": actorID})
	if res.Error != nil {
		return classify(res.Error, s.table)
	}
	if res.RowsAffected == 0 {
		return &apperrors.NotFoundError{Entity: s.table, ID: rawID}
	}
	s.invalidate(ctx, id)
	return nil
}

// Delete physically removes one row under the referential policy of the graph.
func (s *Store[T, P]) Delete(ctx context.Context, rawID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id, err := s.resolver.ParseID(s.table, rawID)
	if err != nil {
		return err
	}
	if err := s.resolver.Delete(ctx, s.db, s.table, id); err != nil {
		if nf, ok := err.(*apperrors.NotFoundError); ok && nf.Entity == s.table {
			nf.ID = rawID
		}
		return err
	}

	s.invalidate(ctx, id)
	for _, e := range s.resolver.Graph().Children(s.table) {
		if e.OnDelete == models.Cascade {
			if err := s.cache.DeleteAll(ctx, e.Child+":*"); err != nil {
				s.log.Warn().Err(err).Str("child", e.Child).Msg("failed to clear cascaded cache entries")
			}
		}
	}
	return nil
}

// Transaction runs fn in a transaction bound to ctx.
func (s *Store[T, P]) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.db.WithContext(ctx).Transaction(fn)
}

// Invalidate drops the cached copy of the row with the given id.
func (s *Store[T, P]) Invalidate(ctx context.Context, id any) {
	s.invalidate(ctx, id)
}
