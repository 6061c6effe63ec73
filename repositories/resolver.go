package repositories

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"RxClinic/apperrors"
	"RxClinic/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Resolver enforces the relationship graph over the gorm schemas of every table.
type Resolver struct {
	graph   *models.Graph
	schemas map[string]*schema.Schema
}

// NewResolver parses the schema of every entity in the graph.
func NewResolver(db *gorm.DB, graph *models.Graph) (*Resolver, error) {
	r := &Resolver{graph: graph, schemas: map[string]*schema.Schema{}}
	for _, entity := range models.Entities() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(entity); err != nil {
			return nil, errors.Wrapf(err, "failed to parse schema of %s", entity.TableName())
		}
		r.schemas[entity.TableName()] = stmt.Schema
	}
	return r, nil
}

func (r *Resolver) Graph() *models.Graph {
	return r.graph
}

// Validate checks the graph against the parsed schemas.
func (r *Resolver) Validate() error {
	if err := r.graph.Check(); err != nil {
		return err
	}
	for _, table := range r.graph.Tables {
		s, ok := r.schemas[table]
		if !ok {
			return errors.Errorf("table %s has no registered model", table)
		}
		if s.PrioritizedPrimaryField == nil {
			return errors.Errorf("table %s has no primary key", table)
		}
	}
	for _, e := range r.graph.Edges {
		child := r.schemas[e.Child]
		fk := child.LookUpField(e.ForeignKey)
		if fk == nil {
			return errors.Errorf("edge %s: column %s does not exist on %s", e, e.ForeignKey, e.Child)
		}
		if e.Kind == models.OneToOne && !fk.PrimaryKey && !fk.Unique && !hasTag(fk, "UNIQUEINDEX") {
			return errors.Errorf("edge %s: one-to-one foreign key must be unique", e)
		}
		if e.Parent == e.Child && fk.NotNull && !isOwnership(e.ForeignKey) {
			return errors.Errorf("edge %s: self reference must be nullable", e)
		}
		if e.ParentField != "" {
			if _, ok := r.schemas[e.Parent].Relationships.Relations[e.ParentField]; !ok {
				return errors.Errorf("edge %s: %s has no association %s", e, e.Parent, e.ParentField)
			}
		}
		if e.ChildField != "" {
			if _, ok := child.Relationships.Relations[e.ChildField]; !ok {
				return errors.Errorf("edge %s: %s has no association %s", e, e.Child, e.ChildField)
			}
		}
	}
	return nil
}

func hasTag(f *schema.Field, tag string) bool {
	_, ok := f.TagSettings[tag]
	return ok
}

func isOwnership(column string) bool {
	return column == "created_by" || column == "updated_by"
}

func (r *Resolver) schema(table string) (*schema.Schema, error) {
	s, ok := r.schemas[table]
	if !ok {
		return nil, errors.Errorf("unknown table %s", table)
	}
	return s, nil
}

// PrimaryKey returns the primary key column of table.
func (r *Resolver) PrimaryKey(table string) string {
	if s, ok := r.schemas[table]; ok {
		return s.PrioritizedPrimaryField.DBName
	}
	return ""
}

// ParseID converts a path id into the primary key type of table. Malformed
// ids can never match a row and are reported as not found.
func (r *Resolver) ParseID(table, raw string) (any, error) {
	s, err := r.schema(table)
	if err != nil {
		return nil, err
	}
	notFound := &apperrors.NotFoundError{Entity: table, ID: raw}
	switch s.PrioritizedPrimaryField.FieldType.Kind() {
	case reflect.Uint, reflect.Uint32, reflect.Uint64:
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return nil, notFound
		}
		return id, nil
	case reflect.String:
		if _, err := uuid.Parse(raw); err != nil {
			return nil, notFound
		}
		return raw, nil
	}
	return nil, errors.Errorf("unsupported primary key type on %s", table)
}

// Preload applies the association preloads named by includes.
func (r *Resolver) Preload(db *gorm.DB, table string, includes []string) (*gorm.DB, error) {
	for _, name := range includes {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		field, ok := r.graph.Include(table, name)
		if !ok {
			return nil, apperrors.NewValidationError(map[string]string{
				"include": fmt.Sprintf("unknown include %q for %s", name, table),
			})
		}
		db = db.Preload(field)
	}
	return db, nil
}

// CheckReferences verifies that every non-zero foreign key of record points at
// an existing parent row. A row may reference itself.
func (r *Resolver) CheckReferences(ctx context.Context, tx *gorm.DB, record models.Record) error {
	table := record.TableName()
	s, err := r.schema(table)
	if err != nil {
		return err
	}
	rv := reflect.Indirect(reflect.ValueOf(record))

	for _, e := range r.graph.Parents(table) {
		field := s.LookUpField(e.ForeignKey)
		if field == nil {
			continue
		}
		value, zero := field.ValueOf(ctx, rv)
		if zero {
			continue
		}
		value = reflect.Indirect(reflect.ValueOf(value)).Interface()
		if e.Parent == table && fmt.Sprint(value) == fmt.Sprint(record.PrimaryKey()) {
			continue
		}

		var count int64
		err := tx.WithContext(ctx).Table(e.Parent).
			Where(r.PrimaryKey(e.Parent)+" = ?", value).
			Count(&count).Error
		if err != nil {
			return classify(err, e.Parent)
		}
		if count == 0 {
			return &apperrors.ReferentialIntegrityError{
				Table:  e.Parent,
				Column: e.ForeignKey,
				Reason: fmt.Sprintf("%s %v does not exist", e.Parent, value),
			}
		}
	}
	return nil
}

// Delete removes the row of table with the given id inside a transaction.
// Restrict edges with dependents abort the delete; cascade edges remove their
// dependents first.
func (r *Resolver) Delete(ctx context.Context, db *gorm.DB, table string, id any) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.delete(ctx, tx, table, id)
	})
}

func (r *Resolver) delete(ctx context.Context, tx *gorm.DB, table string, id any) error {
	s, err := r.schema(table)
	if err != nil {
		return err
	}
	pk := s.PrioritizedPrimaryField.DBName

	var exists int64
	if err := tx.Table(table).Where(pk+" = ?", id).Count(&exists).Error; err != nil {
		return classify(err, table)
	}
	if exists == 0 {
		return &apperrors.NotFoundError{Entity: table, ID: fmt.Sprint(id)}
	}

	children := r.graph.Children(table)
	for _, e := range children {
		if e.OnDelete != models.Restrict {
			continue
		}
		q := tx.Table(e.Child).Where(e.ForeignKey+" = ?", id)
		if e.Child == table {
			q = q.Where(pk+" <> ?", id)
		}
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return classify(err, e.Child)
		}
		if count > 0 {
			return &apperrors.ReferentialIntegrityError{
				Table:  e.Child,
				Column: e.ForeignKey,
				Reason: fmt.Sprintf("%d dependent row(s) in %s reference %s %v", count, e.Child, table, id),
			}
		}
	}

	for _, e := range children {
		if e.OnDelete != models.Cascade {
			continue
		}
		ids, err := r.childIDs(ctx, tx, e, id)
		if err != nil {
			return err
		}
		for _, childID := range ids {
			if err := r.delete(ctx, tx, e.Child, childID); err != nil {
				return err
			}
		}
	}

	if err := tx.Where(pk+" = ?", id).Delete(reflect.New(s.ModelType).Interface()).Error; err != nil {
		return classify(err, table)
	}
	return nil
}

func (r *Resolver) childIDs(ctx context.Context, tx *gorm.DB, e models.Edge, parentID any) ([]any, error) {
	s, err := r.schema(e.Child)
	if err != nil {
		return nil, err
	}
	pk := s.PrioritizedPrimaryField

	rows := reflect.New(reflect.SliceOf(s.ModelType))
	if err := tx.Select(pk.DBName).Where(e.ForeignKey+" = ?", parentID).Find(rows.Interface()).Error; err != nil {
		return nil, classify(err, e.Child)
	}

	slice := rows.Elem()
	ids := make([]any, 0, slice.Len())
	for i := 0; i < slice.Len(); i++ {
		value, _ := pk.ValueOf(ctx, slice.Index(i))
		ids = append(ids, value)
	}
	return ids, nil
}
