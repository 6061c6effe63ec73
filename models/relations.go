package models

import (
	"fmt"

	"github.com/pkg/errors"
)

type EdgeKind string

const (
	OneToOne  EdgeKind = "one-to-one"
	OneToMany EdgeKind = "one-to-many"
)

type RefAction string

const (
	Restrict RefAction = "RESTRICT"
	Cascade  RefAction = "CASCADE"
)

// Edge is a foreign key from Child.ForeignKey to the primary key of Parent.
// ParentField/ChildField name the gorm association on each side, when one exists,
// and ParentInclude/ChildInclude are the names accepted in ?include=.
type Edge struct {
	Parent        string
	Child         string
	ForeignKey    string
	Kind          EdgeKind
	OnDelete      RefAction
	ParentInclude string
	ParentField   string
	ChildInclude  string
	ChildField    string
}

func (e Edge) String() string {
	return fmt.Sprintf("%s.%s -> %s (%s, %s)", e.Child, e.ForeignKey, e.Parent, e.Kind, e.OnDelete)
}

// Graph is the adjacency list of every foreign key in the schema.
type Graph struct {
	Tables []string
	Edges  []Edge
}

// Entities returns a zero value of every table model, in dependency order.
func Entities() []Record {
	return []Record{
		&User{},
		&Specialization{},
		&Patient{},
		&Doctor{},
		&Schedule{},
		&Consultation{},
		&ConsultAttachment{},
		&PatAllergy{},
		&PatFamMedHist{},
		&Payment{},
		&PaymentDetail{},
	}
}

// ClinicGraph builds the relationship graph of the clinic schema.
func ClinicGraph() *Graph {
	g := &Graph{}
	for _, e := range Entities() {
		g.Tables = append(g.Tables, e.TableName())
	}

	g.Edges = []Edge{
		{Parent: "users", Child: "users", ForeignKey: "verified_by", Kind: OneToMany, OnDelete: Restrict},
		{Parent: "users", Child: "patients", ForeignKey: "user_id", Kind: OneToOne, OnDelete: Restrict, ChildInclude: "user", ChildField: "User"},
		{Parent: "users", Child: "doctors", ForeignKey: "user_id", Kind: OneToOne, OnDelete: Restrict, ChildInclude: "user", ChildField: "User"},
		{Parent: "users", Child: "doctors", ForeignKey: "verified_by", Kind: OneToMany, OnDelete: Restrict},
		{Parent: "specializations", Child: "doctors", ForeignKey: "specialty_id", Kind: OneToMany, OnDelete: Restrict, ChildInclude: "specialization", ChildField: "Specialization"},
		{Parent: "doctors", Child: "schedules", ForeignKey: "user_id", Kind: OneToMany, OnDelete: Cascade, ParentInclude: "schedules", ParentField: "Schedules", ChildInclude: "doctor", ChildField: "Doctor"},
		{Parent: "doctors", Child: "consultations", ForeignKey: "doc_user_id", Kind: OneToMany, OnDelete: Restrict, ParentInclude: "consultations", ParentField: "Consultations", ChildInclude: "doctor", ChildField: "Doctor"},
		{Parent: "patients", Child: "consultations", ForeignKey: "created_by", Kind: OneToMany, OnDelete: Restrict, ParentInclude: "consultations", ParentField: "Consultations", ChildInclude: "patient", ChildField: "Patient"},
		{Parent: "patients", Child: "pat_allergies", ForeignKey: "user_id", Kind: OneToMany, OnDelete: Restrict, ParentInclude: "allergies", ParentField: "Allergies"},
		{Parent: "patients", Child: "pat_fam_med_hist", ForeignKey: "user_id", Kind: OneToMany, OnDelete: Restrict, ParentInclude: "family_history", ParentField: "FamilyHistory"},
		{Parent: "consultations", Child: "consult_attachments", ForeignKey: "consult_id", Kind: OneToMany, OnDelete: Restrict, ParentInclude: "attachments", ParentField: "Attachments"},
		{Parent: "consultations", Child: "payments", ForeignKey: "consult_id", Kind: OneToOne, OnDelete: Restrict, ParentInclude: "payment", ParentField: "Payment"},
		{Parent: "payments", Child: "payments_det", ForeignKey: "pay_id", Kind: OneToMany, OnDelete: Cascade, ParentInclude: "details", ParentField: "Details"},
	}

	// Ownership edges: every table records its creator and last modifier.
	for _, table := range g.Tables {
		g.Edges = append(g.Edges,
			Edge{Parent: "users", Child: table, ForeignKey: "created_by", Kind: OneToMany, OnDelete: Restrict},
			Edge{Parent: "users", Child: table, ForeignKey: "updated_by", Kind: OneToMany, OnDelete: Restrict},
		)
	}
	return g
}

func (g *Graph) HasTable(table string) bool {
	for _, t := range g.Tables {
		if t == table {
			return true
		}
	}
	return false
}

// Children returns the edges whose parent is table.
func (g *Graph) Children(table string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Parent == table {
			out = append(out, e)
		}
	}
	return out
}

// Parents returns the edges whose child is table.
func (g *Graph) Parents(table string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Child == table {
			out = append(out, e)
		}
	}
	return out
}

// Include resolves an include name to the association field to preload on table.
func (g *Graph) Include(table, name string) (string, bool) {
	for _, e := range g.Edges {
		if e.Parent == table && e.ParentInclude == name {
			return e.ParentField, true
		}
		if e.Child == table && e.ChildInclude == name {
			return e.ChildField, true
		}
	}
	return "", false
}

// Check verifies the structural consistency of the graph: known tables,
// no duplicate edges, include names bound to fields and unique per table,
// and self edges that can never be cascaded.
func (g *Graph) Check() error {
	seen := map[string]bool{}
	includes := map[string]bool{}
	for _, e := range g.Edges {
		if !g.HasTable(e.Parent) || !g.HasTable(e.Child) {
			return errors.Errorf("edge %s references an unknown table", e)
		}
		if e.ForeignKey == "" {
			return errors.Errorf("edge %s has no foreign key", e)
		}
		if e.Kind != OneToOne && e.Kind != OneToMany {
			return errors.Errorf("edge %s has unknown kind", e)
		}
		if e.OnDelete != Restrict && e.OnDelete != Cascade {
			return errors.Errorf("edge %s has unknown referential action", e)
		}
		if e.Parent == e.Child && e.OnDelete == Cascade {
			return errors.Errorf("self edge %s cannot cascade", e)
		}
		key := e.Parent + "|" + e.Child + "|" + e.ForeignKey
		if seen[key] {
			return errors.Errorf("duplicate edge %s", e)
		}
		seen[key] = true

		if (e.ParentInclude == "") != (e.ParentField == "") || (e.ChildInclude == "") != (e.ChildField == "") {
			return errors.Errorf("edge %s has an include without an association field", e)
		}
		for _, inc := range []struct{ table, name string }{{e.Parent, e.ParentInclude}, {e.Child, e.ChildInclude}} {
			if inc.name == "" {
				continue
			}
			k := inc.table + "|" + inc.name
			if includes[k] {
				return errors.Errorf("include %q declared twice on %s", inc.name, inc.table)
			}
			includes[k] = true
		}
	}
	return nil
}
