package journal

import (
	"fmt"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/schema/field"

	"github.com/cfdlab/foamtutor/ent/schema"
)

const (
	turnTable    = "turn_events"
	sessionTable = "session_events"
)

// table is a SQL table derived from an ent schema.
type table struct {
	name    string
	columns []string
	ddl     []string
}

// schemaTables lists the journal tables in creation order.
func schemaTables() ([]table, error) {
	var out []table
	for _, s := range []struct {
		name string
		def  ent.Interface
	}{
		{sessionTable, schema.SessionEvent{}},
		{turnTable, schema.TurnEvent{}},
	} {
		t, err := tableFor(s.name, s.def)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// tableFor builds CREATE TABLE and CREATE INDEX statements from the fields
// and indexes of an ent schema and its mixins.
func tableFor(name string, def ent.Interface) (table, error) {
	fields := []ent.Field{}
	indexes := []ent.Index{}
	for _, m := range def.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, def.Fields()...)
	indexes = append(indexes, def.Indexes()...)

	t := table{name: name}
	sqlite := entsql.Dialect(dialect.SQLite)
	cols := []entsql.Querier{
		sqlite.Column("id").Type("integer PRIMARY KEY AUTOINCREMENT"),
	}
	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return table{}, fmt.Errorf("schema %s.%s: %w", name, d.Name, d.Err)
		}
		typ, err := columnType(d)
		if err != nil {
			return table{}, fmt.Errorf("schema %s: %w", name, err)
		}
		cols = append(cols, sqlite.Column(d.Name).Type(typ+constraints(d)))
		t.columns = append(t.columns, d.Name)
	}

	t.ddl = append(t.ddl, sqlite.String(func(b *entsql.Builder) {
		b.WriteString("CREATE TABLE IF NOT EXISTS ").Ident(name).Pad().Wrap(func(b *entsql.Builder) {
			b.JoinComma(cols...)
		})
	}))

	for _, idx := range indexes {
		d := idx.Descriptor()
		t.ddl = append(t.ddl, sqlite.String(func(b *entsql.Builder) {
			b.WriteString("CREATE INDEX IF NOT EXISTS ").Ident(name + "_" + strings.Join(d.Fields, "_"))
			b.WriteString(" ON ").Ident(name).Pad().Wrap(func(b *entsql.Builder) {
				b.IdentComma(d.Fields...)
			})
		}))
	}
	return t, nil
}

func constraints(d *field.Descriptor) string {
	var attrs string
	if !d.Optional {
		attrs += " NOT NULL"
	}
	if d.Unique {
		attrs += " UNIQUE"
	}
	return attrs
}

// Timestamps are stored as fixed-width UTC text so they sort lexically.
func columnType(d *field.Descriptor) (string, error) {
	switch d.Info.Type {
	case field.TypeString, field.TypeTime, field.TypeJSON, field.TypeEnum, field.TypeUUID:
		return "text", nil
	case field.TypeBool, field.TypeInt, field.TypeInt8, field.TypeInt16, field.TypeInt32, field.TypeInt64,
		field.TypeUint, field.TypeUint8, field.TypeUint16, field.TypeUint32, field.TypeUint64:
		return "integer", nil
	case field.TypeFloat32, field.TypeFloat64:
		return "real", nil
	case field.TypeBytes:
		return "blob", nil
	}
	return "", fmt.Errorf("field %s: unsupported type %s", d.Name, d.Info.Type)
}
