package gen

import (
	"fmt"
	"reflect"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/typedsql/dialect/sql"
)

const (
	sqlPkg  = "github.com/syssam/typedsql/dialect/sql"
	uuidPkg = "github.com/google/uuid"
)

// typeVars maps data type names to the predefined DataType variables of
// the sql package.
var typeVars = map[string]string{
	sql.SmallInt.Name():     "SmallInt",
	sql.Integer.Name():      "Integer",
	sql.BigInt.Name():       "BigInt",
	sql.Double.Name():       "Double",
	sql.Numeric.Name():      "Numeric",
	sql.Boolean.Name():      "Boolean",
	sql.Varchar.Name():      "Varchar",
	sql.Text.Name():         "Text",
	sql.Date.Name():         "Date",
	sql.Timestamp.Name():    "Timestamp",
	sql.TimestampTZ.Name():  "TimestampTZ",
	sql.UUID.Name():         "UUID",
	sql.Bytea.Name():        "Bytea",
	sql.VarcharArray.Name(): "VarcharArray",
}

func (g *Generator) newFile() *jen.File {
	f := jen.NewFile(g.config.Package)
	f.ImportName(sqlPkg, "sql")
	f.ImportName(uuidPkg, "uuid")
	if g.config.Header != "" {
		f.HeaderComment(g.config.Header)
	}
	return f
}

// tableFile renders the descriptor type, the singleton and the record type
// of one table.
func (g *Generator) tableFile(t *Table) (*jen.File, error) {
	s := g.schema
	f := g.newFile()

	f.Commentf("%s is the descriptor of the table %s.%s.", t.TypeName, s.Name, t.Name)
	if t.Comment != "" {
		f.Comment(t.Comment)
	}
	f.Type().Id(t.TypeName).StructFunc(func(grp *jen.Group) {
		grp.Op("*").Qual(sqlPkg, "TableImpl")
		grp.Line()
		for _, c := range t.Columns {
			grp.Commentf("%s is the column %s.", c.GoName, c.Name)
			if c.Comment != "" {
				grp.Comment(c.Comment)
			}
			grp.Id(c.GoName).Qual(sqlPkg, "TableField").Types(goType(c.GoType()))
		}
	})
	f.Line()

	f.Commentf("%s is the table %s.%s.", t.VarName, s.Name, t.Name)
	f.Var().Id(t.VarName).Op("=").Id(t.Constructor()).Call(jen.Lit(t.Name), jen.Lit(""), jen.Nil())
	f.Line()

	ctor, err := g.tableConstructor(t)
	if err != nil {
		return nil, err
	}
	f.Add(ctor)
	f.Line()

	recv := func() *jen.Statement { return jen.Id("t").Op("*").Id(t.TypeName) }
	f.Comment("As returns an alias of the table.")
	f.Func().Params(recv()).Id("As").Params(jen.Id("alias").String()).Op("*").Id(t.TypeName).Block(
		jen.Var().Id("root").Qual(sqlPkg, "Table").Op("=").Id("t"),
		jen.If(jen.Id("a").Op(":=").Id("t").Dot("Aliased").Call(), jen.Id("a").Op("!=").Nil()).Block(
			jen.Id("root").Op("=").Id("a"),
		),
		jen.Return(jen.Id(t.Constructor()).Call(jen.Id("t").Dot("Name").Call(), jen.Id("alias"), jen.Id("root"))),
	)
	f.Line()

	f.Comment("Rename returns a copy of the table with another name.")
	f.Func().Params(recv()).Id("Rename").Params(jen.Id("name").String()).Op("*").Id(t.TypeName).Block(
		jen.Return(jen.Id(t.Constructor()).Call(jen.Id("name"), jen.Lit(""), jen.Nil())),
	)
	f.Line()

	f.Comment("Schema returns the schema of the table, nil for aliases.")
	f.Func().Params(recv()).Id("Schema").Params().Op("*").Qual(sqlPkg, "Schema").Block(
		jen.If(jen.Id("t").Dot("IsAliased").Call()).Block(jen.Return(jen.Nil())),
		jen.Return(jen.Id(s.VarName).Dot("Schema")),
	)

	if pk := t.PrimaryKey; pk != nil {
		cols := make([]jen.Code, 0, len(pk.Columns)+3)
		cols = append(cols, jen.Lit(pk.Name), jen.Id(t.VarName), jen.True())
		for _, c := range pk.Columns {
			cols = append(cols, jen.Id(t.VarName).Dot(c.GoName).Dot("Column").Call())
		}
		f.Line()
		f.Commentf("PrimaryKey returns the primary key %s.", pk.Name)
		f.Func().Params(recv()).Id("PrimaryKey").Params().Op("*").Qual(sqlPkg, "UniqueKey").Block(
			jen.Return(jen.Qual(sqlPkg, "NewUniqueKey").Call(cols...)),
		)
	}
	f.Line()

	g.recordType(f, t)
	return f, nil
}

func (g *Generator) tableConstructor(t *Table) (jen.Code, error) {
	var opts []jen.Code
	if pk := t.PrimaryKey; pk != nil {
		args := []jen.Code{jen.Lit(pk.Name)}
		for _, c := range pk.Columns {
			args = append(args, jen.Lit(c.Name))
		}
		opts = append(opts, jen.Qual(sqlPkg, "TablePrimaryKey").Call(args...))
	}
	if t.Comment != "" {
		opts = append(opts, jen.Qual(sqlPkg, "TableComment").Call(jen.Lit(t.Comment)))
	}
	body := make([]jen.Code, 0, len(t.Columns)+4)
	if len(opts) > 0 {
		body = append(body, jen.Id("opts").Op(":=").Index().Qual(sqlPkg, "TableOption").Values(opts...))
	} else {
		body = append(body, jen.Var().Id("opts").Index().Qual(sqlPkg, "TableOption"))
	}
	body = append(body,
		jen.If(jen.Id("aliased").Op("!=").Nil()).Block(
			jen.Id("opts").Op("=").Append(jen.Id("opts"), jen.Qual(sqlPkg, "TableAlias").Call(jen.Id("alias"), jen.Id("aliased"))),
		),
		jen.Id("t").Op(":=").Op("&").Id(t.TypeName).Values(jen.Dict{
			jen.Id("TableImpl"): jen.Qual(sqlPkg, "NewTable").Call(jen.Lit(g.schema.Name), jen.Id("name"), jen.Id("opts").Op("...")),
		}),
	)
	for _, c := range t.Columns {
		dt, err := dataType(c.DataType)
		if err != nil {
			return nil, NewSchemaError(t.Name, c.Name, "unsupported data type", err)
		}
		body = append(body, jen.Id("t").Dot(c.GoName).Op("=").
			Qual(sqlPkg, "NewTableField").Types(goType(c.GoType())).
			Call(jen.Id("t").Dot("TableImpl"), jen.Lit(c.Name), dt, jen.Lit(c.Comment)))
	}
	body = append(body, jen.Return(jen.Id("t")))
	return jen.Func().Id(t.Constructor()).Params(
		jen.List(jen.Id("name"), jen.Id("alias")).String(),
		jen.Id("aliased").Qual(sqlPkg, "Table"),
	).Op("*").Id(t.TypeName).Block(body...), nil
}

// recordType renders the typed record of t: a getter and a setter per
// column, pointer based for nullable columns.
func (g *Generator) recordType(f *jen.File, t *Table) {
	f.Commentf("%s is a row of %s.%s.", t.RecordName, g.schema.Name, t.Name)
	f.Type().Id(t.RecordName).Struct(jen.Op("*").Qual(sqlPkg, "Record"))
	f.Line()

	f.Commentf("New%s returns an empty %s.", t.RecordName, t.RecordName)
	f.Func().Id("New"+t.RecordName).Params().Op("*").Id(t.RecordName).Block(
		jen.Return(jen.Op("&").Id(t.RecordName).Values(jen.Dict{
			jen.Id("Record"): jen.Qual(sqlPkg, "NewRecord").Call(jen.Id(t.VarName)),
		})),
	)

	recv := jen.Id("r").Op("*").Id(t.RecordName)
	for _, c := range t.Columns {
		typ := goType(c.GoType())
		field := jen.Id(t.VarName).Dot(c.GoName)
		f.Line()
		if c.DataType.Nullable() {
			f.Commentf("%s returns the value of %s, nil if NULL.", c.Getter(), c.Name)
			f.Func().Params(recv.Clone()).Id(c.Getter()).Params().Op("*").Add(typ).Block(
				jen.Return(jen.Qual(sqlPkg, "GetPtr").Types(typ).Call(jen.Id("r").Dot("Record"), field.Clone())),
			)
			f.Line()
			f.Commentf("%s sets the value of %s, nil meaning NULL.", c.Setter(), c.Name)
			f.Func().Params(recv.Clone()).Id(c.Setter()).Params(jen.Id("v").Op("*").Add(typ)).Op("*").Id(t.RecordName).Block(
				jen.Qual(sqlPkg, "SetPtr").Types(typ).Call(jen.Id("r").Dot("Record"), field.Clone(), jen.Id("v")),
				jen.Return(jen.Id("r")),
			)
			continue
		}
		f.Commentf("%s returns the value of %s.", c.Getter(), c.Name)
		f.Func().Params(recv.Clone()).Id(c.Getter()).Params().Add(typ).Block(
			jen.Return(jen.Qual(sqlPkg, "Get").Types(typ).Call(jen.Id("r").Dot("Record"), field.Clone())),
		)
		f.Line()
		f.Commentf("%s sets the value of %s.", c.Setter(), c.Name)
		f.Func().Params(recv.Clone()).Id(c.Setter()).Params(jen.Id("v").Add(typ)).Op("*").Id(t.RecordName).Block(
			jen.Qual(sqlPkg, "Set").Types(typ).Call(jen.Id("r").Dot("Record"), field.Clone(), jen.Id("v")),
			jen.Return(jen.Id("r")),
		)
	}
}

// goType returns the code of a Go type as reported by DataType.GoType.
func goType(t reflect.Type) jen.Code {
	switch {
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		return jen.Index().Byte()
	case t.Kind() == reflect.Slice:
		return jen.Index().Add(goType(t.Elem()))
	case t.PkgPath() != "":
		return jen.Qual(t.PkgPath(), t.Name())
	default:
		return jen.Id(t.Name())
	}
}

// dataType returns the expression building dt from the predefined types:
// sql.Varchar.WithLength(100).NotNull() and so on.
func dataType(dt sql.DataType) (jen.Code, error) {
	v, ok := typeVars[dt.Name()]
	if !ok {
		return nil, fmt.Errorf("no predefined type for %q", dt.Name())
	}
	c := jen.Qual(sqlPkg, v)
	if n := dt.Length(); n > 0 {
		c.Dot("WithLength").Call(jen.Lit(n))
	}
	if p := dt.Precision(); p > 0 {
		args := []jen.Code{jen.Lit(p)}
		if s := dt.Scale(); s > 0 {
			args = append(args, jen.Lit(s))
		}
		c.Dot("WithPrecision").Call(args...)
	}
	if !dt.Nullable() {
		c.Dot("NotNull").Call()
	}
	if dt.Identity() {
		c.Dot("AsIdentity").Call()
	}
	if dt.HasDefault() {
		c.Dot("WithDefault").Call(defaultValue(dt.Default()))
	}
	return c, nil
}

func defaultValue(def sql.QueryPart) jen.Code {
	expr := sql.Inlined(def)
	if expr == sql.Inlined(sql.Now()) {
		return jen.Qual(sqlPkg, "Now").Call()
	}
	return jen.Qual(sqlPkg, "Raw").Call(jen.Lit(expr))
}
