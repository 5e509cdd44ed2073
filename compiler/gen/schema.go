package gen

import (
	"github.com/dave/jennifer/jen"
)

// schemaFile renders the schema root: a struct embedding the runtime
// schema with one field per table, and its singleton.
func (g *Generator) schemaFile() *jen.File {
	s := g.schema
	f := g.newFile()

	f.Commentf("%s is the descriptor of the schema %s.", s.TypeName, s.Name)
	f.Type().Id(s.TypeName).StructFunc(func(grp *jen.Group) {
		grp.Op("*").Qual(sqlPkg, "Schema")
		if len(s.Tables) > 0 {
			grp.Line()
		}
		for _, t := range s.Tables {
			grp.Commentf("%s is the table %s.%s.", t.VarName, s.Name, t.Name)
			grp.Id(t.VarName).Op("*").Id(t.TypeName)
		}
	})
	f.Line()

	tables := make([]jen.Code, 0, len(s.Tables)+1)
	tables = append(tables, jen.Lit(s.Name))
	fields := make([]jen.Code, 0, len(s.Tables)+1)
	for _, t := range s.Tables {
		tables = append(tables, jen.Id(t.VarName))
	}
	fields = append(fields, jen.Id("Schema").Op(":").Qual(sqlPkg, "NewSchema").Call(tables...))
	for _, t := range s.Tables {
		fields = append(fields, jen.Id(t.VarName).Op(":").Id(t.VarName))
	}
	f.Commentf("%s is the schema %s.", s.VarName, s.Name)
	f.Var().Id(s.VarName).Op("=").Op("&").Id(s.TypeName).Custom(jen.Options{
		Open:      "{",
		Close:     "}",
		Separator: ",",
		Multi:     true,
	}, fields...)
	return f
}
