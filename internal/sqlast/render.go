package sqlast

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Render turns a Statement into parameterized SQL text and its positional
// parameter vector. The renderer is total: every value this package can
// construct renders without error. An unrepresentable AST is a
// construction bug in the translator, not a rendering failure.
func Render(stmt Statement) (string, []Param) {
	r := &renderer{w: &bytes.Buffer{}}
	r.renderStatement(stmt)
	return r.w.String(), r.params
}

// RenderSelect renders a bare Select, e.g. for tests that only care about
// one sub-query.
func RenderSelect(sel *Select) (string, []Param) {
	r := &renderer{w: &bytes.Buffer{}}
	r.renderSelect(sel)
	return r.w.String(), r.params
}

// RenderExpression renders a single Expression, e.g. for tests of the
// predicate translator in isolation.
func RenderExpression(e Expression) (string, []Param) {
	r := &renderer{w: &bytes.Buffer{}}
	r.renderExpression(e)
	return r.w.String(), r.params
}

type renderer struct {
	w      *bytes.Buffer
	params []Param
}

func (r *renderer) renderStatement(stmt Statement) {
	r.renderWith(stmt.With)
	switch stmt.Kind {
	case StmtSelect:
		r.renderSelect(stmt.Select)
	case StmtInsert:
		r.renderInsert(stmt.Insert)
	case StmtUpdate:
		r.renderUpdate(stmt.Update)
	case StmtDelete:
		r.renderDelete(stmt.Delete)
	}
}

func (r *renderer) renderWith(ctes []CommonTableExpression) {
	if len(ctes) == 0 {
		return
	}
	r.w.WriteString("WITH ")
	for i, cte := range ctes {
		if i != 0 {
			r.w.WriteString(", ")
		}
		quoteInto(r.w, cte.Alias)
		r.w.WriteString(" AS (")
		if cte.Select != nil {
			r.renderSelect(cte.Select)
		} else {
			r.w.WriteString(cte.Raw)
		}
		r.w.WriteString(")")
	}
	r.w.WriteString(" ")
}

func (r *renderer) renderSelect(sel *Select) {
	if sel == nil {
		return
	}
	r.renderWith(sel.With)
	r.w.WriteString("SELECT ")
	r.renderSelectList(sel.SelectList)
	if sel.From != nil {
		r.w.WriteString(" FROM ")
		r.renderFrom(sel.From)
	}
	for _, j := range sel.Joins {
		r.renderJoin(j)
	}
	r.w.WriteString(" WHERE ")
	r.renderExpression(sel.Where)
	if len(sel.GroupBy) > 0 {
		r.w.WriteString(" GROUP BY ")
		for i, g := range sel.GroupBy {
			if i != 0 {
				r.w.WriteString(", ")
			}
			r.renderExpression(g)
		}
	}
	if len(sel.OrderBy) > 0 {
		r.w.WriteString(" ORDER BY ")
		for i, ob := range sel.OrderBy {
			if i != 0 {
				r.w.WriteString(", ")
			}
			r.renderExpression(ob.Expr)
			if ob.Direction == Desc {
				r.w.WriteString(" DESC")
			} else {
				r.w.WriteString(" ASC")
			}
			if ob.Nulls == NullsFirst {
				r.w.WriteString(" NULLS FIRST")
			} else {
				r.w.WriteString(" NULLS LAST")
			}
		}
	}
	if sel.Limit.Limit != nil {
		r.w.WriteString(" LIMIT ")
		r.w.WriteString(strconv.FormatUint(uint64(*sel.Limit.Limit), 10))
	}
	if sel.Limit.Offset != nil {
		r.w.WriteString(" OFFSET ")
		r.w.WriteString(strconv.FormatUint(uint64(*sel.Limit.Offset), 10))
	}
	if sel.ForUpdate {
		r.w.WriteString(" FOR UPDATE")
	}
}

func (r *renderer) renderSelectList(list SelectList) {
	switch list.Kind {
	case SelectStar:
		r.w.WriteString("*")
	case SelectListItems:
		if len(list.Items) == 0 {
			r.w.WriteString("NULL")
			return
		}
		for i, item := range list.Items {
			if i != 0 {
				r.w.WriteString(", ")
			}
			r.renderExpression(item.Expr)
			r.w.WriteString(" AS ")
			quoteInto(r.w, item.Alias.Name)
		}
	case SelectListComposite:
		r.renderSelectList(*list.Left)
		r.w.WriteString(", ")
		r.renderSelectList(*list.Right)
	case SelectRecordStar:
		r.w.WriteString("(")
		r.renderExpression(list.Expr)
		r.w.WriteString(").*")
	}
}

func (r *renderer) renderFrom(f *From) {
	switch f.Kind {
	case FromTable:
		r.renderTableReference(f.Table)
		r.w.WriteString(" AS ")
		r.renderTableAlias(f.Alias)
	case FromSelect:
		r.w.WriteString("(")
		r.renderSelect(f.Select)
		r.w.WriteString(") AS ")
		r.renderTableAlias(f.Alias)
	case FromJsonbArrayElements:
		r.w.WriteString("jsonb_array_elements(")
		r.renderExpression(f.Expr)
		r.w.WriteString(") AS ")
		r.renderTableAlias(f.Alias)
		r.w.WriteString("(")
		quoteInto(r.w, f.Column.Name)
		r.w.WriteString(")")
	case FromVariables:
		r.w.WriteString("%variables_table AS ")
		r.renderTableAlias(f.Alias)
		r.w.WriteString("(")
		quoteInto(r.w, "variables")
		r.w.WriteString(")")
	}
}

func (r *renderer) renderJoin(j Join) {
	switch j.Kind {
	case JoinInner:
		r.w.WriteString(" INNER JOIN ")
		r.renderTableReference(j.Source)
		r.w.WriteString(" ON ")
		r.renderExpression(j.On)
	case JoinLeftOuterLateral:
		r.w.WriteString(" LEFT OUTER JOIN LATERAL (")
		r.renderSelect(j.Select)
		r.w.WriteString(") AS ")
		r.renderTableAlias(j.Alias)
		r.w.WriteString(" ON TRUE")
	case JoinCrossLateral:
		r.w.WriteString(" CROSS JOIN LATERAL (")
		r.renderSelect(j.Select)
		r.w.WriteString(") AS ")
		r.renderTableAlias(j.Alias)
	}
}

func (r *renderer) renderTableReference(t TableReference) {
	switch t.Kind {
	case RefDBTable:
		if t.Schema != "" {
			quoteInto(r.w, t.Schema)
			r.w.WriteString(".")
		}
		quoteInto(r.w, t.Table)
	case RefAliasedTable:
		r.renderTableAlias(t.Alias)
	}
}

func (r *renderer) renderTableAlias(a TableAlias) {
	quoteInto(r.w, fmt.Sprintf("%%%d_%s", a.Index, a.Name))
}

func (r *renderer) renderColumnReference(c ColumnReference) {
	switch c.Kind {
	case ColTable:
		r.renderTableReference(c.Table)
		r.w.WriteString(".")
		quoteInto(r.w, c.Column)
	case ColAliased:
		r.renderTableReference(c.Table)
		r.w.WriteString(".")
		quoteInto(r.w, c.Alias.Name)
	case ColRoot:
		r.renderTableReference(c.Table)
		r.w.WriteString(".")
		quoteInto(r.w, c.Column)
	}
}

func (r *renderer) renderExpression(e Expression) {
	switch e.Kind {
	case ExprColumnRef:
		r.renderColumnReference(e.Column)
	case ExprValue:
		r.renderValue(e.Value)
	case ExprParam:
		r.addParam(e.Param)
	case ExprAnd:
		r.renderBoolCombinator(e.Children, " AND ", "TRUE")
	case ExprOr:
		r.renderBoolCombinator(e.Children, " OR ", "FALSE")
	case ExprNot:
		r.w.WriteString("NOT (")
		r.renderExpression(*e.Operand)
		r.w.WriteString(")")
	case ExprBinaryOp:
		r.w.WriteString("(")
		r.renderExpression(*e.Left)
		r.w.WriteString(" ")
		r.w.WriteString(e.Operator)
		r.w.WriteString(" ")
		r.renderExpression(*e.Right)
		r.w.WriteString(")")
	case ExprUnaryOp:
		r.w.WriteString("(")
		r.renderExpression(*e.Operand)
		r.w.WriteString(" ")
		r.w.WriteString(e.Operator)
		r.w.WriteString(")")
	case ExprFunctionCall:
		r.w.WriteString(e.Operator)
		r.w.WriteString("(")
		for i, a := range e.Args {
			if i != 0 {
				r.w.WriteString(", ")
			}
			r.renderExpression(a)
		}
		r.w.WriteString(")")
	case ExprCast:
		r.w.WriteString("CAST(")
		r.renderExpression(*e.Operand)
		r.w.WriteString(" AS ")
		r.renderScalarTypeName(e.CastType)
		r.w.WriteString(")")
	case ExprExists:
		if e.Negated {
			r.w.WriteString("NOT ")
		}
		r.w.WriteString("EXISTS (")
		r.renderSelect(e.Select)
		r.w.WriteString(")")
	case ExprIn:
		r.w.WriteString("(")
		r.renderExpression(*e.Operand)
		r.w.WriteString(" = ANY(ARRAY[")
		for i, v := range e.Args {
			if i != 0 {
				r.w.WriteString(", ")
			}
			r.renderExpression(v)
		}
		r.w.WriteString("]))")
	case ExprRowToJSON:
		r.w.WriteString("row_to_json(")
		r.renderTableReference(e.Table)
		r.w.WriteString(".*)")
	case ExprCorrelatedSubSelect:
		r.w.WriteString("(")
		r.renderSelect(e.Select)
		r.w.WriteString(")")
	case ExprRaw:
		r.w.WriteString(e.Raw)
	}
}

func (r *renderer) renderBoolCombinator(children []Expression, sep, identity string) {
	if len(children) == 0 {
		r.w.WriteString(identity)
		return
	}
	r.w.WriteString("(")
	for i, c := range children {
		if i != 0 {
			r.w.WriteString(sep)
		}
		r.renderExpression(c)
	}
	r.w.WriteString(")")
}

func (r *renderer) renderScalarTypeName(t ScalarTypeName) {
	if t.Schema != "" {
		quoteInto(r.w, t.Schema)
		r.w.WriteString(".")
	}
	r.w.WriteString(t.Name)
	if t.IsArray {
		r.w.WriteString("[]")
	}
}

func (r *renderer) renderValue(v Value) {
	switch v.Kind {
	case ValNull:
		r.addParam(Param{Kind: ParamValue, Value: []byte("null")})
	case ValBool:
		if v.Bool {
			r.addParam(Param{Kind: ParamValue, Value: []byte("true")})
		} else {
			r.addParam(Param{Kind: ParamValue, Value: []byte("false")})
		}
	case ValInt:
		r.addParam(Param{Kind: ParamValue, Value: []byte(strconv.FormatInt(v.Int, 10))})
	case ValFloat8:
		r.addParam(Param{Kind: ParamValue, Value: []byte(strconv.FormatFloat(v.Float8, 'g', -1, 64))})
	case ValString:
		b, _ := jsonMarshalString(v.Str)
		r.addParam(Param{Kind: ParamValue, Value: b})
	case ValJSON:
		r.addParam(Param{Kind: ParamValue, Value: v.JSON})
	case ValArray:
		r.w.WriteString("ARRAY[")
		for i, e := range v.Array {
			if i != 0 {
				r.w.WriteString(", ")
			}
			r.renderValue(e)
		}
		r.w.WriteString("]")
	}
}

// addParam appends a parameter and writes its positional placeholder.
// Placeholders are emitted strictly left-to-right, so $1..$n in the
// rendered text always match params in order (testable property 3).
func (r *renderer) addParam(p Param) {
	r.params = append(r.params, p)
	r.w.WriteString("$")
	r.w.WriteString(strconv.Itoa(len(r.params)))
}

func (r *renderer) renderInsert(ins *Insert) {
	r.w.WriteString("INSERT INTO ")
	if ins.Schema != "" {
		quoteInto(r.w, ins.Schema)
		r.w.WriteString(".")
	}
	quoteInto(r.w, ins.Table)
	r.w.WriteString("(")
	for i, c := range ins.Columns {
		if i != 0 {
			r.w.WriteString(", ")
		}
		quoteInto(r.w, c)
	}
	r.w.WriteString(") VALUES ")
	for i, row := range ins.Values {
		if i != 0 {
			r.w.WriteString(", ")
		}
		r.w.WriteString("(")
		for j, cell := range row {
			if j != 0 {
				r.w.WriteString(", ")
			}
			if cell.Kind == InsertDefault {
				r.w.WriteString("DEFAULT")
			} else {
				r.renderExpression(cell.Expr)
			}
		}
		r.w.WriteString(")")
	}
	r.renderReturning(ins.Returning)
}

func (r *renderer) renderUpdate(u *Update) {
	r.w.WriteString("UPDATE ")
	if u.Schema != "" {
		quoteInto(r.w, u.Schema)
		r.w.WriteString(".")
	}
	quoteInto(r.w, u.Table)
	r.w.WriteString(" SET ")
	for i, s := range u.Set {
		if i != 0 {
			r.w.WriteString(", ")
		}
		quoteInto(r.w, s.Column)
		r.w.WriteString(" = ")
		r.renderExpression(s.Expr)
	}
	r.w.WriteString(" WHERE ")
	r.renderExpression(u.Where)
	r.renderReturning(u.Returning)
}

func (r *renderer) renderDelete(d *Delete) {
	r.w.WriteString("DELETE FROM ")
	if d.Schema != "" {
		quoteInto(r.w, d.Schema)
		r.w.WriteString(".")
	}
	quoteInto(r.w, d.Table)
	r.w.WriteString(" WHERE ")
	r.renderExpression(d.Where)
	r.renderReturning(d.Returning)
}

func (r *renderer) renderReturning(list SelectList) {
	r.w.WriteString(" RETURNING ")
	r.renderSelectList(list)
}

// quoteInto writes a double-quoted, escaped SQL identifier.
func quoteInto(w *bytes.Buffer, identifier string) {
	w.WriteByte('"')
	w.WriteString(strings.ReplaceAll(identifier, `"`, `""`))
	w.WriteByte('"')
}

func jsonMarshalString(s string) ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.Bytes(), nil
}
