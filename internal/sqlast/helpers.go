package sqlast

// Field names the translator and the renderer agree on by convention.
const (
	VariablesField      = "variables"
	CheckConstraintField = "CHECK_CONSTRAINT"
	RootField            = "__root"
)

// SimpleSelect builds `SELECT <columns> WHERE TRUE` with no FROM yet —
// callers attach From, Joins, and Where afterwards, a starting point every
// select-shaped translation step specializes.
func SimpleSelect(columns []SelectItem) *Select {
	return &Select{
		SelectList: ListSelectList(columns...),
		Where:      TrueExpr(),
	}
}

// SelectComposite builds `SELECT (<expr>).*` — used to unpack a composite
// column's fields into ordinary columns of a bound sub-relation.
func SelectComposite(expr Expression) *Select {
	return &Select{
		SelectList: RecordStarSelectList(expr),
		Where:      TrueExpr(),
	}
}

// MakeColumn returns (alias, expr) for a simple projected column reference,
// the common case in translate_fields.
func MakeColumn(table TableReference, column string, alias ColumnAlias) (ColumnAlias, Expression) {
	return alias, ColumnRefExpr(TableColumn(table, column))
}

// EmptyOrderBy clears an ORDER BY — used by the aggregate branch of the
// query root, which never needs ordering.
func EmptyOrderBy() []OrderByItem { return nil }
