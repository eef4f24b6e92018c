package sqlast

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSimpleSelect(t *testing.T) {
	alias := TableAlias{Index: 0, Name: "Artist"}
	ref := AliasedTable(alias)

	sel := SimpleSelect([]SelectItem{
		{Alias: NewColumnAlias("id"), Expr: ColumnRefExpr(TableColumn(ref, "ArtistId"))},
		{Alias: NewColumnAlias("name"), Expr: ColumnRefExpr(TableColumn(ref, "Name"))},
	})
	sel.From = &From{Kind: FromTable, Table: DBTable("public", "Artist"), Alias: alias}
	one := uint32(1)
	sel.Limit = Limit{Limit: &one}

	sql, params := RenderSelect(sel)
	// SimpleSelect's WHERE TRUE is bound like any other value.
	require.Len(t, params, 1)
	assert.Equal(t, "true", string(params[0].Value))
	assert.Contains(t, sql, `FROM "public"."Artist" AS "%0_Artist"`)
	assert.Contains(t, sql, `"%0_Artist"."ArtistId" AS "id"`)
	assert.Contains(t, sql, "LIMIT 1")
}

// TestParamPositionsIncreaseInOrder asserts testable property 3: parameter
// placeholders appear in strictly increasing order matching the params
// vector.
func TestParamPositionsIncreaseInOrder(t *testing.T) {
	alias := TableAlias{Index: 3, Name: "Track"}
	ref := AliasedTable(alias)

	where := AndExpr(
		BinaryOpExpr(">", ColumnRefExpr(TableColumn(ref, "Milliseconds")), ValueExpr(Float8Value(200000))),
		BinaryOpExpr("=", ColumnRefExpr(TableColumn(ref, "GenreId")), ValueExpr(StringValue("Rock"))),
	)

	sel := &Select{SelectList: StarSelectList(), Where: where}
	sql, params := RenderSelect(sel)
	require.Len(t, params, 2)

	re := regexp.MustCompile(`\$(\d+)`)
	matches := re.FindAllStringSubmatch(sql, -1)
	require.Len(t, matches, 2)
	for i, m := range matches {
		n, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		assert.Equal(t, i+1, n)
	}
}

// TestPurity asserts testable property 2: rendering the same AST twice
// yields byte-identical output.
func TestPurity(t *testing.T) {
	build := func() *Select {
		alias := TableAlias{Index: 1, Name: "Album"}
		ref := AliasedTable(alias)
		return SimpleSelect([]SelectItem{
			{Alias: NewColumnAlias("title"), Expr: ColumnRefExpr(TableColumn(ref, "Title"))},
		})
	}

	sql1, params1 := RenderSelect(build())
	sql2, params2 := RenderSelect(build())
	assert.Equal(t, sql1, sql2)
	assert.Equal(t, params1, params2)
}

func TestNestedCompositeRender(t *testing.T) {
	outer := TableAlias{Index: 0, Name: "Address"}
	field := ColumnRefExpr(TableColumn(AliasedTable(outer), "address"))
	sel := SelectComposite(field)
	sql, _ := RenderSelect(sel)
	assert.Contains(t, sql, `("%0_Address"."address").*`)
}

func TestInsertWithDefault(t *testing.T) {
	ins := &Insert{
		Schema:  "public",
		Table:   "widgets",
		Columns: []string{"id", "name"},
		Values: [][]InsertExpression{
			{DefaultInsertExpr(), ValueInsertExpr(ValueExpr(StringValue("a")))},
			{ValueInsertExpr(ValueExpr(Float8Value(5))), ValueInsertExpr(ValueExpr(StringValue("b")))},
		},
		Returning: StarSelectList(),
	}
	sql, params := Render(Statement{Kind: StmtInsert, Insert: ins})
	assert.Contains(t, sql, `INSERT INTO "public"."widgets"("id", "name") VALUES (DEFAULT, $1), ($2, $3)`)
	require.Len(t, params, 3)
}
