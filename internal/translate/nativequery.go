package translate

import (
	"fmt"
	"strings"

	"github.com/hasura/ndc-postgres-go/internal/sqlast"
)

// MaterializeNativeQueries drains the State's accumulated native-query call
// sites and turns each into a `WITH` prelude entry. A native query's SQL
// template is arbitrary hand-written text, not something this package
// parses into the structured AST, so each {{argument}} hole is replaced with
// a reference to a small preceding CTE that projects the already-translated
// argument expression as a single column "v" — that keeps every argument
// value flowing through the normal parameterized Select/Expression path
// (and therefore the renderer's single shared, strictly-increasing $N
// sequence) even though the query body itself is spliced in as raw text.
func MaterializeNativeQueries(env *Env, state *State) ([]sqlast.CommonTableExpression, error) {
	invocations := state.IntoNativeQueries()
	ctes := make([]sqlast.CommonTableExpression, 0, len(invocations)*2)

	for _, inv := range invocations {
		nq, err := env.LookupNativeQuery(inv.Name)
		if err != nil {
			return nil, err
		}

		body := nq.Sql
		for argName := range extractHoles(nq.Sql) {
			col, ok := nq.Arguments[argName]
			if !ok {
				return nil, errArgumentNotFound(argName)
			}
			arg, ok := inv.Arguments[argName]
			if !ok {
				return nil, errArgumentNotFound(argName)
			}

			valueExpr, err := TranslateArgumentValue(env, state, arg, col.Type)
			if err != nil {
				return nil, err
			}

			argAlias := fmt.Sprintf("NATIVE_ARG_%d", state.nextGlobalIndex())
			ctes = append(ctes, sqlast.CommonTableExpression{
				Alias: argAlias,
				Select: &sqlast.Select{
					SelectList: sqlast.ListSelectList(sqlast.SelectItem{Alias: sqlast.NewColumnAlias("v"), Expr: valueExpr}),
					Where:      sqlast.TrueExpr(),
				},
			})

			hole := fmt.Sprintf("{{%s}}", argName)
			body = strings.ReplaceAll(body, hole, fmt.Sprintf(`(SELECT "v" FROM "%s")`, argAlias))
		}

		ctes = append(ctes, sqlast.CommonTableExpression{
			Alias: cteNameForNativeQuery(inv.Alias),
			Raw:   body,
		})
	}

	return ctes, nil
}

// cteNameForNativeQuery renders the table alias State minted for this
// invocation (e.g. "%3_NATIVE_QUERY_get_top_artists") so the FROM clauses
// built during translation and the CTE this function emits name the exact
// same thing.
func cteNameForNativeQuery(alias sqlast.TableAlias) string {
	return fmt.Sprintf("%%%d_%s", alias.Index, alias.Name)
}

func extractHoles(sql string) map[string]struct{} {
	holes := map[string]struct{}{}
	rest := sql
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			break
		}
		name := strings.TrimSpace(rest[start+2 : start+end])
		holes[name] = struct{}{}
		rest = rest[start+end+2:]
	}
	return holes
}
