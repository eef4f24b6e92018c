package metadata

import (
	"fmt"
	"regexp"
	"sort"

	pgq "github.com/xataio/pg_query_go/v6"
)

var argHolePattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// ValidateNativeQuery checks that a native query's SQL template is itself
// syntactically valid Postgres once its `{{argname}}` holes are filled with
// a placeholder parameter, and that every hole corresponds to a declared
// argument. This runs once at configuration-load time so a malformed native
// query is rejected before any request ever reaches it, rather than failing
// opaquely mid-translation.
func ValidateNativeQuery(name string, nq NativeQuery) error {
	holes := argHolePattern.FindAllStringSubmatch(nq.Sql, -1)
	seen := map[string]bool{}
	for _, h := range holes {
		argName := h[1]
		seen[argName] = true
		if _, ok := nq.Arguments[argName]; !ok {
			return fmt.Errorf("native query %q references undeclared argument %q", name, argName)
		}
	}

	unused := []string{}
	for argName := range nq.Arguments {
		if !seen[argName] {
			unused = append(unused, argName)
		}
	}
	if len(unused) > 0 {
		sort.Strings(unused)
		return fmt.Errorf("native query %q declares unused argument(s): %v", name, unused)
	}

	substituted := argHolePattern.ReplaceAllLiteralString(nq.Sql, "$1")
	if _, err := pgq.Parse(substituted); err != nil {
		return fmt.Errorf("native query %q is not valid SQL once arguments are substituted: %w", name, err)
	}
	return nil
}

// ValidateNativeQueries validates every native query in a catalog, returning
// the first error encountered in name order for deterministic diagnostics.
func ValidateNativeQueries(m Metadata) error {
	names := make([]string, 0, len(m.NativeQueries))
	for name := range m.NativeQueries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := ValidateNativeQuery(name, m.NativeQueries[name]); err != nil {
			return err
		}
	}
	return nil
}
