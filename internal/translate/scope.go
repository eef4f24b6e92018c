package translate

import "github.com/hasura/ndc-postgres-go/internal/sqlast"

// TableNameAndReference binds a catalog collection name (for column lookup)
// to its SQL reference (for code generation) — the two things every scoped
// translation step needs together.
type TableNameAndReference struct {
	Name      string
	Reference sqlast.TableReference
}

// RootAndCurrentTables is the lexical scope threaded through predicate
// translation: root-column ("$"-prefixed) references resolve against Root,
// bare column references against Current. Recursing into an Exists
// sub-predicate rebinds Current to the existentially-quantified collection
// while Root is carried through unchanged — this is what makes a root
// reference inside a three-levels-deep Exists still reach the outermost row.
type RootAndCurrentTables struct {
	Root    TableNameAndReference
	Current TableNameAndReference
}

// WithCurrent returns a copy of these scopes with Current replaced; Root is
// preserved, matching the Exists-recursion rule above.
func (s RootAndCurrentTables) WithCurrent(current TableNameAndReference) RootAndCurrentTables {
	return RootAndCurrentTables{Root: s.Root, Current: current}
}
