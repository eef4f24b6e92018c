package translate

import (
	"fmt"

	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
)

// NativeQueryInvocation accumulates one native-query call site discovered
// mid-translation: its declaration, the actual argument expressions bound at
// the call site, and the table alias its eventual CTE will be emitted under.
// Created by State.InsertNativeQuery, consumed by nativequery.go when the
// final plan materializes every accumulated invocation into a `WITH
// NATIVE_QUERY_<name> AS (...)` prelude.
type NativeQueryInvocation struct {
	Name      string
	Arguments map[string]ndc.Argument
	Alias     sqlast.TableAlias
}

// State is exclusively owned by one translation and mutated only
// additively: aliases only increase, the native-query list only grows.
// Never a process-wide static — every translation function that needs a
// fresh alias takes a *State explicitly, so two concurrent translations
// never share one.
type State struct {
	nextIndex     uint64
	nativeQueries []NativeQueryInvocation
}

func NewState() *State {
	return &State{}
}

func (s *State) nextGlobalIndex() uint64 {
	i := s.nextIndex
	s.nextIndex++
	return i
}

// MakeTableAlias mints a fresh, globally unique table alias with the given
// human-readable hint.
func (s *State) MakeTableAlias(hint string) sqlast.TableAlias {
	return sqlast.TableAlias{Index: s.nextGlobalIndex(), Name: hint}
}

func (s *State) MakeRelationshipTableAlias(name string) sqlast.TableAlias {
	return s.MakeTableAlias(fmt.Sprintf("RELATIONSHIP_%s", name))
}

func (s *State) MakeOrderPathPartTableAlias(tableName string) sqlast.TableAlias {
	return s.MakeTableAlias(fmt.Sprintf("ORDER_PART_%s", tableName))
}

func (s *State) MakeOrderByTableAlias(sourceTableName string) sqlast.TableAlias {
	return s.MakeTableAlias(fmt.Sprintf("ORDER_FOR_%s", sourceTableName))
}

func (s *State) MakeNativeQueryTableAlias(name string) sqlast.TableAlias {
	return s.MakeTableAlias(fmt.Sprintf("NATIVE_QUERY_%s", name))
}

func (s *State) MakeBooleanExpressionTableAlias(sourceTableName string) sqlast.TableAlias {
	return s.MakeTableAlias(fmt.Sprintf("BOOLEXP_%s", sourceTableName))
}

func (s *State) MakeNestedFieldsTableAlias(sourceTableName string) sqlast.TableAlias {
	return s.MakeTableAlias(fmt.Sprintf("NESTED_FIELDS_%s", sourceTableName))
}

func (s *State) MakeArrayTableAlias(sourceTableName string) sqlast.TableAlias {
	return s.MakeTableAlias(fmt.Sprintf("ARRAY_%s", sourceTableName))
}

// MakeVariablesTableAlias mints the one alias used for the synthetic
// variables table; called at most once per translation.
func (s *State) MakeVariablesTableAlias() sqlast.TableAlias {
	return s.MakeTableAlias("%variables_table")
}

// InsertNativeQuery records a native-query call site and returns the
// TableReference the caller should bind in the surrounding FROM/JOIN.
func (s *State) InsertNativeQuery(name string, arguments map[string]ndc.Argument) sqlast.TableReference {
	alias := s.MakeNativeQueryTableAlias(name)
	s.nativeQueries = append(s.nativeQueries, NativeQueryInvocation{Name: name, Arguments: arguments, Alias: alias})
	return sqlast.AliasedTable(alias)
}

// IntoNativeQueries consumes the accumulated native-query invocations; after
// this call the State's native-query list is empty, matching the Rust
// original's consuming `into_native_queries`.
func (s *State) IntoNativeQueries() []NativeQueryInvocation {
	nqs := s.nativeQueries
	s.nativeQueries = nil
	return nqs
}
