package cursorpaging

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"
)

// Condition is a backend neutral SQL predicate.
//
// ToSQL renders the predicate with "?" placeholders and returns the values
// for them. Expression renders the same predicate as a gorm clause.
type Condition interface {
	ToSQL() (string, []any)
	Expression() clause.Expression
}

type (
	// tPredicate is a leaf condition of the form "SQL" with positional vars.
	tPredicate struct {
		sql  string
		vars []any
	}

	// tIn is "column IN (v1, v2, ...)".
	tIn struct {
		column string
		values []any
	}

	// tJunction joins two or more conditions with AND or OR.
	tJunction struct {
		or         bool
		conditions []Condition
	}
)

// Compare builds "column operator ?".
func Compare(column string, operator Operator, value any) Condition {
	return tPredicate{sql: fmt.Sprintf("%s %s ?", column, operator), vars: []any{value}}
}

// In builds "column IN (...)". A single value is rendered as equality.
func In(column string, values ...any) Condition {
	if len(values) == 1 {
		return Compare(column, OperatorEq, values[0])
	}

	return tIn{column: column, values: values}
}

func Like(column string, pattern string) Condition {
	return tPredicate{sql: fmt.Sprintf("%s LIKE ?", column), vars: []any{pattern}}
}

func IsNull(column string) Condition {
	return tPredicate{sql: fmt.Sprintf("%s IS NULL", column)}
}

func IsNotNull(column string) Condition {
	return tPredicate{sql: fmt.Sprintf("%s IS NOT NULL", column)}
}

// Raw wraps an SQL fragment with "?" placeholders.
func Raw(sql string, args ...any) Condition {
	return tPredicate{sql: sql, vars: args}
}

// AllOf joins conditions with AND. Nil conditions are skipped, nil is
// returned if nothing remains.
func AllOf(conditions ...Condition) Condition {
	return junction(false, conditions)
}

// AnyOf joins conditions with OR. Nil conditions are skipped, nil is
// returned if nothing remains.
func AnyOf(conditions ...Condition) Condition {
	return junction(true, conditions)
}

func junction(or bool, conditions []Condition) Condition {
	conditions = lo.Filter(conditions, func(c Condition, _ int) bool {
		return c != nil
	})

	switch len(conditions) {
	case 0:
		return nil
	case 1:
		return conditions[0]
	default:
		return tJunction{or: or, conditions: conditions}
	}
}

// ConditionToSQL renders a possibly nil condition. Nil renders as "TRUE".
func ConditionToSQL(c Condition) (string, []any) {
	if c == nil {
		return "TRUE", nil
	}

	return c.ToSQL()
}

// WhereSQL renders c for a WHERE clause joined with other predicates by AND.
func WhereSQL(c Condition) (string, []any) {
	sql, vars := ConditionToSQL(c)
	if p, ok := c.(tPredicate); ok && isCompound(p.sql) {
		sql = fmt.Sprintf("(%s)", sql)
	}

	return sql, vars
}

func (p tPredicate) ToSQL() (string, []any) {
	return p.sql, p.vars
}

func (p tPredicate) Expression() clause.Expression {
	return clause.Expr{SQL: p.sql, Vars: p.vars}
}

func (i tIn) ToSQL() (string, []any) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(i.values)), ", ")

	return fmt.Sprintf("%s IN (%s)", i.column, placeholders), i.values
}

// Expression lets gorm expand the value list.
func (i tIn) Expression() clause.Expression {
	return clause.Expr{SQL: fmt.Sprintf("%s IN ?", i.column), Vars: []any{i.values}}
}

func (j tJunction) separator() string {
	return lo.Ternary(j.or, " OR ", " AND ")
}

// ToSQL converts a junction (K1, K2, K3) into "(K1 AND K2 AND K3)" or
// "(K1 OR K2 OR K3)". Raw fragments containing AND / OR are parenthesized.
//
// Example:
//
//	AnyOf(Compare("id", ">", 10), AllOf(Compare("id", "=", 10), Compare("name", ">", "abc")))
//
// Result:
//
//	("(id > ? OR (id = ? AND name > ?))", [10, 10, "abc"])
func (j tJunction) ToSQL() (string, []any) {
	clauses := make([]string, 0, len(j.conditions))
	values := make([]any, 0, len(j.conditions))

	for _, c := range j.conditions {
		sql, vars := c.ToSQL()
		if p, ok := c.(tPredicate); ok && isCompound(p.sql) {
			sql = fmt.Sprintf("(%s)", sql)
		}

		clauses = append(clauses, sql)
		values = append(values, vars...)
	}

	return fmt.Sprintf("(%s)", strings.Join(clauses, j.separator())), values
}

// Expression converts a junction into clause.And / clause.Or.
func (j tJunction) Expression() clause.Expression {
	expressions := lo.Map(j.conditions, func(c Condition, _ int) clause.Expression {
		return c.Expression()
	})

	if j.or {
		return clause.Or(expressions...)
	}

	return clause.And(expressions...)
}

func isCompound(sql string) bool {
	upper := strings.ToUpper(sql)
	return strings.Contains(upper, " AND ") || strings.Contains(upper, " OR ")
}
