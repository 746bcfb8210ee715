// Package cursorpaging provides keyset (cursor based) pagination primitives.
//
// Overview
//
// A PageRequest describes a page by a list of positions (sort keys with the
// values of the last element of the previous page), a tree of filters, custom
// filter rules and a page size. Loading a page yields a Page which carries the
// request used to fetch it (Self) and, if more elements are available, the
// request for the following page (Next).
//
// Key concepts
//   - Attribute: addresses a column of the underlying table and the struct
//     field holding its value. Nullable attributes are ordered NULLS LAST for
//     ascending and NULLS FIRST for descending order.
//   - Position: attribute + order + the value to continue from. The
//     combination of all positions must uniquely address a row, which is
//     usually achieved by adding the primary key as the last position.
//   - Filter / FilterList: removes elements from the result (EQ, IN, GT, GE,
//     LT, LE, LIKE combined with AND / OR).
//   - FilterRule: a named custom condition which can be rebuilt from its
//     parameters after a request has been serialized.
//   - Condition: a backend neutral predicate tree rendered to plain SQL with
//     "?" placeholders or to a gorm clause.Expression.
//
// The gorm backend lives in this package (Paginate, GormRepository). The
// sqpaging and bunpaging packages provide squirrel/pgx and bun backends, the
// serializer package turns requests into opaque encrypted cursors and the api
// package contains helpers for REST endpoints.
package cursorpaging
