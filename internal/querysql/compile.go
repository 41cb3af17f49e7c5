// Package querysql renders relations as parameterized SQLite SQL over the
// record table maintained by package store.
//
// Records are stored as canonical JSON; attributes are read with
// json_extract. The rendered query matches in-memory materialization for
// records that carry every attribute the relation reads:
//   - ordering keys compare with COLLATE BINARY, and ties fall back to the
//     insertion sequence, which reproduces the stable sort;
//   - SQLite sorts NULL first ascending and last descending, as ir.Compare
//     does.
//
// Values and JSON paths are always bound as parameters, never interpolated.
package querysql

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/relq/internal/ir"
	"github.com/roach88/relq/internal/order"
	"github.com/roach88/relq/internal/predicate"
	"github.com/roach88/relq/internal/relation"
)

// ErrNotPortable is returned for relations that cannot be expressed in SQL,
// such as those filtering with custom functions.
var ErrNotPortable = errors.New("relation is not portable to SQL")

// Default table layout, shared with package store.
const (
	DefaultTable            = "records"
	DefaultCollectionColumn = "collection"
	DefaultSeqColumn        = "seq"
	DefaultDataColumn       = "data"
)

// SQLCompiler compiles relations to parameterized SQL for SQLite.
type SQLCompiler struct {
	Table            string
	CollectionColumn string
	SeqColumn        string
	DataColumn       string
}

// NewSQLCompiler creates a compiler for the default table layout.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{
		Table:            DefaultTable,
		CollectionColumn: DefaultCollectionColumn,
		SeqColumn:        DefaultSeqColumn,
		DataColumn:       DefaultDataColumn,
	}
}

// Compile converts rel to SQL selecting (seq, data) rows.
// Returns (sql, params, error).
//
// Extensions are ignored; they run on materialized records.
func (c *SQLCompiler) Compile(rel *relation.Relation) (string, []any, error) {
	if rel == nil {
		return "", nil, fmt.Errorf("cannot compile nil relation")
	}
	if err := rel.Err(); err != nil {
		return "", nil, err
	}

	where, params, err := c.compilePredicate(rel.Predicate())
	if err != nil {
		return "", nil, fmt.Errorf("compile where: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s, %s FROM %s WHERE %s = ?",
		c.SeqColumn, c.DataColumn, c.Table, c.CollectionColumn)
	all := []any{rel.Model().Name()}
	if where != "" {
		sb.WriteString(" AND ")
		sb.WriteString(where)
		all = append(all, params...)
	}

	orderSQL, orderParams, err := c.compileOrder(rel.OrderClause())
	if err != nil {
		return "", nil, fmt.Errorf("compile order: %w", err)
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderSQL)
	all = append(all, orderParams...)

	limit, hasLimit := rel.LimitValue()
	offset, hasOffset := rel.OffsetValue()
	switch {
	case hasLimit:
		sb.WriteString(" LIMIT ?")
		all = append(all, int64(limit))
	case hasOffset:
		// SQLite has no OFFSET without LIMIT; -1 means no limit.
		sb.WriteString(" LIMIT -1")
	}
	if hasOffset {
		sb.WriteString(" OFFSET ?")
		all = append(all, int64(offset))
	}

	return sb.String(), all, nil
}

// compilePredicate returns "" for the identity predicate.
func (c *SQLCompiler) compilePredicate(p predicate.Predicate) (string, []any, error) {
	if predicate.IsIdentity(p) {
		return "", nil, nil
	}
	if res := predicate.Validate(p); !res.IsPortable {
		return "", nil, fmt.Errorf("%w: %s", ErrNotPortable, strings.Join(res.Warnings, "; "))
	}
	return c.compileNode(p)
}

func (c *SQLCompiler) compileNode(p predicate.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case predicate.Equals:
		return c.compileEquals(pred)
	case predicate.Not:
		inner, params, err := c.compileNode(pred.Predicate)
		if err != nil {
			return "", nil, err
		}
		return "NOT (" + inner + ")", params, nil
	case predicate.All:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil, nil // Always true (vacuous truth)
		}
		var parts []string
		var params []any
		for _, sub := range pred.Predicates {
			sql, subParams, err := c.compileNode(sub)
			if err != nil {
				return "", nil, err
			}
			if len(pred.Predicates) > 1 {
				sql = "(" + sql + ")"
			}
			parts = append(parts, sql)
			params = append(params, subParams...)
		}
		return strings.Join(parts, " AND "), params, nil
	case nil:
		return "1 = 1", nil, nil
	default:
		return "", nil, fmt.Errorf("%w: unsupported predicate type %T", ErrNotPortable, p)
	}
}

// compileEquals renders "json_extract(data, ?) = ?". Null compares through
// json_type because json_extract yields SQL NULL for JSON null.
func (c *SQLCompiler) compileEquals(eq predicate.Equals) (string, []any, error) {
	path, err := jsonPath(eq.Attribute)
	if err != nil {
		return "", nil, err
	}
	if _, isNull := eq.Value.(ir.IRNull); isNull {
		return fmt.Sprintf("json_type(%s, ?) = 'null'", c.DataColumn), []any{path}, nil
	}

	param, err := irValueToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("attribute %q: %w", eq.Attribute, err)
	}
	sql := fmt.Sprintf("json_type(%s, ?) = ? AND json_extract(%s, ?) = ?", c.DataColumn, c.DataColumn)
	return sql, []any{path, jsonType(eq.Value), path, param}, nil
}

func (c *SQLCompiler) compileOrder(clause order.Clause) (string, []any, error) {
	var parts []string
	var params []any
	for _, key := range clause {
		path, err := jsonPath(key.Attribute())
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, fmt.Sprintf("json_extract(%s, ?) COLLATE BINARY %s",
			c.DataColumn, strings.ToUpper(string(order.DirectionOf(key)))))
		params = append(params, path)
	}
	// Insertion order breaks ties, matching the stable in-memory sort.
	parts = append(parts, c.SeqColumn+" ASC")
	return strings.Join(parts, ", "), params, nil
}

// jsonPath quotes attr as a single JSON path label.
func jsonPath(attr string) (string, error) {
	if attr == "" {
		return "", fmt.Errorf("empty attribute name")
	}
	if strings.ContainsAny(attr, "\"\\") {
		return "", fmt.Errorf("%w: attribute %q cannot be addressed by a JSON path", ErrNotPortable, attr)
	}
	return `$."` + attr + `"`, nil
}

// jsonType names the json_type of a scalar so that, e.g., the string "1"
// never equals the integer 1.
func jsonType(v ir.IRValue) string {
	switch val := v.(type) {
	case ir.IRString:
		return "text"
	case ir.IRInt:
		return "integer"
	case ir.IRBool:
		if val {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// irValueToParam converts an ir.IRValue to a Go native type for SQL parameter.
// Arrays and objects are not supported as SQL parameters.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return norm.NFC.String(string(val)), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRBool:
		return bool(val), nil
	case ir.IRNull:
		return nil, nil
	case ir.IRArray:
		return nil, fmt.Errorf("%w: IRArray cannot be used as SQL parameter directly", ErrNotPortable)
	case ir.IRObject:
		return nil, fmt.Errorf("%w: IRObject cannot be used as SQL parameter directly", ErrNotPortable)
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}
