package postgres

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kirinyoku/cinebook/internal/backend"
)

var ErrBadAttribute = errors.New("invalid attribute name")

var attrRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

var systemColumns = map[string]string{
	backend.AttrID:        "id",
	backend.AttrCreatedAt: "created_at",
	backend.AttrUpdatedAt: "updated_at",
}

const selectDocument = `SELECT id, data, created_at, updated_at FROM documents`

// buildListQuery renders q against one collection. Attribute names and
// values are always bound as parameters.
func buildListQuery(collection string, q backend.Query) (string, []any, error) {
	args := []any{collection}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	var sb strings.Builder
	sb.WriteString(selectDocument)
	sb.WriteString(` WHERE collection = $1`)

	for _, f := range q.Filters {
		expr, err := attrExpr(f.Attribute, next)
		if err != nil {
			return "", nil, err
		}
		if expr == "created_at" || expr == "updated_at" {
			expr += "::text"
		}

		values := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			values = append(values, fmt.Sprint(v))
		}
		fmt.Fprintf(&sb, ` AND %s = ANY(%s::text[])`, expr, next(values))
	}

	orders := q.Orders
	if len(orders) == 0 {
		orders = []backend.Order{backend.OrderAsc(backend.AttrCreatedAt)}
	}

	sb.WriteString(` ORDER BY `)
	for i, o := range orders {
		expr, err := attrExpr(o.Attribute, next)
		if err != nil {
			return "", nil, err
		}
		if i > 0 {
			sb.WriteString(`, `)
		}
		sb.WriteString(expr)
		if o.Desc {
			sb.WriteString(` DESC`)
		} else {
			sb.WriteString(` ASC`)
		}
	}
	sb.WriteString(`, id ASC`)

	if q.Limit > 0 {
		fmt.Fprintf(&sb, ` LIMIT %s`, next(q.Limit))
	}

	return sb.String(), args, nil
}

func attrExpr(attr string, bind func(any) string) (string, error) {
	if col, ok := systemColumns[attr]; ok {
		return col, nil
	}
	if !attrRe.MatchString(attr) {
		return "", fmt.Errorf("%w: %q", ErrBadAttribute, attr)
	}
	return `data->>` + bind(attr), nil
}
