package appwrite

import (
	"github.com/appwrite/sdk-for-go/query"

	"github.com/kirinyoku/cinebook/internal/backend"
)

// encodeQueries renders q as Appwrite query strings, one per queries[]
// parameter.
func encodeQueries(q backend.Query) []string {
	out := make([]string, 0, len(q.Filters)+len(q.Orders)+1)

	for _, f := range q.Filters {
		out = append(out, query.Equal(f.Attribute, f.Values))
	}
	for _, o := range q.Orders {
		if o.Desc {
			out = append(out, query.OrderDesc(o.Attribute))
		} else {
			out = append(out, query.OrderAsc(o.Attribute))
		}
	}
	if q.Limit > 0 {
		out = append(out, query.Limit(q.Limit))
	}

	return out
}
