package repository

import (
	"strings"

	"github.com/hpmalinova/Expense-Tracker/query"
)

const likeEscape = '!'

// whereClause renders c as a WHERE clause. Every clause starts with the owner
// predicate; the optional filters are AND-ed after it.
func whereClause(c query.Criteria, b *binder) string {
	conds := []string{"user_id = " + b.bind(c.UserID)}

	if c.Search != "" {
		conds = append(conds, b.d.Lower+"(title) LIKE "+b.bind(likePattern(c.Search))+" ESCAPE '!'")
	}
	if c.Category != "" {
		conds = append(conds, "category = "+b.bind(c.Category))
	}
	if c.StartDate != nil {
		conds = append(conds, "date >= "+b.bind(c.StartDate.UTC()))
	}
	if c.EndDate != nil {
		conds = append(conds, "date <= "+b.bind(c.EndDate.UTC()))
	}
	if c.MinAmount != nil {
		conds = append(conds, "amount >= "+b.bind(*c.MinAmount))
	}
	if c.MaxAmount != nil {
		conds = append(conds, "amount <= "+b.bind(*c.MaxAmount))
	}

	return " WHERE " + strings.Join(conds, " AND ")
}

// likePattern lower-cases s, escapes LIKE wildcards and wraps it for a
// substring match.
func likePattern(s string) string {
	var sb strings.Builder
	sb.WriteByte('%')
	for _, r := range strings.ToLower(s) {
		if r == '%' || r == '_' || r == likeEscape {
			sb.WriteRune(likeEscape)
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('%')
	return sb.String()
}
