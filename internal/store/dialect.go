package store

import (
	"strconv"
	"strings"
)

// dialect captures the differences between the supported drivers. Queries
// are written with ? placeholders and rebound for drivers that number them.
type dialect struct {
	driverName string
	numbered   bool
}

var (
	sqliteDialect   = dialect{driverName: "sqlite"}
	postgresDialect = dialect{driverName: "pgx", numbered: true}
)

// rebind rewrites ? placeholders as $1, $2, ... when the dialect needs it.
// Queries in this package never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			sb.WriteByte(query[i])
			continue
		}
		n++
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(n))
	}
	return sb.String()
}
