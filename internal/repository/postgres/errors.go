package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// isMalformedID reports a non-UUID value compared against a UUID column.
// Such ids cannot match any row.
func isMalformedID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation
}
