package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientFilter narrows clientes listings. Zero values mean "no predicate";
// Limit 0 returns every match.
type ClientFilter struct {
	Status string
	Name   string
	Limit  int
	Offset int
}

type ProductFilter struct {
	Status string
	Name   string
	Limit  int
	Offset int
}

type InvoiceFilter struct {
	Status   string
	ClientID *uuid.UUID
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

type MovementFilter struct {
	Type                 string
	ClientName           string
	InvoiceID            *uuid.UUID
	// ExcludeInvoiceStatus drops movements whose invoice is in this status.
	// Movements without an invoice are kept.
	ExcludeInvoiceStatus string
	From                 *time.Time
	To                   *time.Time
	Limit                int
	Offset               int
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsFold matches column case-insensitively on every engine we run on.
// Wildcards in term match literally.
func containsFold(q *gorm.DB, column, term string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" {
		return q
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	return q.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", pattern)
}

func dateRange(q *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil {
		q = q.Where(column+" >= ?", *from)
	}
	if to != nil {
		q = q.Where(column+" <= ?", *to)
	}
	return q
}

func page(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}
