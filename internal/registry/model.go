package registry

import (
	"fmt"
	"unicode/utf8"
)

// MaxTextLength is the column width of every bounded text column.
const MaxTextLength = 100

// Corporation is the legal entity that owns one or more universities.
type Corporation struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// University is one row of the registry: a single university or campus.
type University struct {
	ID                int64
	Code              int64
	Type              SchoolType
	Name              string
	Campus            CampusDesignation
	AcademicSystem    *string
	IsRemote          bool
	Region            Region
	EstablishmentType EstablishmentType
	RelatedLaws       *string
	CorporationID     *int64
	Status            SchoolStatus
}

// CheckLength fails when value is longer than MaxTextLength characters.
func CheckLength(field, value string) error {
	if n := utf8.RuneCountInString(value); n > MaxTextLength {
		return fmt.Errorf("%s is %d characters, limit is %d", field, n, MaxTextLength)
	}
	return nil
}
