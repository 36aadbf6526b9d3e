package importer

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/univinfo/univload/internal/registry"
	"github.com/univinfo/univload/internal/sheet"
)

var (
	errRequired   = errors.New("value is required")
	errNotInteger = errors.New("not an integer")
	errNotBool    = errors.New("not a yes/no value")
)

// mapRow converts one spreadsheet row into a University. Every column is
// checked so a failure names all bad cells, not just the first one.
func mapRow(row sheet.Row, corporationID *int64) (*registry.University, error) {
	var errs []error
	field := func(col string, err error) {
		if err != nil {
			errs = append(errs, &FieldError{Column: col, Value: row.Get(col), Err: err})
		}
	}

	u := &registry.University{CorporationID: corporationID}
	var err error

	u.Type, err = registry.ParseSchoolType(row.Get(ColSchoolType))
	field(ColSchoolType, err)
	u.Campus, err = registry.ParseCampusDesignation(row.Get(ColCampus))
	field(ColCampus, err)
	u.Region, err = registry.ParseRegion(row.Get(ColRegion))
	field(ColRegion, err)
	u.EstablishmentType, err = registry.ParseEstablishmentType(row.Get(ColEstablishmentType))
	field(ColEstablishmentType, err)
	u.Status, err = registry.ParseSchoolStatus(row.Get(ColStatus))
	field(ColStatus, err)

	u.Code, err = parseCode(row.Get(ColCode))
	field(ColCode, err)
	u.Name, err = requiredText(ColName, row.Get(ColName))
	field(ColName, err)
	u.IsRemote, err = parseBool(row.Get(ColRemote))
	field(ColRemote, err)
	u.AcademicSystem, err = optionalText(ColAcademicSystem, row.Get(ColAcademicSystem))
	field(ColAcademicSystem, err)
	u.RelatedLaws, err = optionalText(ColRelatedLaws, row.Get(ColRelatedLaws))
	field(ColRelatedLaws, err)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return u, nil
}

// parseCode accepts plain integers and integral float text ("1001.0",
// "1.001E3"), which is how some spreadsheet tools store numeric cells.
func parseCode(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errRequired
	}
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, errNotInteger
	}
	return int64(f), nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "f", "n", "no", "x", "아니오", "아니요":
		return false, nil
	case "1", "true", "t", "y", "yes", "o", "예":
		return true, nil
	default:
		return false, errNotBool
	}
}

func requiredText(col, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errRequired
	}
	if err := registry.CheckLength(col, s); err != nil {
		return "", err
	}
	return s, nil
}

func optionalText(col, s string) (*string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if err := registry.CheckLength(col, s); err != nil {
		return nil, err
	}
	return &s, nil
}
