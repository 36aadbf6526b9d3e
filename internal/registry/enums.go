package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLabel is wrapped by every enumeration parse failure.
var ErrUnknownLabel = errors.New("unknown label")

// LabelError reports a spreadsheet label that is not a member of an enumeration.
type LabelError struct {
	Category string
	Label    string
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("%s: %q is not a recognised label", e.Category, e.Label)
}

func (e *LabelError) Unwrap() error { return ErrUnknownLabel }

// SchoolType is 학교구분.
type SchoolType string

const (
	SchoolTypeJuniorCollege      SchoolType = "전문대학"
	SchoolTypeUniversity         SchoolType = "대학"
	SchoolTypeGraduateSchool     SchoolType = "대학원"
	SchoolTypeGraduateUniversity SchoolType = "대학원대학"
)

// SchoolTypes lists the members in schema order.
var SchoolTypes = []SchoolType{
	SchoolTypeJuniorCollege,
	SchoolTypeUniversity,
	SchoolTypeGraduateSchool,
	SchoolTypeGraduateUniversity,
}

// CampusDesignation is 본분교.
type CampusDesignation string

const (
	CampusMain   CampusDesignation = "본교"
	CampusBranch CampusDesignation = "분교"
	CampusSecond CampusDesignation = "제2캠퍼스"
	CampusThird  CampusDesignation = "제3캠퍼스"
	CampusFourth CampusDesignation = "제4캠퍼스"
)

var CampusDesignations = []CampusDesignation{
	CampusMain,
	CampusBranch,
	CampusSecond,
	CampusThird,
	CampusFourth,
}

// Region is 지역, one of the 17 first-level administrative regions.
type Region string

const (
	RegionSeoul     Region = "서울"
	RegionIncheon   Region = "인천"
	RegionGyeonggi  Region = "경기"
	RegionGangwon   Region = "강원"
	RegionChungbuk  Region = "충북"
	RegionChungnam  Region = "충남"
	RegionSejong    Region = "세종"
	RegionDaejeon   Region = "대전"
	RegionGyeongbuk Region = "경북"
	RegionDaegu     Region = "대구"
	RegionGyeongnam Region = "경남"
	RegionBusan     Region = "부산"
	RegionUlsan     Region = "울산"
	RegionJeonbuk   Region = "전북"
	RegionJeonnam   Region = "전남"
	RegionGwangju   Region = "광주"
	RegionJeju      Region = "제주"
)

var Regions = []Region{
	RegionSeoul, RegionIncheon, RegionGyeonggi, RegionGangwon,
	RegionChungbuk, RegionChungnam, RegionSejong, RegionDaejeon,
	RegionGyeongbuk, RegionDaegu, RegionGyeongnam, RegionBusan,
	RegionUlsan, RegionJeonbuk, RegionJeonnam, RegionGwangju,
	RegionJeju,
}

// EstablishmentType is 설립구분.
type EstablishmentType string

const (
	EstablishmentPublic              EstablishmentType = "공립"
	EstablishmentNational            EstablishmentType = "국립"
	EstablishmentPrivate             EstablishmentType = "사립"
	EstablishmentNationalCorporate   EstablishmentType = "국립대법인"
	EstablishmentSpecialLawNational  EstablishmentType = "특별법국립"
	EstablishmentSpecialLawCorporate EstablishmentType = "특별법법인"
	EstablishmentOther               EstablishmentType = "기타"
)

var EstablishmentTypes = []EstablishmentType{
	EstablishmentPublic,
	EstablishmentNational,
	EstablishmentPrivate,
	EstablishmentNationalCorporate,
	EstablishmentSpecialLawNational,
	EstablishmentSpecialLawCorporate,
	EstablishmentOther,
}

// SchoolStatus is 학교상태.
type SchoolStatus string

const (
	StatusExisting SchoolStatus = "기존"
	StatusClosed   SchoolStatus = "폐교"
	StatusNew      SchoolStatus = "신설"
)

var SchoolStatuses = []SchoolStatus{StatusExisting, StatusClosed, StatusNew}

// parseLabel matches label exactly (after trimming surrounding whitespace).
func parseLabel[T ~string](category, label string, members []T) (T, error) {
	trimmed := strings.TrimSpace(label)
	for _, m := range members {
		if string(m) == trimmed {
			return m, nil
		}
	}
	var zero T
	return zero, &LabelError{Category: category, Label: label}
}

func ParseSchoolType(label string) (SchoolType, error) {
	return parseLabel("school type", label, SchoolTypes)
}

func ParseCampusDesignation(label string) (CampusDesignation, error) {
	return parseLabel("campus designation", label, CampusDesignations)
}

func ParseRegion(label string) (Region, error) {
	return parseLabel("region", label, Regions)
}

func ParseEstablishmentType(label string) (EstablishmentType, error) {
	return parseLabel("establishment type", label, EstablishmentTypes)
}

func ParseSchoolStatus(label string) (SchoolStatus, error) {
	return parseLabel("school status", label, SchoolStatuses)
}
