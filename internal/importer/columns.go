package importer

// Spreadsheet header names the importer reads.
const (
	ColSchoolType        = "학교구분"
	ColCode              = "학교코드"
	ColName              = "학교명"
	ColCampus            = "본분교"
	ColAcademicSystem    = "학제"
	ColRemote            = "원격대학"
	ColRegion            = "지역"
	ColEstablishmentType = "설립구분"
	ColRelatedLaws       = "관련법령"
	ColCorporation       = "법인명"
	ColStatus            = "학교상태"
)

// RequiredColumns lists every header the spreadsheet must expose, in report order.
var RequiredColumns = []string{
	ColSchoolType,
	ColCode,
	ColName,
	ColCampus,
	ColAcademicSystem,
	ColRemote,
	ColRegion,
	ColEstablishmentType,
	ColRelatedLaws,
	ColCorporation,
	ColStatus,
}
