package gormstore

import "github.com/univinfo/univload/internal/registry"

type corporationModel struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:100;not null;uniqueIndex"`
}

func (corporationModel) TableName() string { return "tbl_corporations" }

// Enumerations are stored as their labels. SQLite has no enum type, so the
// label sets are enforced by registry parsing before a row gets here.
type universityModel struct {
	ID                int64   `gorm:"primaryKey;autoIncrement"`
	Code              int64   `gorm:"column:u_code;not null;uniqueIndex"`
	Type              string  `gorm:"column:u_type;not null"`
	Name              string  `gorm:"column:u_name;size:100;not null"`
	MainBranch        string  `gorm:"column:main_branch;not null"`
	AcademicSystem    *string `gorm:"size:100"`
	IsRemote          bool    `gorm:"not null;default:false"`
	Region            string  `gorm:"not null"`
	EstablishmentType string  `gorm:"not null"`
	RelatedLaws       *string `gorm:"size:100"`
	CorporationID     *int64
	Corporation       *corporationModel `gorm:"foreignKey:CorporationID"`
	Status            string            `gorm:"column:u_status;not null"`
}

func (universityModel) TableName() string { return "tbl_university_info" }

func toModel(u *registry.University) *universityModel {
	return &universityModel{
		Code:              u.Code,
		Type:              string(u.Type),
		Name:              u.Name,
		MainBranch:        string(u.Campus),
		AcademicSystem:    u.AcademicSystem,
		IsRemote:          u.IsRemote,
		Region:            string(u.Region),
		EstablishmentType: string(u.EstablishmentType),
		RelatedLaws:       u.RelatedLaws,
		CorporationID:     u.CorporationID,
		Status:            string(u.Status),
	}
}

func fromModel(m *universityModel) registry.University {
	return registry.University{
		ID:                m.ID,
		Code:              m.Code,
		Type:              registry.SchoolType(m.Type),
		Name:              m.Name,
		Campus:            registry.CampusDesignation(m.MainBranch),
		AcademicSystem:    m.AcademicSystem,
		IsRemote:          m.IsRemote,
		Region:            registry.Region(m.Region),
		EstablishmentType: registry.EstablishmentType(m.EstablishmentType),
		RelatedLaws:       m.RelatedLaws,
		CorporationID:     m.CorporationID,
		Status:            registry.SchoolStatus(m.Status),
	}
}
