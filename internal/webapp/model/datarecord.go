package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/Alp4ka/cursorpaging"
)

// AuditInfo holds the creation and modification times of a record.
type AuditInfo struct {
	CreatedAt  time.Time `gorm:"column:created_at;not null;index"`
	ModifiedAt time.Time `gorm:"column:modified_at;not null;index;autoUpdateTime"`
}

type DataRecord struct {
	ID        uuid.UUID `gorm:"column:id;type:varchar(36);primaryKey"`
	Name      string    `gorm:"column:name;not null;index"`
	Version   int64     `gorm:"column:obj_ver;not null;default:0"`
	AuditInfo AuditInfo `gorm:"embedded"`
}

func (DataRecord) TableName() string {
	return "datarecord"
}

// NewDataRecord creates a record with a random id, created and modified now.
func NewDataRecord(name string, now time.Time) DataRecord {
	now = now.UTC()

	return DataRecord{
		ID:        uuid.New(),
		Name:      name,
		AuditInfo: AuditInfo{CreatedAt: now, ModifiedAt: now},
	}
}

// Attributes of a DataRecord addressable in page requests.
var (
	AttrID         = cursorpaging.Attr("id", cursorpaging.TypeUUID).WithField("ID")
	AttrName       = cursorpaging.Attr("name", cursorpaging.TypeString).WithField("Name")
	AttrCreatedAt  = cursorpaging.Attr("created_at", cursorpaging.TypeTime).WithField("AuditInfo", "CreatedAt")
	AttrModifiedAt = cursorpaging.Attr("modified_at", cursorpaging.TypeTime).WithField("AuditInfo", "ModifiedAt")

	Attributes = cursorpaging.NewAttributes(AttrID, AttrName, AttrCreatedAt, AttrModifiedAt)
)

// Getters read the position values of a DataRecord without reflection.
var Getters = cursorpaging.Getters[DataRecord]{
	AttrID.Name:         func(r DataRecord) any { return r.ID },
	AttrName.Name:       func(r DataRecord) any { return r.Name },
	AttrCreatedAt.Name:  func(r DataRecord) any { return r.AuditInfo.CreatedAt },
	AttrModifiedAt.Name: func(r DataRecord) any { return r.AuditInfo.ModifiedAt },
}

// FirstPage is the default request of the record listing: by name, then by id.
func FirstPage(pageSize int) *cursorpaging.PageRequest {
	return cursorpaging.NewPageRequest().
		Asc(AttrName).
		Asc(AttrID).
		WithPageSize(pageSize)
}

type DtoDataRecord struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

func ToDto(r DataRecord) DtoDataRecord {
	return DtoDataRecord{
		ID:         r.ID,
		Name:       r.Name,
		CreatedAt:  r.AuditInfo.CreatedAt,
		ModifiedAt: r.AuditInfo.ModifiedAt,
	}
}
