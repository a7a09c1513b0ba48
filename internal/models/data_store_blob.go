package models

import (
	"time"

	"gorm.io/datatypes"
)

// DataStoreBlob holds one serialized data store snapshot per key.
type DataStoreBlob struct {
	Key       string         `gorm:"size:100;primaryKey" json:"key"`
	Value     datatypes.JSON `gorm:"type:json;not null" json:"value"` // json keeps key order, jsonb does not
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName specifies the table name for DataStoreBlob
func (DataStoreBlob) TableName() string {
	return "app_data_stores"
}
