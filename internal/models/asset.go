package models

import (
	"time"

	"gorm.io/datatypes"
)

// AssetTypeVideo is the type discriminator of video records. It is also the
// partition key used for every point read, delete and replace.
const AssetTypeVideo = "video"

// Asset is the metadata record of a media file held in the object store.
// FilePath encodes the storage location as <prefix>/<container>/<object key>.
type Asset struct {
	ID       string                       `gorm:"primaryKey;size:255" json:"id"`
	Type     string                       `gorm:"primaryKey;size:32" json:"type"`
	FilePath string                       `gorm:"size:1024;not null" json:"filePath"`
	FileName string                       `gorm:"size:255" json:"fileName"`
	Comments datatypes.JSONSlice[Comment] `json:"comments"`
	Version  int64                        `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is a user comment attached to an asset. Order of the slice is the
// order comments were appended.
type Comment struct {
	Comment   string    `json:"comment"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
}
