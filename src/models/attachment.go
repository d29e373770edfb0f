package models

import "vrs/src/types"

// Attachment is a stored file owned by any model through OwnerType/OwnerID.
type Attachment struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	OwnerID    uint   `gorm:"index:idx_attachment_owner" json:"-"`
	OwnerType  string `gorm:"index:idx_attachment_owner" json:"-"`
	Collection string `gorm:"index" json:"collection"`
	Path       string `json:"path"`
	URL        string `json:"url"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`

	types.Timestamps
}
