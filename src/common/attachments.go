package common

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"vrs/src/db"
	"vrs/src/lib"
	"vrs/src/models"

	"gorm.io/gorm"
)

type upload struct {
	name     string
	fileName string
	mimeType string
	size     int64
	open     func() (io.ReadCloser, error)
}

func uploadFromHeader(name string, fh *multipart.FileHeader) upload {
	return upload{
		name:     name,
		fileName: fh.Filename,
		mimeType: fh.Header.Get("Content-Type"),
		size:     fh.Size,
		open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func uploadFromFile(name string, path string, mimeType string) (upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return upload{}, err
	}
	return upload{
		name:     name,
		fileName: filepath.Base(path),
		mimeType: mimeType,
		size:     info.Size(),
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// storeUpload writes u to file storage and returns the attachment row describing it.
// The row is not saved.
func storeUpload(ctx context.Context, ownerType string, ownerID uint, collection string, u upload) (*models.Attachment, error) {
	key := lib.StorageKey(fmt.Sprintf("%ss", ownerType), ownerID, u.name, u.fileName)
	r, err := u.open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if u.mimeType == "" {
		u.mimeType = "application/octet-stream"
	}
	url, err := lib.GetStorage().Put(ctx, key, r, u.mimeType)
	if err != nil {
		log.Printf("Error storing %s for %s %d: %s\n", collection, ownerType, ownerID, err.Error())
		return nil, err
	}
	return &models.Attachment{
		OwnerID:    ownerID,
		OwnerType:  ownerType,
		Collection: collection,
		Path:       key,
		URL:        url,
		FileName:   u.fileName,
		MimeType:   u.mimeType,
		Size:       u.size,
	}, nil
}

// swapAttachmentTx saves a in place of the owner's attachments in the same collection
// and returns the rows it replaced.
func swapAttachmentTx(tx *gorm.DB, a *models.Attachment) ([]models.Attachment, error) {
	var replaced []models.Attachment
	if err := ownerAttachments(tx, a.OwnerType, a.OwnerID, a.Collection).Find(&replaced).Error; err != nil {
		return nil, err
	}
	if len(replaced) > 0 {
		if err := tx.Delete(&replaced).Error; err != nil {
			return nil, err
		}
	}
	if err := tx.Create(a).Error; err != nil {
		return nil, err
	}
	return replaced, nil
}

func purgeFiles(ctx context.Context, attachments []models.Attachment) {
	store := lib.GetStorage()
	for _, a := range attachments {
		if err := store.Delete(ctx, a.Path); err != nil {
			log.Printf("Error removing file %s: %s\n", a.Path, err.Error())
		}
	}
}

// replaceAttachment stores u and swaps it in for any attachment the owner already
// has in collection. Replaced files are removed from storage after the swap commits.
func replaceAttachment(ctx context.Context, ownerType string, ownerID uint, collection string, u upload) (*models.Attachment, error) {
	attachment, err := storeUpload(ctx, ownerType, ownerID, collection, u)
	if err != nil {
		return nil, err
	}
	var replaced []models.Attachment
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		replaced, err = swapAttachmentTx(tx, attachment)
		return err
	})
	if err != nil {
		purgeFiles(ctx, []models.Attachment{*attachment})
		return nil, err
	}
	purgeFiles(ctx, replaced)
	return attachment, nil
}

// removeAttachments deletes every attachment of the owner in collection.
func removeAttachments(ctx context.Context, ownerType string, ownerID uint, collection string) error {
	var existing []models.Attachment
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownerAttachments(tx, ownerType, ownerID, collection).Find(&existing).Error; err != nil {
			return err
		}
		if len(existing) == 0 {
			return nil
		}
		return tx.Delete(&existing).Error
	})
	if err != nil {
		return err
	}
	purgeFiles(ctx, existing)
	return nil
}

func ownerAttachments(tx *gorm.DB, ownerType string, ownerID uint, collection string) *gorm.DB {
	return tx.
		Model(&models.Attachment{}).
		Where("owner_type = ? AND owner_id = ? AND collection = ?", ownerType, ownerID, collection)
}
