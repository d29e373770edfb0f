package lib

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/yeqown/go-qrcode"
)

// GenerateQRCode renders text to a JPEG file in TEMP_DIR (or the OS temp dir) and
// returns its path. The caller owns the file.
func GenerateQRCode(text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("qr code content is empty")
	}
	qrc, err := qrcode.New(text)
	if err != nil {
		return "", err
	}
	tempdir := os.Getenv("TEMP_DIR")
	if tempdir == "" {
		tempdir = os.TempDir()
	}
	if err := os.MkdirAll(tempdir, 0o755); err != nil {
		return "", err
	}
	filepath := filepath.Join(tempdir, fmt.Sprintf("qr-%s.jpeg", uuid.NewString()))
	if err := qrc.Save(filepath); err != nil {
		log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
		return "", err
	}
	return filepath, nil
}
