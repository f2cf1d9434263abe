package filetype

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

const presentationMIME = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// FileTypeInfo contains detected file type information.
type FileTypeInfo struct {
	MIMEType       string
	Extension      string
	IsPresentation bool
}

// Detector handles file type detection using magic bytes.
type Detector struct{}

// New creates a new file type detector.
func New() *Detector {
	return &Detector{}
}

// Detect detects the actual file type using magic bytes, not the filename.
func (d *Detector) Detect(filePath string) (*FileTypeInfo, error) {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}

	info := &FileTypeInfo{
		MIMEType:       mtype.String(),
		Extension:      mtype.Extension(),
		IsPresentation: mtype.Is(presentationMIME),
	}
	log.Debug().Str("path", filePath).Str("mime", info.MIMEType).Msg("file type detected")
	return info, nil
}

// RequirePresentation fails unless the file detects as a PowerPoint OOXML
// presentation.
func (d *Detector) RequirePresentation(filePath string) error {
	info, err := d.Detect(filePath)
	if err != nil {
		return err
	}
	if !info.IsPresentation {
		return fmt.Errorf("%s is not a PowerPoint presentation (detected %s)", filePath, info.MIMEType)
	}
	return nil
}
