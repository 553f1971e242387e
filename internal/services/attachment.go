package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/config"
	"github.com/tracknest/tracknest/internal/models"
	"gorm.io/gorm"
)

type AttachmentService struct {
	db      *gorm.DB
	authz   *authz.Service
	storage *config.StorageConfig
}

func NewAttachmentService(db *gorm.DB, authzSvc *authz.Service, storage *config.StorageConfig) *AttachmentService {
	return &AttachmentService{db: db, authz: authzSvc, storage: storage}
}

func (s *AttachmentService) List(userID, projectID, ticketID uint) ([]models.Attachment, error) {
	if err := s.authz.RequireMembership(userID, projectID); err != nil {
		return nil, err
	}
	if err := s.ticketInProject(projectID, ticketID); err != nil {
		return nil, err
	}

	var attachments []models.Attachment
	if err := s.db.Preload("Uploader").
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// Upload stores the file under a random name and records the attachment.
// Any member may attach files to a ticket they can see.
func (s *AttachmentService) Upload(userID, projectID, ticketID uint, file *multipart.FileHeader) (*models.Attachment, error) {
	if err := s.authz.RequireMembership(userID, projectID); err != nil {
		return nil, err
	}
	if err := s.ticketInProject(projectID, ticketID); err != nil {
		return nil, err
	}

	maxBytes := int64(s.storage.MaxUploadMB) * 1024 * 1024
	if maxBytes > 0 && file.Size > maxBytes {
		return nil, fmt.Errorf("file exceeds the %dMB upload limit", s.storage.MaxUploadMB)
	}

	storedName := uuid.NewString()
	if ext := safeExtension(file.Filename); ext != "" {
		storedName += ext
	}

	if err := os.MkdirAll(s.storage.DataDir, 0o755); err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dstPath := filepath.Join(s.storage.DataDir, storedName)
	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return nil, err
	}

	attachment := models.Attachment{
		TicketID:    ticketID,
		UploaderID:  userID,
		FileName:    filepath.Base(file.Filename),
		StoredName:  storedName,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
	}
	if err := s.db.Create(&attachment).Error; err != nil {
		os.Remove(dstPath)
		return nil, err
	}

	return &attachment, nil
}

// Open returns the attachment record and a reader over its content for
// download handlers.
func (s *AttachmentService) Open(userID, projectID, ticketID, attachmentID uint) (*models.Attachment, io.ReadCloser, error) {
	if err := s.authz.RequireMembership(userID, projectID); err != nil {
		return nil, nil, err
	}

	attachment, err := s.find(projectID, ticketID, attachmentID)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.storage.DataDir, attachment.StoredName))
	if err != nil {
		return nil, nil, err
	}
	return attachment, f, nil
}

// Delete removes the attachment record and its file. Uploaders always
// may remove their own; anyone else needs the attachments moderation
// grant.
func (s *AttachmentService) Delete(userID, projectID, ticketID, attachmentID uint) error {
	attachment, err := s.find(projectID, ticketID, attachmentID)
	if err != nil {
		return err
	}

	if err := s.authz.RequireAttachmentPermission(userID, projectID, attachment.UploaderID); err != nil {
		return err
	}

	if err := s.db.Delete(attachment).Error; err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.storage.DataDir, attachment.StoredName)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *AttachmentService) find(projectID, ticketID, attachmentID uint) (*models.Attachment, error) {
	if err := s.ticketInProject(projectID, ticketID); err != nil {
		return nil, err
	}

	var attachment models.Attachment
	if err := s.db.Where("ticket_id = ?", ticketID).First(&attachment, attachmentID).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (s *AttachmentService) ticketInProject(projectID, ticketID uint) error {
	var count int64
	s.db.Model(&models.Ticket{}).
		Where("project_id = ? AND id = ?", projectID, ticketID).
		Count(&count)
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// safeExtension keeps a short, plain file extension for the stored
// name; anything odd is dropped.
func safeExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
