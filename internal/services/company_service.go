package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emploai/emploai-server/internal/constants"
	"github.com/emploai/emploai-server/internal/models"
	"github.com/emploai/emploai-server/internal/repository"
	"github.com/emploai/emploai-server/internal/storage"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrDocumentNotFound = errors.New("document not found")

// CompanyService manages the per-user company profile and its uploaded
// documents.
type CompanyService struct {
	companyRepo repository.CompanyRepository
	store       *storage.Store
	audit       *AuditService
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(companyRepo repository.CompanyRepository, store *storage.Store, audit *AuditService) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		store:       store,
		audit:       audit,
	}
}

// Get returns the user's company row, or an empty profile when none exists.
func (s *CompanyService) Get(userID uuid.UUID) (*models.CompanyInfo, error) {
	info, err := s.companyRepo.FindByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.CompanyInfo{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to load company info: %w", err)
	}
	return info, nil
}

// Upsert writes the strategic fields, preserving the stored document list.
func (s *CompanyService) Upsert(userID uuid.UUID, update models.CompanyInfo) (*models.CompanyInfo, error) {
	info, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	info.CompanyName = update.CompanyName
	info.Industry = update.Industry
	info.Mission = update.Mission
	info.Vision = update.Vision
	info.Values = update.Values
	info.Culture = update.Culture
	info.Benefits = update.Benefits
	info.ProductsServices = update.ProductsServices
	info.Policies = update.Policies
	info.UserID = userID

	if err := s.companyRepo.Upsert(info); err != nil {
		return nil, fmt.Errorf("failed to save company info: %w", err)
	}

	s.audit.Record(AuditEvent{
		ActorID:    userID.String(),
		EntityType: "company_info",
		EntityID:   info.ID.String(),
		Action:     "upsert",
	})
	return info, nil
}

// AttachDocument stores the file under {userId}/{timestamp}_{filename} and
// appends its descriptor to the company row.
func (s *CompanyService) AttachDocument(userID uuid.UUID, filename, contentType string, r io.Reader) (*models.CompanyDocument, error) {
	info, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	objectPath := storage.CompanyDocumentPath(userID.String(), filename)
	size, err := s.store.Save(objectPath, r)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := models.CompanyDocument{
		Name:        filename,
		Path:        objectPath,
		Size:        size,
		ContentType: contentType,
		UploadedAt:  time.Now(),
	}

	docs, err := s.Documents(info)
	if err != nil {
		return nil, err
	}
	docs = append(docs, doc)

	data, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode documents: %w", err)
	}
	info.Documents = datatypes.JSON(data)
	info.UserID = userID

	if err := s.companyRepo.Upsert(info); err != nil {
		return nil, fmt.Errorf("failed to save company info: %w", err)
	}

	s.audit.Record(AuditEvent{
		ActorID:    userID.String(),
		EntityType: "company_document",
		EntityID:   objectPath,
		Action:     "upload",
	})
	return &doc, nil
}

// Documents decodes the JSON document list of a company row.
func (s *CompanyService) Documents(info *models.CompanyInfo) ([]models.CompanyDocument, error) {
	if len(info.Documents) == 0 {
		return nil, nil
	}
	var docs []models.CompanyDocument
	if err := json.Unmarshal(info.Documents, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return docs, nil
}

// DocumentURL issues a one-hour signed download link for the named document.
func (s *CompanyService) DocumentURL(userID uuid.UUID, path string) (string, error) {
	info, err := s.Get(userID)
	if err != nil {
		return "", err
	}
	docs, err := s.Documents(info)
	if err != nil {
		return "", err
	}
	for _, d := range docs {
		if d.Path == path {
			return s.store.SignedURL(d.Path, constants.SignedURLTTLSeconds*time.Second), nil
		}
	}
	return "", ErrDocumentNotFound
}
