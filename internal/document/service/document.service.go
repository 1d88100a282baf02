package service

import (
	"strings"

	"coedit/internal/document/model"
	"coedit/internal/document/repository"
)

// DocumentService applies document rules on top of a repository. ownerID is
// always the verified caller, never a value taken from the request.
type DocumentService struct {
	Repo repository.DocumentRepository
}

func NewDocumentService(repo repository.DocumentRepository) *DocumentService {
	return &DocumentService{Repo: repo}
}

func (s *DocumentService) CreateDocument(ownerID int64, title string) (model.Document, error) {
	if strings.TrimSpace(title) == "" {
		title = model.DefaultTitle
	}
	return s.Repo.Create(title, ownerID)
}

func (s *DocumentService) ListDocuments(ownerID int64) ([]model.Document, error) {
	return s.Repo.ListByOwner(ownerID)
}

func (s *DocumentService) GetDocument(id, ownerID int64) (model.Document, error) {
	return s.Repo.Get(id, ownerID)
}

// UpdateContent replaces the whole body. Concurrent writers are not merged;
// the last one to reach the repository wins.
func (s *DocumentService) UpdateContent(id, ownerID int64, content string) (model.Document, error) {
	return s.Repo.UpdateContent(id, ownerID, content)
}

func (s *DocumentService) Rename(id, ownerID int64, title string) (model.Document, error) {
	return s.Repo.UpdateTitle(id, ownerID, title)
}

func (s *DocumentService) DeleteDocument(id, ownerID int64) error {
	return s.Repo.Delete(id, ownerID)
}
