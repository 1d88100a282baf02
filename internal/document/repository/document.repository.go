package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"coedit/internal/document/model"
	"coedit/pkg/apperror"
	"coedit/pkg/logger"
)

// DocumentRepository stores documents. Every call except Create is scoped by
// owner: a document owned by someone else is reported as apperror.ErrNotFound.
type DocumentRepository interface {
	Create(title string, ownerID int64) (model.Document, error)
	ListByOwner(ownerID int64) ([]model.Document, error)
	Get(id, ownerID int64) (model.Document, error)
	UpdateContent(id, ownerID int64, content string) (model.Document, error)
	UpdateTitle(id, ownerID int64, title string) (model.Document, error)
	Delete(id, ownerID int64) error
}

const documentColumns = "id, title, content, owner_id, created_at, updated_at"

type PostgresDocumentRepository struct {
	DB *sql.DB
}

func NewPostgresDocumentRepository(db *sql.DB) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (model.Document, error) {
	var d model.Document
	err := row.Scan(&d.ID, &d.Title, &d.Content, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func notFound(id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("document %d: %w", id, apperror.ErrNotFound)
	}
	return err
}

func (r *PostgresDocumentRepository) Create(title string, ownerID int64) (model.Document, error) {
	d, err := scanDocument(r.DB.QueryRow(`INSERT INTO documents (title, content, owner_id, created_at, updated_at)
		VALUES ($1, '', $2, NOW(), NOW()) RETURNING `+documentColumns, title, ownerID))
	if err != nil {
		logger.Sugar.Errorf("Failed to create document: %v", err)
	}
	return d, err
}

func (r *PostgresDocumentRepository) ListByOwner(ownerID int64) ([]model.Document, error) {
	rows, err := r.DB.Query("SELECT "+documentColumns+" FROM documents WHERE owner_id = $1 ORDER BY id ASC", ownerID)
	if err != nil {
		logger.Sugar.Errorf("Failed to get documents for user %d: %v", ownerID, err)
		return nil, err
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan document row: %v", err)
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *PostgresDocumentRepository) Get(id, ownerID int64) (model.Document, error) {
	d, err := scanDocument(r.DB.QueryRow("SELECT "+documentColumns+" FROM documents WHERE id = $1 AND owner_id = $2", id, ownerID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Sugar.Errorf("Failed to get doc %d: %v", id, err)
	}
	return d, notFound(id, err)
}

func (r *PostgresDocumentRepository) UpdateContent(id, ownerID int64, content string) (model.Document, error) {
	d, err := scanDocument(r.DB.QueryRow(`UPDATE documents SET content = $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3 RETURNING `+documentColumns, content, id, ownerID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Sugar.Errorf("Failed to update content for doc %d: %v", id, err)
	}
	return d, notFound(id, err)
}

func (r *PostgresDocumentRepository) UpdateTitle(id, ownerID int64, title string) (model.Document, error) {
	d, err := scanDocument(r.DB.QueryRow(`UPDATE documents SET title = $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3 RETURNING `+documentColumns, title, id, ownerID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Sugar.Errorf("Failed to update title for doc %d: %v", id, err)
	}
	return d, notFound(id, err)
}

func (r *PostgresDocumentRepository) Delete(id, ownerID int64) error {
	result, err := r.DB.Exec("DELETE FROM documents WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete doc %d: %v", id, err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		logger.Sugar.Errorf("Failed to read rows affected deleting doc %d: %v", id, err)
		return err
	}
	if affected == 0 {
		return notFound(id, sql.ErrNoRows)
	}
	return nil
}

// MemoryDocumentRepository is an id-indexed arena. Ids come from a counter
// that only grows, so deleted ids are never handed out again.
type MemoryDocumentRepository struct {
	mu     sync.Mutex
	nextID int64
	docs   map[int64]*model.Document
	order  []int64
	now    func() time.Time
}

func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{
		nextID: 1,
		docs:   make(map[int64]*model.Document),
		now:    time.Now,
	}
}

func (r *MemoryDocumentRepository) Create(title string, ownerID int64) (model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	d := &model.Document{
		ID:        r.nextID,
		Title:     title,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.nextID++
	r.docs[d.ID] = d
	r.order = append(r.order, d.ID)
	return *d, nil
}

func (r *MemoryDocumentRepository) ListByOwner(ownerID int64) ([]model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := []model.Document{}
	live := r.order[:0]
	for _, id := range r.order {
		d, ok := r.docs[id]
		if !ok {
			continue
		}
		live = append(live, id)
		if d.OwnerID == ownerID {
			docs = append(docs, *d)
		}
	}
	r.order = live
	return docs, nil
}

// lookup must be called with mu held.
func (r *MemoryDocumentRepository) lookup(id, ownerID int64) (*model.Document, error) {
	d, ok := r.docs[id]
	if !ok || d.OwnerID != ownerID {
		return nil, fmt.Errorf("document %d: %w", id, apperror.ErrNotFound)
	}
	return d, nil
}

func (r *MemoryDocumentRepository) Get(id, ownerID int64) (model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := r.lookup(id, ownerID)
	if err != nil {
		return model.Document{}, err
	}
	return *d, nil
}

func (r *MemoryDocumentRepository) UpdateContent(id, ownerID int64, content string) (model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := r.lookup(id, ownerID)
	if err != nil {
		return model.Document{}, err
	}
	d.Content = content
	d.UpdatedAt = r.now().UTC()
	return *d, nil
}

func (r *MemoryDocumentRepository) UpdateTitle(id, ownerID int64, title string) (model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := r.lookup(id, ownerID)
	if err != nil {
		return model.Document{}, err
	}
	d.Title = title
	d.UpdatedAt = r.now().UTC()
	return *d, nil
}

func (r *MemoryDocumentRepository) Delete(id, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.lookup(id, ownerID); err != nil {
		return err
	}
	delete(r.docs, id)
	return nil
}
