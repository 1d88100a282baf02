package service

import (
	"sync"
	"testing"

	"coedit/internal/document/model"
	"coedit/internal/document/repository"
	"coedit/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice int64 = 1
	bob   int64 = 2
)

func newService() *DocumentService {
	return NewDocumentService(repository.NewMemoryDocumentRepository())
}

func TestCreateDefaultsTitle(t *testing.T) {
	s := newService()

	d, err := s.CreateDocument(alice, "  ")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTitle, d.Title)
	assert.Equal(t, alice, d.OwnerID)
	assert.Empty(t, d.Content)
	assert.False(t, d.CreatedAt.IsZero())
}

func TestCrossOwnerAccessLooksLikeAbsence(t *testing.T) {
	s := newService()
	d, err := s.CreateDocument(alice, "D")
	require.NoError(t, err)

	_, err = s.GetDocument(d.ID, bob)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = s.DeleteDocument(d.ID, bob)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	got, err := s.GetDocument(d.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
}

func TestUpdateContentIsLastWriteWins(t *testing.T) {
	s := newService()
	d, _ := s.CreateDocument(alice, "D")

	_, err := s.UpdateContent(d.ID, alice, "hello")
	require.NoError(t, err)
	got, _ := s.GetDocument(d.ID, alice)
	assert.Equal(t, "hello", got.Content)

	updated, err := s.UpdateContent(d.ID, alice, "world")
	require.NoError(t, err)
	assert.Equal(t, "world", updated.Content)
	got, _ = s.GetDocument(d.ID, alice)
	assert.Equal(t, "world", got.Content)
}

func TestConcurrentUpdatesLeaveOneWholeValue(t *testing.T) {
	s := newService()
	d, _ := s.CreateDocument(alice, "D")

	writes := []string{"first writer", "second writer", "third writer"}
	var wg sync.WaitGroup
	for _, content := range writes {
		wg.Add(1)
		go func(content string) {
			defer wg.Done()
			_, err := s.UpdateContent(d.ID, alice, content)
			assert.NoError(t, err)
		}(content)
	}
	wg.Wait()

	got, err := s.GetDocument(d.ID, alice)
	require.NoError(t, err)
	assert.Contains(t, writes, got.Content)
}

func TestRenameAndDelete(t *testing.T) {
	s := newService()
	d, _ := s.CreateDocument(alice, "old")

	renamed, err := s.Rename(d.ID, alice, "new")
	require.NoError(t, err)
	assert.Equal(t, "new", renamed.Title)

	_, err = s.Rename(d.ID, bob, "stolen")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, s.DeleteDocument(d.ID, alice))
	assert.ErrorIs(t, s.DeleteDocument(d.ID, alice), apperror.ErrNotFound)
	_, err = s.GetDocument(d.ID, alice)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListIsScopedAndOrdered(t *testing.T) {
	s := newService()
	a1, _ := s.CreateDocument(alice, "a1")
	_, _ = s.CreateDocument(bob, "b1")
	a2, _ := s.CreateDocument(alice, "a2")

	docs, err := s.ListDocuments(alice)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, a1.ID, docs[0].ID)
	assert.Equal(t, a2.ID, docs[1].ID)
	for _, d := range docs {
		assert.Equal(t, alice, d.OwnerID)
	}
}
