package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atrapalo/newslettergen/internal/config"
	"github.com/atrapalo/newslettergen/internal/newsletter"
)

func localStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := New(context.Background(), config.StorageConfig{Type: "local", LocalPath: dir})
	require.NoError(t, err)
	return s
}

func sampleDraft(name string) *Draft {
	return &Draft{
		Name:     name,
		Campaign: "NL Semanal",
		Document: &newsletter.Document{
			Header: newsletter.HeaderConfig{Preheader: "Planes de la semana"},
			Cards:  []newsletter.Card{{Order: 1, Title: "El Rey León"}},
		},
	}
}

func TestSaveDraftAssignsID(t *testing.T) {
	s := localStore(t, t.TempDir())
	ctx := context.Background()

	d := sampleDraft("semana-35")
	require.NoError(t, s.SaveDraft(ctx, d))

	assert.NotEmpty(t, d.ID)
	assert.False(t, d.CreatedAt.IsZero())
	assert.False(t, d.UpdatedAt.IsZero())

	got, err := s.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "semana-35", got.Name)
	assert.Equal(t, "El Rey León", got.Document.Cards[0].Title)
}

func TestDraftsSurviveReload(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := localStore(t, dir)
	d := sampleDraft("reloaded")
	require.NoError(t, s.SaveDraft(ctx, d))

	s2 := localStore(t, dir)
	got, err := s2.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "reloaded", got.Name)
	assert.Equal(t, "NL Semanal", got.Campaign)
}

func TestListDraftsNewestFirst(t *testing.T) {
	s := localStore(t, t.TempDir())
	ctx := context.Background()

	first := sampleDraft("first")
	require.NoError(t, s.SaveDraft(ctx, first))
	second := sampleDraft("second")
	require.NoError(t, s.SaveDraft(ctx, second))

	// Re-saving bumps a draft back to the top.
	require.NoError(t, s.SaveDraft(ctx, first))

	drafts, err := s.ListDrafts(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "first", drafts[0].Name)
}

func TestDeleteDraft(t *testing.T) {
	s := localStore(t, t.TempDir())
	ctx := context.Background()

	d := sampleDraft("doomed")
	require.NoError(t, s.SaveDraft(ctx, d))
	require.NoError(t, s.DeleteDraft(ctx, d.ID))

	got, err := s.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is a no-op.
	assert.NoError(t, s.DeleteDraft(ctx, d.ID))
}

func TestArchiveHTMLRoundTrip(t *testing.T) {
	s := localStore(t, t.TempDir())
	ctx := context.Background()

	html := []byte("<html><body>Hola</body></html>")
	key, err := s.ArchiveHTML(ctx, "NL Semana 35", html)
	require.NoError(t, err)
	assert.Contains(t, key, "archive/")
	assert.Contains(t, key, "nl-semana-35.html")

	got, err := s.GetArchivedHTML(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, html, got)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "nl-semana-35", sanitizeName("NL Semana 35"))
	assert.Equal(t, "newsletter", sanitizeName("  "))
	assert.Equal(t, "campa-a", sanitizeName("Campaña"))
}

func TestUnknownStorageType(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Type: "dynamo", LocalPath: t.TempDir()})
	assert.Error(t, err)
}

func TestCorruptDraftFileSkipped(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := localStore(t, dir)
	d := sampleDraft("good")
	require.NoError(t, s.SaveDraft(ctx, d))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "drafts", "broken.json"), []byte("{not json"), 0644))

	s2 := localStore(t, dir)
	drafts, err := s2.ListDrafts(ctx)
	require.NoError(t, err)
	assert.Len(t, drafts, 1)
}
