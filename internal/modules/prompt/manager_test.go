package prompt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reusedev/prompt-hub/internal/consts"
	"github.com/reusedev/prompt-hub/internal/modules/kvstore"
)

func newTestManager(t *testing.T) (*Manager, kvstore.Store) {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	m, err := NewManager(kv)
	require.NoError(t, err)
	return m, kv
}

func TestCreatePromptPrependsAndPersists(t *testing.T) {
	m, kv := newTestManager(t)

	first, err := m.CreatePrompt("fox", "a red fox", "", []string{"animal"})
	require.NoError(t, err)
	second, err := m.CreatePrompt("cat", "a black cat", "", nil)
	require.NoError(t, err)

	list := m.Prompts()
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, first.ID, list[1].ID)

	var persisted []*Prompt
	found, err := kv.Get(consts.KeyPrompts, &persisted)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, persisted, 2)
}

func TestUpdatePromptVersionsContentChanges(t *testing.T) {
	m, _ := newTestManager(t)
	p, err := m.CreatePrompt("fox", "v1", "", nil)
	require.NoError(t, err)

	updated, err := m.UpdatePrompt(p.ID, "fox", "v2", "", nil)
	require.NoError(t, err)
	require.Equal(t, "v2", updated.Content)
	require.Len(t, updated.Versions, 1)
	require.Equal(t, "v1", updated.Versions[0].Content)

	// Title-only change does not grow the history.
	updated, err = m.UpdatePrompt(p.ID, "red fox", "v2", "", nil)
	require.NoError(t, err)
	require.Len(t, updated.Versions, 1)
}

func TestVersionHistoryIsCapped(t *testing.T) {
	m, _ := newTestManager(t)
	p, err := m.CreatePrompt("fox", "v0", "", nil)
	require.NoError(t, err)

	for i := 1; i <= maxVersions+5; i++ {
		_, err = m.UpdatePrompt(p.ID, "fox", fmt.Sprintf("v%d", i), "", nil)
		require.NoError(t, err)
	}
	list := m.Prompts()
	require.Len(t, list[0].Versions, maxVersions)
	// Oldest snapshots fell off the front.
	require.Equal(t, "v5", list[0].Versions[0].Content)
}

func TestRestoreVersionKeepsCurrentInHistory(t *testing.T) {
	m, _ := newTestManager(t)
	p, err := m.CreatePrompt("fox", "v1", "", nil)
	require.NoError(t, err)
	_, err = m.UpdatePrompt(p.ID, "fox", "v2", "", nil)
	require.NoError(t, err)

	restored, err := m.RestoreVersion(p.ID, 0)
	require.NoError(t, err)
	require.Equal(t, "v1", restored.Content)
	require.Equal(t, "v2", restored.Versions[len(restored.Versions)-1].Content)

	_, err = m.RestoreVersion(p.ID, 99)
	require.Error(t, err)
}

func TestToggleFavorite(t *testing.T) {
	m, _ := newTestManager(t)
	p, err := m.CreatePrompt("fox", "a red fox", "", nil)
	require.NoError(t, err)

	on, err := m.ToggleFavorite(p.ID)
	require.NoError(t, err)
	require.True(t, on)
	off, err := m.ToggleFavorite(p.ID)
	require.NoError(t, err)
	require.False(t, off)
}

func TestReorderAppliesExplicitOrder(t *testing.T) {
	m, _ := newTestManager(t)
	a, _ := m.CreatePrompt("a", "", "", nil)
	b, _ := m.CreatePrompt("b", "", "", nil)
	c, _ := m.CreatePrompt("c", "", "", nil)

	require.NoError(t, m.Reorder([]string{a.ID, c.ID}))

	list := m.Prompts()
	require.Equal(t, []string{a.ID, c.ID, b.ID}, []string{list[0].ID, list[1].ID, list[2].ID})

	// Unknown ids are ignored, nothing is lost.
	require.NoError(t, m.Reorder([]string{"ghost", b.ID}))
	require.Len(t, m.Prompts(), 3)
}

func TestSearchFilters(t *testing.T) {
	m, _ := newTestManager(t)
	cat, err := m.CreateCategory("animals", "")
	require.NoError(t, err)
	fox, _ := m.CreatePrompt("Red Fox", "a red fox in the snow", cat.ID, []string{"fox"})
	m.CreatePrompt("City", "rainy neon street", "", []string{"cyberpunk"})
	m.ToggleFavorite(fox.ID)

	require.Len(t, m.Search(Query{Keyword: "FOX"}), 1)
	require.Len(t, m.Search(Query{Keyword: "snow"}), 1)
	require.Len(t, m.Search(Query{Keyword: "cyberpunk"}), 1)
	require.Len(t, m.Search(Query{Keyword: "dragon"}), 0)
	require.Len(t, m.Search(Query{CategoryID: cat.ID}), 1)
	require.Len(t, m.Search(Query{FavoriteOnly: true}), 1)
	require.Len(t, m.Search(Query{}), 2)
}

func TestDeleteCategoryReparentsAndUncategorizes(t *testing.T) {
	m, _ := newTestManager(t)
	root, _ := m.CreateCategory("root", "")
	mid, _ := m.CreateCategory("mid", root.ID)
	leaf, _ := m.CreateCategory("leaf", mid.ID)
	p, _ := m.CreatePrompt("fox", "a red fox", mid.ID, nil)

	require.NoError(t, m.DeleteCategory(mid.ID))

	cats := m.Categories()
	require.Len(t, cats, 2)
	for _, c := range cats {
		if c.ID == leaf.ID {
			require.Equal(t, root.ID, c.ParentID)
		}
	}
	list := m.Prompts()
	require.Equal(t, p.ID, list[0].ID)
	require.Empty(t, list[0].CategoryID)
}

func TestWordLibrary(t *testing.T) {
	m, _ := newTestManager(t)
	w, err := m.CreateWord("masterpiece", "quality")
	require.NoError(t, err)

	require.NoError(t, m.UpdateWord(w.ID, "best quality", "quality"))
	require.Len(t, m.SearchWords("quality"), 1)
	require.Len(t, m.SearchWords("nothing"), 0)

	require.NoError(t, m.DeleteWord(w.ID))
	require.Empty(t, m.Words())
}

func TestTemplateRender(t *testing.T) {
	m, _ := newTestManager(t)
	tpl, err := m.CreateTemplate("scene", "a {{subject}} in {{place}}, {{subject}} close-up")
	require.NoError(t, err)

	got, err := m.Render(tpl.ID, map[string]string{"subject": "fox"})
	require.NoError(t, err)
	// Known markers substituted everywhere, unknown ones left visible.
	require.Equal(t, "a fox in {{place}}, fox close-up", got)

	_, err = m.Render("missing", nil)
	require.Error(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	m.CreatePrompt("fox", "a red fox", "", []string{"animal"})
	m.CreateCategory("animals", "")
	m.CreateWord("masterpiece", "quality")
	m.CreateTemplate("scene", "a {{subject}}")

	lib := m.Export()
	require.Equal(t, FormatVersion, lib.FormatVersion)

	other, _ := newTestManager(t)
	require.NoError(t, other.Import(lib))
	require.Len(t, other.Prompts(), 1)
	require.Len(t, other.Categories(), 1)
	require.Len(t, other.Words(), 1)
	require.Len(t, other.Templates(), 1)

	bad := *lib
	bad.FormatVersion = 99
	require.Error(t, other.Import(&bad))
}
