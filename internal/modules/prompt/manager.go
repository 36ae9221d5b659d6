package prompt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/reusedev/prompt-hub/internal/consts"
	"github.com/reusedev/prompt-hub/internal/modules/kvstore"
)

// Manager owns the prompt library collections. Every mutation writes the
// owning collection back to the store; reads hand out deep copies.
type Manager struct {
	lock       sync.Mutex
	kv         kvstore.Store
	prompts    []*Prompt
	categories []*Category
	words      []*Word
	templates  []*Template
}

func NewManager(kv kvstore.Store) (*Manager, error) {
	m := &Manager{kv: kv}
	if _, err := kv.Get(consts.KeyPrompts, &m.prompts); err != nil {
		return nil, err
	}
	if _, err := kv.Get(consts.KeyCategories, &m.categories); err != nil {
		return nil, err
	}
	if _, err := kv.Get(consts.KeyWords, &m.words); err != nil {
		return nil, err
	}
	if _, err := kv.Get(consts.KeyTemplates, &m.templates); err != nil {
		return nil, err
	}
	return m, nil
}

func deepCopySlice[T any](in []*T) []*T {
	out := make([]*T, 0, len(in))
	for _, v := range in {
		c := new(T)
		copier.CopyWithOption(c, v, copier.Option{DeepCopy: true})
		out = append(out, c)
	}
	return out
}

// ---- prompts ----

func (m *Manager) Prompts() []*Prompt {
	m.lock.Lock()
	defer m.lock.Unlock()
	return deepCopySlice(m.prompts)
}

func (m *Manager) CreatePrompt(title, content, categoryID string, tags []string) (*Prompt, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	now := time.Now()
	p := &Prompt{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    content,
		CategoryID: categoryID,
		Tags:       tags,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.prompts = append([]*Prompt{p}, m.prompts...)
	if err := m.kv.Set(consts.KeyPrompts, m.prompts); err != nil {
		return nil, err
	}
	return deepCopySlice([]*Prompt{p})[0], nil
}

func (m *Manager) findPromptLocked(id string) (*Prompt, error) {
	for _, p := range m.prompts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("prompt %s not found", id)
}

// UpdatePrompt replaces a prompt's editable fields. A content change pushes
// the previous content into the version history.
func (m *Manager) UpdatePrompt(id, title, content, categoryID string, tags []string) (*Prompt, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	p, err := m.findPromptLocked(id)
	if err != nil {
		return nil, err
	}
	if content != p.Content {
		p.pushVersion()
		p.Content = content
	}
	p.Title = title
	p.CategoryID = categoryID
	p.Tags = tags
	p.UpdatedAt = time.Now()
	if err := m.kv.Set(consts.KeyPrompts, m.prompts); err != nil {
		return nil, err
	}
	return deepCopySlice([]*Prompt{p})[0], nil
}

func (p *Prompt) pushVersion() {
	p.Versions = append(p.Versions, Version{Content: p.Content, SavedAt: time.Now()})
	if len(p.Versions) > maxVersions {
		p.Versions = p.Versions[len(p.Versions)-maxVersions:]
	}
}

func (m *Manager) DeletePrompt(id string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	for i, p := range m.prompts {
		if p.ID == id {
			m.prompts = append(m.prompts[:i], m.prompts[i+1:]...)
			return m.kv.Set(consts.KeyPrompts, m.prompts)
		}
	}
	return fmt.Errorf("prompt %s not found", id)
}

func (m *Manager) ToggleFavorite(id string) (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	p, err := m.findPromptLocked(id)
	if err != nil {
		return false, err
	}
	p.Favorite = !p.Favorite
	p.UpdatedAt = time.Now()
	return p.Favorite, m.kv.Set(consts.KeyPrompts, m.prompts)
}

// Reorder applies an explicit id order from a drag-and-drop gesture. Ids not
// listed keep their relative order after the listed ones.
func (m *Manager) Reorder(ids []string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	byID := make(map[string]*Prompt, len(m.prompts))
	for _, p := range m.prompts {
		byID[p.ID] = p
	}
	ordered := make([]*Prompt, 0, len(m.prompts))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
			seen[id] = struct{}{}
		}
	}
	for _, p := range m.prompts {
		if _, ok := seen[p.ID]; !ok {
			ordered = append(ordered, p)
		}
	}
	m.prompts = ordered
	return m.kv.Set(consts.KeyPrompts, m.prompts)
}

// RestoreVersion swaps a history entry back in as the current content. The
// outgoing content is versioned first, so a restore is never destructive.
func (m *Manager) RestoreVersion(id string, index int) (*Prompt, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	p, err := m.findPromptLocked(id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(p.Versions) {
		return nil, fmt.Errorf("version %d out of range", index)
	}
	restored := p.Versions[index].Content
	p.pushVersion()
	p.Content = restored
	p.UpdatedAt = time.Now()
	if err := m.kv.Set(consts.KeyPrompts, m.prompts); err != nil {
		return nil, err
	}
	return deepCopySlice([]*Prompt{p})[0], nil
}

// Search filters prompts by a case-insensitive keyword over title, content
// and tags, optionally narrowed to a category or to favorites.
func (m *Manager) Search(q Query) []*Prompt {
	m.lock.Lock()
	defer m.lock.Unlock()
	keyword := strings.ToLower(q.Keyword)
	ret := make([]*Prompt, 0)
	for _, p := range m.prompts {
		if q.CategoryID != "" && p.CategoryID != q.CategoryID {
			continue
		}
		if q.FavoriteOnly && !p.Favorite {
			continue
		}
		if keyword != "" && !matchKeyword(p, keyword) {
			continue
		}
		ret = append(ret, p)
	}
	return deepCopySlice(ret)
}

func matchKeyword(p *Prompt, keyword string) bool {
	if strings.Contains(strings.ToLower(p.Title), keyword) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Content), keyword) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), keyword) {
			return true
		}
	}
	return false
}

// ---- categories ----

func (m *Manager) Categories() []*Category {
	m.lock.Lock()
	defer m.lock.Unlock()
	return deepCopySlice(m.categories)
}

func (m *Manager) CreateCategory(name, parentID string) (*Category, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	c := &Category{ID: uuid.NewString(), Name: name, ParentID: parentID}
	m.categories = append(m.categories, c)
	if err := m.kv.Set(consts.KeyCategories, m.categories); err != nil {
		return nil, err
	}
	return deepCopySlice([]*Category{c})[0], nil
}

func (m *Manager) RenameCategory(id, name string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, c := range m.categories {
		if c.ID == id {
			c.Name = name
			return m.kv.Set(consts.KeyCategories, m.categories)
		}
	}
	return fmt.Errorf("category %s not found", id)
}

// DeleteCategory removes a node, reparents its children to its parent and
// moves its prompts to uncategorized.
func (m *Manager) DeleteCategory(id string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	var deleted *Category
	for i, c := range m.categories {
		if c.ID == id {
			deleted = c
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			break
		}
	}
	if deleted == nil {
		return fmt.Errorf("category %s not found", id)
	}
	for _, c := range m.categories {
		if c.ParentID == id {
			c.ParentID = deleted.ParentID
		}
	}
	promptsChanged := false
	for _, p := range m.prompts {
		if p.CategoryID == id {
			p.CategoryID = ""
			promptsChanged = true
		}
	}
	if err := m.kv.Set(consts.KeyCategories, m.categories); err != nil {
		return err
	}
	if promptsChanged {
		return m.kv.Set(consts.KeyPrompts, m.prompts)
	}
	return nil
}

// ---- word library ----

func (m *Manager) Words() []*Word {
	m.lock.Lock()
	defer m.lock.Unlock()
	return deepCopySlice(m.words)
}

func (m *Manager) CreateWord(text, group string) (*Word, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	w := &Word{ID: uuid.NewString(), Text: text, Group: group}
	m.words = append(m.words, w)
	if err := m.kv.Set(consts.KeyWords, m.words); err != nil {
		return nil, err
	}
	return deepCopySlice([]*Word{w})[0], nil
}

func (m *Manager) UpdateWord(id, text, group string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, w := range m.words {
		if w.ID == id {
			w.Text = text
			w.Group = group
			return m.kv.Set(consts.KeyWords, m.words)
		}
	}
	return fmt.Errorf("word %s not found", id)
}

func (m *Manager) DeleteWord(id string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	for i, w := range m.words {
		if w.ID == id {
			m.words = append(m.words[:i], m.words[i+1:]...)
			return m.kv.Set(consts.KeyWords, m.words)
		}
	}
	return fmt.Errorf("word %s not found", id)
}

func (m *Manager) SearchWords(keyword string) []*Word {
	m.lock.Lock()
	defer m.lock.Unlock()
	keyword = strings.ToLower(keyword)
	ret := make([]*Word, 0)
	for _, w := range m.words {
		if keyword == "" ||
			strings.Contains(strings.ToLower(w.Text), keyword) ||
			strings.Contains(strings.ToLower(w.Group), keyword) {
			ret = append(ret, w)
		}
	}
	return deepCopySlice(ret)
}

// ---- templates ----

func (m *Manager) Templates() []*Template {
	m.lock.Lock()
	defer m.lock.Unlock()
	return deepCopySlice(m.templates)
}

func (m *Manager) CreateTemplate(name, content string) (*Template, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	now := time.Now()
	t := &Template{ID: uuid.NewString(), Name: name, Content: content, CreatedAt: now, UpdatedAt: now}
	m.templates = append(m.templates, t)
	if err := m.kv.Set(consts.KeyTemplates, m.templates); err != nil {
		return nil, err
	}
	return deepCopySlice([]*Template{t})[0], nil
}

func (m *Manager) UpdateTemplate(id, name, content string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, t := range m.templates {
		if t.ID == id {
			t.Name = name
			t.Content = content
			t.UpdatedAt = time.Now()
			return m.kv.Set(consts.KeyTemplates, m.templates)
		}
	}
	return fmt.Errorf("template %s not found", id)
}

func (m *Manager) DeleteTemplate(id string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	for i, t := range m.templates {
		if t.ID == id {
			m.templates = append(m.templates[:i], m.templates[i+1:]...)
			return m.kv.Set(consts.KeyTemplates, m.templates)
		}
	}
	return fmt.Errorf("template %s not found", id)
}

// Render substitutes {{placeholder}} markers. Markers without a value are
// left in place so the caller can see what is still missing.
func (m *Manager) Render(id string, values map[string]string) (string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, t := range m.templates {
		if t.ID == id {
			content := t.Content
			for k, v := range values {
				content = strings.ReplaceAll(content, "{{"+k+"}}", v)
			}
			return content, nil
		}
	}
	return "", fmt.Errorf("template %s not found", id)
}

// ---- import / export ----

func (m *Manager) Export() *Library {
	m.lock.Lock()
	defer m.lock.Unlock()
	return &Library{
		FormatVersion: FormatVersion,
		Prompts:       deepCopySlice(m.prompts),
		Categories:    deepCopySlice(m.categories),
		Words:         deepCopySlice(m.words),
		Templates:     deepCopySlice(m.templates),
	}
}

// Import replaces the whole library after validation.
func (m *Manager) Import(lib *Library) error {
	if lib.FormatVersion != FormatVersion {
		return fmt.Errorf("unsupported library format version %d", lib.FormatVersion)
	}
	for _, p := range lib.Prompts {
		if p.ID == "" {
			return fmt.Errorf("imported prompt without id")
		}
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	m.prompts = deepCopySlice(lib.Prompts)
	m.categories = deepCopySlice(lib.Categories)
	m.words = deepCopySlice(lib.Words)
	m.templates = deepCopySlice(lib.Templates)
	if err := m.kv.Set(consts.KeyPrompts, m.prompts); err != nil {
		return err
	}
	if err := m.kv.Set(consts.KeyCategories, m.categories); err != nil {
		return err
	}
	if err := m.kv.Set(consts.KeyWords, m.words); err != nil {
		return err
	}
	return m.kv.Set(consts.KeyTemplates, m.templates)
}
