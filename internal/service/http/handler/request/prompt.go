package request

type CreatePrompt struct {
	Title      string   `json:"title" binding:"required"`
	Content    string   `json:"content"`
	CategoryID string   `json:"category_id"`
	Tags       []string `json:"tags"`
}

type UpdatePrompt struct {
	Title      string   `json:"title" binding:"required"`
	Content    string   `json:"content"`
	CategoryID string   `json:"category_id"`
	Tags       []string `json:"tags"`
}

type ReorderPrompts struct {
	IDs []string `json:"ids" binding:"required"`
}

type RestoreVersion struct {
	Index int `json:"index"`
}

type CreateCategory struct {
	Name     string `json:"name" binding:"required"`
	ParentID string `json:"parent_id"`
}

type RenameCategory struct {
	Name string `json:"name" binding:"required"`
}

type CreateWord struct {
	Text  string `json:"text" binding:"required"`
	Group string `json:"group"`
}

type UpdateWord struct {
	Text  string `json:"text" binding:"required"`
	Group string `json:"group"`
}

type CreateTemplate struct {
	Name    string `json:"name" binding:"required"`
	Content string `json:"content"`
}

type UpdateTemplate struct {
	Name    string `json:"name" binding:"required"`
	Content string `json:"content"`
}

type RenderTemplate struct {
	Values map[string]string `json:"values"`
}
