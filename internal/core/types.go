package core

import (
	"encoding/json"
	"time"
)

const (
	ShannonName      = "Shannon"
	ShannonUserAgent = "Shannon-API/0.1"
	ShannonVersion   = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ContextTypeImage marks a context whose content is a base64 JPEG payload.
const ContextTypeImage = "image"

// ValidRole reports whether role is one of the three chat roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Context is a typed side-attachment of a message or a project, never both.
type Context struct {
	ID        string `json:"context_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	Error     string `json:"error,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	BlobName  string `json:"blob_name,omitempty"`
}

func (c Context) IsImage() bool {
	return c.Type == ContextTypeImage
}

type Message struct {
	ID             string    `json:"message_id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Content        string    `json:"content"`
	Contexts       []Context `json:"contexts"`
	Sequence       int       `json:"sequence"`
	Role           string    `json:"role"`
}

type Conversation struct {
	ID          string     `json:"conversation_id,omitempty"`
	Username    string     `json:"username"`
	Messages    []Message  `json:"messages"`
	Description string     `json:"description,omitempty"`
	ProjectID   string     `json:"project_id,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type Project struct {
	ID            string     `json:"project_id,omitempty"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Contexts      []Context  `json:"contexts"`
	Conversations []string   `json:"conversations"`
	Username      string     `json:"username,omitempty"`
	IsPublic      bool       `json:"is_public"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type User struct {
	Username     string            `json:"username"`
	PasswordHash string            `json:"-"`
	Email        string            `json:"email,omitempty"`
	FirstName    string            `json:"first_name,omitempty"`
	LastName     string            `json:"last_name,omitempty"`
	APIKeys      map[string]string `json:"-"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ContentPart is one block of a multimodal turn in the chat completions wire format.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// Turn is one role-tagged unit sent to the LLM. Content is either plain
// text or, when Parts is non-empty, a list of multimodal blocks.
type Turn struct {
	Role  string
	Text  string
	Parts []ContentPart
}

func (t Turn) IsMultimodal() bool {
	return len(t.Parts) > 0
}

func (t Turn) MarshalJSON() ([]byte, error) {
	if t.IsMultimodal() {
		return json.Marshal(struct {
			Role    string        `json:"role"`
			Content []ContentPart `json:"content"`
		}{t.Role, t.Parts})
	}
	return json.Marshal(struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{t.Role, t.Text})
}

func (t *Turn) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Role = raw.Role
	t.Text = ""
	t.Parts = nil
	if len(raw.Content) == 0 {
		return nil
	}
	if raw.Content[0] != '[' {
		return json.Unmarshal(raw.Content, &t.Text)
	}
	if err := json.Unmarshal(raw.Content, &t.Parts); err != nil {
		return err
	}
	for _, p := range t.Parts {
		if p.Type == "text" {
			t.Text = p.Text
			break
		}
	}
	return nil
}
