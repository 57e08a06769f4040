package core

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type UsersRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, username string) (User, error)
	SetAPIKey(ctx context.Context, username, service, key string) error
}

type ProjectsRepository interface {
	CreateProject(ctx context.Context, project Project) error
	GetProject(ctx context.Context, id string) (Project, error)
	UpdateProject(ctx context.Context, project Project) error
	TouchProject(ctx context.Context, id string, at time.Time) error
	DeleteProject(ctx context.Context, id string) error
	ListProjects(ctx context.Context) ([]Project, error)
	ListProjectsByUser(ctx context.Context, username string) ([]Project, error)
	ListPublicProjects(ctx context.Context) ([]Project, error)
}

type ConversationsRepository interface {
	CreateConversation(ctx context.Context, conv Conversation) error
	UpdateConversation(ctx context.Context, conv Conversation) error
	GetConversation(ctx context.Context, id string) (Conversation, error)
	ListConversationsByUser(ctx context.Context, username string) ([]Conversation, error)
	ListConversationsByProject(ctx context.Context, projectID string) ([]Conversation, error)
}

type MessagesRepository interface {
	AddMessage(ctx context.Context, msg Message) error
	GetMessages(ctx context.Context, conversationID string) ([]Message, error)
}

// ContextsRepository stores context metadata. Content lives in a BlobStore.
type ContextsRepository interface {
	AddContext(ctx context.Context, c Context) error
	GetContext(ctx context.Context, id string) (Context, error)
	ListByMessage(ctx context.Context, messageID string) ([]Context, error)
	ListByProject(ctx context.Context, projectID string) ([]Context, error)
	DeleteContext(ctx context.Context, id string) error
}

type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}
