package handler

import (
	"chitty/internal/app/chat"
	"chitty/internal/app/db"
	"chitty/internal/configs"
	"chitty/internal/pkg/auth/token"
)

// AppDeps carries the shared dependencies handlers need. The relay
// service fills Gateway and Gate; the account web service fills
// Accounts and Gate.
type AppDeps struct {
	Config   *configs.AppConfig
	Gate     *token.Gate
	Gateway  *chat.Gateway
	Accounts *db.Accounts
}
