package controllers

import (
	"context"

	"github.com/fsdevblog/linkresolver/internal/models"
	"github.com/fsdevblog/linkresolver/internal/services"
)

//go:generate mockgen -source=interfaces.go -destination=mocksctrl/store.go -package=mocksctrl

type ConnectionChecker interface {
	CheckConnection(ctx context.Context) error
}

// LinkResolver регистрирует ссылки и разрешает короткие коды.
type LinkResolver interface {
	Register(ctx context.Context, params services.RegisterParams) (*services.RegisterResult, error)
	// Resolve принимает код или полную короткую ссылку.
	Resolve(ctx context.Context, input string) (*models.Link, error)
}
