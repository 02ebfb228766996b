//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/m3dev4/essenz/internal/app"
)

// InitializeApp builds the fully wired application.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	wire.Build(appSet)
	return nil, nil, nil
}
