package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

func Load(ctx context.Context) (App, error) {
	var cfg App
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return App{}, fmt.Errorf("process env config: %w", err)
	}
	return cfg, nil
}
