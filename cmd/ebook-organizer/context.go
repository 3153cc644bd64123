package main

import (
	"sync"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/ghiridhars/ebook-organizer/internal/config"
	"github.com/ghiridhars/ebook-organizer/internal/di"
)

type commandContext struct {
	flags      config.Flags
	jsonOutput bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	injector *do.RootScope
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.Load(c.flags)
	})
	return c.config, c.configErr
}

func (c *commandContext) container() (*do.RootScope, error) {
	if c.injector != nil {
		return c.injector, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.injector = di.NewContainer(cfg)
	return c.injector, nil
}

// close shuts down whatever the command opened.
func (c *commandContext) close() {
	if c.injector != nil {
		_ = c.injector.Shutdown()
	}
}

// invoke resolves a service from the container.
func invoke[T any](c *commandContext) (T, error) {
	injector, err := c.container()
	if err != nil {
		var zero T
		return zero, err
	}
	return do.Invoke[T](injector)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
