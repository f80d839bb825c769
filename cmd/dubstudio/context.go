package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"dubstudio/internal/config"
	"dubstudio/internal/logging"
	"dubstudio/internal/preflight"
	"dubstudio/internal/store"
	"dubstudio/internal/studio"
)

type commandContext struct {
	configFlag *string

	// studioOptions are appended when the studio is built; tests use them
	// to swap external collaborators for fakes.
	studioOptions []studio.Option
	logger        *slog.Logger

	configOnce sync.Once
	config     *config.Config
	configErr  error

	studioOnce sync.Once
	studio     *studio.Studio
	store      *store.Store
	studioErr  error
}

type contextOption func(*commandContext)

func withStudioOptions(opts ...studio.Option) contextOption {
	return func(c *commandContext) { c.studioOptions = append(c.studioOptions, opts...) }
}

func withLogger(logger *slog.Logger) contextOption {
	return func(c *commandContext) { c.logger = logger }
}

func newCommandContext(configFlag *string, opts ...contextOption) *commandContext {
	c := &commandContext{configFlag: configFlag}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureStudio opens the store and builds the studio once per invocation.
// Projects left mid-stage by a killed process are reset before use.
func (c *commandContext) ensureStudio(cmd *cobra.Command) (*studio.Studio, error) {
	c.studioOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.studioErr = err
			return
		}
		if failed, ok := directoryFailure(preflight.RunAll(cmd.Context(), cfg)); ok {
			c.studioErr = fmt.Errorf("preflight: %s: %s", failed.Name, failed.Detail)
			return
		}
		logger := c.logger
		if logger == nil {
			logger, err = logging.NewFromConfig(cfg)
			if err != nil {
				c.studioErr = err
				return
			}
		}
		st, err := store.Open(cfg)
		if err != nil {
			c.studioErr = err
			return
		}
		opts := append([]studio.Option{studio.WithLogger(logger)}, c.studioOptions...)
		s, err := studio.New(cfg, st, opts...)
		if err != nil {
			_ = st.Close()
			c.studioErr = err
			return
		}
		if _, err := s.Recover(cmd.Context()); err != nil {
			_ = st.Close()
			c.studioErr = err
			return
		}
		c.store = st
		c.studio = s
	})
	return c.studio, c.studioErr
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
}

// directoryFailure ignores credential checks; those only matter to the
// step that calls the service.
func directoryFailure(results []preflight.Result) (preflight.Result, bool) {
	for _, r := range preflight.Failed(results) {
		if strings.HasSuffix(r.Name, "directory") {
			return r, true
		}
	}
	return preflight.Result{}, false
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func parseProjectID(arg string) (int64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(arg), "#")
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid project id %q", arg)
	}
	return id, nil
}
