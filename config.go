package nativeusers

import (
	"errors"
	"time"
)

// Config carries the tunables the source calls out by settings key:
// scroll page size, scroll keep-alive, and the poller's fixed-delay
// interval, plus the index/type names the store addresses. There is no
// env/CLI parsing layer — Config is built and validated programmatically
// through Builder, the same way the teacher's engine is configured.
type Config struct {
	// ScrollSize is authc.native.scroll.size, default 1000.
	ScrollSize int
	// ScrollKeepAlive is authc.native.scroll.keep_alive, default 10s.
	ScrollKeepAlive time.Duration
	// PollInterval is authc.native.reload.interval, default 30s.
	PollInterval time.Duration
	// IndexName is the well-known security-index name.
	IndexName string
	// TemplateName is the matching index template name.
	TemplateName string
	// DocType is the persisted document type, fixed to "user" by the
	// schema but left overridable for tests.
	DocType string
}

// DefaultConfig returns the Config the source falls back to when the
// embedding system supplies no overrides.
func DefaultConfig() Config {
	return Config{
		ScrollSize:      1000,
		ScrollKeepAlive: 10 * time.Second,
		PollInterval:    30 * time.Second,
		IndexName:       ".security",
		TemplateName:    ".security-template",
		DocType:         "user",
	}
}

// Validate reports whether cfg is usable. It never mutates cfg.
func (cfg Config) Validate() error {
	if cfg.ScrollSize <= 0 {
		return errors.New("nativeusers: ScrollSize must be positive")
	}
	if cfg.ScrollKeepAlive <= 0 {
		return errors.New("nativeusers: ScrollKeepAlive must be positive")
	}
	if cfg.PollInterval <= 0 {
		return errors.New("nativeusers: PollInterval must be positive")
	}
	if cfg.IndexName == "" {
		return errors.New("nativeusers: IndexName must be set")
	}
	if cfg.TemplateName == "" {
		return errors.New("nativeusers: TemplateName must be set")
	}
	if cfg.DocType == "" {
		return errors.New("nativeusers: DocType must be set")
	}
	return nil
}

// cloneConfig returns a value copy of cfg. Config currently has no
// reference-typed fields, but the helper is kept (mirroring the teacher's
// builder.cloneConfig) so Builder never aliases caller-owned state as
// fields are added.
func cloneConfig(cfg Config) Config {
	return cfg
}
