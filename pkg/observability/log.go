package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes layout and cache events to a logger at debug level.
// HTTP events are left to the server's request log.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to l, prefixed "hooks".
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

func (h *LogHooks) OnLayoutStart(_ context.Context, boxCount int) {
	h.logger.Debug("layout start", "boxes", boxCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, boxCount, rows int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "boxes", boxCount, "elapsed", d, "err", err)
		return
	}
	h.logger.Debug("layout done", "boxes", boxCount, "rows", rows, "elapsed", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render start", "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("render done", "format", format, "bytes", size, "elapsed", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, backend string) {
	h.logger.Debug("cache hit", "backend", backend)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, backend string) {
	h.logger.Debug("cache miss", "backend", backend)
}

func (h *LogHooks) OnCacheSet(_ context.Context, backend string, size int) {
	h.logger.Debug("cache set", "backend", backend, "bytes", size)
}
