package recorder

import (
	"fmt"
	"strings"
	"time"
)

// Package recorder persists request/response exchanges captured for failed
// checks so a red run leaves a debuggable artifact behind.

// Exchange is one captured request/response pair.
type Exchange struct {
	ID           string    `json:"id"`
	Suite        string    `json:"suite"`
	Check        string    `json:"check"`
	Method       string    `json:"method"`
	URL          string    `json:"url"`
	StatusCode   int       `json:"status_code"`
	ResponseBody []byte    `json:"response_body,omitempty"`
	Failure      string    `json:"failure"`
	ElapsedMs    int64     `json:"elapsed_ms"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// Store persists exchanges.
type Store interface {
	Close() error
	SaveExchange(ex Exchange) error
	ExchangesFor(check string) ([]Exchange, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	ExchangeTTL     time.Duration
	CleanupInterval time.Duration
}

const (
	defaultExchangeTTL     = 24 * time.Hour
	defaultCleanupInterval = time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt recorder requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported recorder type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.ExchangeTTL <= 0 {
		opts.ExchangeTTL = defaultExchangeTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                            { return nil }
func (noopStore) SaveExchange(Exchange) error             { return nil }
func (noopStore) ExchangesFor(string) ([]Exchange, error) { return nil, nil }
