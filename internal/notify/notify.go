// Package notify delivers finished reports to chat services.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Sink accepts a finished report.
type Sink interface {
	Send(ctx context.Context, message string) error
}

// FailureRecorder counts failed deliveries per sink name.
type FailureRecorder interface {
	NotifyFailed(sink string)
}

// ErrUndelivered is returned by Fanout.Send when no sink accepted the report.
var ErrUndelivered = errors.New("notify: report not delivered")

// Fanout sends to every sink. Individual failures are logged and counted;
// Send only errors when nothing was delivered at all.
type Fanout struct {
	sinks    []Sink
	logger   *slog.Logger
	failures FailureRecorder
}

// NewFanout drops nil sinks. failures may be nil.
func NewFanout(logger *slog.Logger, failures FailureRecorder, sinks ...Sink) *Fanout {
	f := &Fanout{logger: logger, failures: failures}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Len reports how many sinks are enabled.
func (f *Fanout) Len() int {
	return len(f.sinks)
}

// Send delivers message to every sink and succeeds if at least one accepted it.
func (f *Fanout) Send(ctx context.Context, message string) error {
	delivered := 0
	for _, s := range f.sinks {
		name := sinkName(s)
		if err := s.Send(ctx, message); err != nil {
			f.logger.Warn("notify: delivery failed", slog.String("sink", name), slog.String("error", err.Error()))
			if f.failures != nil {
				f.failures.NotifyFailed(name)
			}
			continue
		}
		f.logger.Info("notify: sent", slog.String("sink", name))
		delivered++
	}
	if delivered == 0 {
		return fmt.Errorf("%w: %d sinks tried", ErrUndelivered, len(f.sinks))
	}
	return nil
}

// Configured returns the sinks whose settings are complete.
func Configured(telegramToken, telegramChat, discordWebhook string) []Sink {
	var sinks []Sink
	if t := NewTelegram(telegramToken, telegramChat); t != nil {
		sinks = append(sinks, t)
	}
	if d := NewDiscord(discordWebhook); d != nil {
		sinks = append(sinks, d)
	}
	return sinks
}

func sinkName(s Sink) string {
	if n, ok := s.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "unknown"
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

var errStatus = errors.New("notify: unexpected status")
