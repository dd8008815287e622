package view

import (
	"sync"
	"time"

	"github.com/trezcool/syllabus/core/table"
)

const DefaultToastTimeout = 3 * time.Second

var nowFunc = time.Now // mockable

type Toast struct {
	Message   string         `json:"message"`
	Severity  table.Severity `json:"severity"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// Toaster keeps the last notification until it expires or is dismissed.
type Toaster struct {
	timeout time.Duration

	mu    sync.Mutex
	toast *Toast
}

func NewToaster(timeout time.Duration) *Toaster {
	if timeout <= 0 {
		timeout = DefaultToastTimeout
	}
	return &Toaster{timeout: timeout}
}

// Notify replaces the current toast. It satisfies table.Notifier.
func (t *Toaster) Notify(message string, severity table.Severity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.toast = &Toast{
		Message:   message,
		Severity:  severity,
		ExpiresAt: nowFunc().Add(t.timeout),
	}
}

// Current returns the displayed toast, or nil if there is none.
func (t *Toaster) Current() *Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.toast == nil {
		return nil
	}
	if !nowFunc().Before(t.toast.ExpiresAt) {
		t.toast = nil
		return nil
	}
	toast := *t.toast
	return &toast
}

func (t *Toaster) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.toast = nil
}
