package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
)

// NoticePrinter writes notices as single lines, typically to stderr.
type NoticePrinter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewNoticePrinter creates a printer writing to w.
func NewNoticePrinter(w io.Writer) *NoticePrinter {
	return &NoticePrinter{w: w}
}

// Notify implements domain.Notifier.
func (p *NoticePrinter) Notify(n domain.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s\n", noticeMark(n.Level), n.Message)
}

func noticeMark(level domain.NoticeLevel) string {
	switch level {
	case domain.NoticeSuccess:
		return "✓"
	case domain.NoticeWarning:
		return "!"
	case domain.NoticeError:
		return "✗"
	default:
		return "·"
	}
}
