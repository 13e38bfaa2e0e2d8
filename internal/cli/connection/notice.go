package connection

import (
	"sync"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/metric"
)

// NoticeRecorder keeps every notice it receives.
type NoticeRecorder struct {
	mu      sync.Mutex
	notices []domain.Notice
}

// Notify implements domain.Notifier.
func (r *NoticeRecorder) Notify(n domain.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of everything recorded.
func (r *NoticeRecorder) Notices() []domain.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notice(nil), r.notices...)
}

// Last returns the most recent notice, if any.
func (r *NoticeRecorder) Last() (domain.Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return domain.Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Contains reports whether a notice with message was recorded.
func (r *NoticeRecorder) Contains(message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notices {
		if n.Message == message {
			return true
		}
	}
	return false
}

// Reset drops everything recorded.
func (r *NoticeRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}

// MeteredNotifier counts notices by level before forwarding them.
func MeteredNotifier(next domain.Notifier, reg *metric.Registry) domain.Notifier {
	if next == nil {
		next = domain.NopNotifier
	}
	if reg == nil {
		return next
	}
	return domain.NotifierFunc(func(n domain.Notice) {
		reg.Notices.WithLabelValues(string(n.Level)).Inc()
		next.Notify(n)
	})
}

// Fanout forwards every notice to each notifier in order.
func Fanout(notifiers ...domain.Notifier) domain.Notifier {
	return domain.NotifierFunc(func(n domain.Notice) {
		for _, nt := range notifiers {
			if nt != nil {
				nt.Notify(n)
			}
		}
	})
}
