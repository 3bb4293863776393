package console

import (
	"errors"
	"sync"

	"procurement-console/internal/client"
	"procurement-console/internal/core"
)

// Notifier shows notices to the user, one toast each.
type Notifier interface {
	Notify(core.Notice)
}

// NoticeLog collects notices in order. It is safe for concurrent use.
type NoticeLog struct {
	mu      sync.Mutex
	notices []core.Notice
}

func (l *NoticeLog) Notify(n core.Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
}

// Drain returns and clears the collected notices.
func (l *NoticeLog) Drain() []core.Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.notices
	l.notices = nil
	return out
}

// NoticesFor turns an error into toasts: one per field for validation failures,
// else a single error notice.
func NoticesFor(err error) []core.Notice {
	if err == nil {
		return nil
	}
	var fields core.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		out := make([]core.Notice, 0, len(fields))
		for _, fe := range fields {
			out = append(out, core.Notice{Level: core.NoticeError, Message: fe.Field + ": " + fe.Message})
		}
		return out
	}
	var verr *client.ValidationError
	if errors.As(err, &verr) {
		return []core.Notice{{Level: core.NoticeError, Message: verr.Message}}
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return []core.Notice{{Level: core.NoticeError, Message: apiErr.Message}}
	}
	return []core.Notice{{Level: core.NoticeError, Message: err.Error()}}
}

func notifyAll(n Notifier, notices []core.Notice) {
	if n == nil {
		return
	}
	for _, x := range notices {
		n.Notify(x)
	}
}
