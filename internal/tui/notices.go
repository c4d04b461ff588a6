package tui

import (
	"sync"

	"github.com/jask/coursedesk/internal/service"
)

// NoticeQueue collects notices reported from command goroutines until the
// update loop drains them.
type NoticeQueue struct {
	mu    sync.Mutex
	items []service.Notice
}

func NewNoticeQueue() *NoticeQueue { return &NoticeQueue{} }

func (q *NoticeQueue) Report(n service.Notice) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
}

func (q *NoticeQueue) drain() []service.Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}
