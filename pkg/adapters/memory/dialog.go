package memory

import (
	"context"
	"sync"
)

// Notification is an error shown through a Dialog.
type Notification struct {
	Title string
	Msg   string
}

// Dialog implements ports.Dialog with scripted answers. An empty answer queue means the
// user cancelled.
type Dialog struct {
	mu            sync.Mutex
	savePaths     []string
	openPaths     []string
	notifications []Notification
}

// NewDialog creates a dialog with no scripted answers.
func NewDialog() *Dialog {
	return &Dialog{}
}

// AnswerSave queues the path returned by the next save prompt.
func (d *Dialog) AnswerSave(path string) *Dialog {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.savePaths = append(d.savePaths, path)
	return d
}

// AnswerOpen queues the path returned by the next open prompt.
func (d *Dialog) AnswerOpen(path string) *Dialog {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.openPaths = append(d.openPaths, path)
	return d
}

func (d *Dialog) SavePath(_ context.Context, _ string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return pop(&d.savePaths)
}

func (d *Dialog) OpenPath(_ context.Context, _ string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return pop(&d.openPaths)
}

func (d *Dialog) NotifyError(_ context.Context, title, msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifications = append(d.notifications, Notification{Title: title, Msg: msg})
}

// Notifications returns every error shown so far.
func (d *Dialog) Notifications() []Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Notification(nil), d.notifications...)
}

func pop(q *[]string) (string, bool) {
	if len(*q) == 0 {
		return "", false
	}
	p := (*q)[0]
	*q = (*q)[1:]
	return p, true
}
