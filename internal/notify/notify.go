package notify

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Titles used for user-visible notifications.
const (
	Title      = "Wallhaven Wallpaper"
	ErrorTitle = "Wallhaven Wallpaper Error"
)

// Icon tokens understood by desktop notification daemons.
const (
	IconInfo      = "dialog-information"
	IconWarning   = "dialog-warning"
	IconError     = "dialog-error"
	IconWallpaper = "plugin-wallpaper"
	IconDownload  = "download"
)

// Notifier is a fire-and-forget notification sink. Implementations must not
// block or fail the caller.
type Notifier interface {
	Notify(title, message, icon string, isError bool)
}

// Notification is one recorded call to Notify.
type Notification struct {
	Title   string
	Message string
	Icon    string
	IsError bool
}

// LogNotifier writes notifications to the logrus logger.
type LogNotifier struct {
	Logger *log.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(title, message, icon string, isError bool) {
	logger := n.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	entry := logger.WithFields(log.Fields{"title": title, "icon": icon})
	switch {
	case isError:
		entry.Error(message)
	case icon == IconWarning:
		entry.Warn(message)
	default:
		entry.Info(message)
	}
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(title, message, icon string, isError bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Title: title, Message: message, Icon: icon, IsError: isError})
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Messages returns only the message text of the recorded notifications.
func (r *Recorder) Messages() []string {
	var msgs []string
	for _, n := range r.All() {
		msgs = append(msgs, n.Message)
	}
	return msgs
}

// Multi fans a notification out to several sinks.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(title, message, icon string, isError bool) {
	for _, n := range m {
		if n != nil {
			n.Notify(title, message, icon, isError)
		}
	}
}
