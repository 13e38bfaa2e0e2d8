package domain

// NoticeLevel classifies a user-visible notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message surfaced to the user by a flow or the pipeline.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Notifier receives notices.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f.
func (f NotifierFunc) Notify(n Notice) { f(n) }

// NopNotifier discards every notice.
var NopNotifier Notifier = NotifierFunc(func(Notice) {})
