package view

type ToastKind int

const (
	ToastSuccess ToastKind = iota
	ToastError
)

func (k ToastKind) String() string {
	if k == ToastError {
		return "error"
	}
	return "success"
}

type Toast struct {
	Kind ToastKind
	Text string
}

// Notifier 展示提示；由宿主（TUI/CLI）实现
type Notifier interface {
	Notify(t Toast)
}

// NotifierFunc 适配普通函数
type NotifierFunc func(Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

func (m *Model) toast(kind ToastKind, text string) {
	t := Toast{Kind: kind, Text: text}
	m.toasts = append(m.toasts, t)
	if m.notifier != nil {
		m.notifier.Notify(t)
	}
}

// LastToast 最近一条提示
func (m *Model) LastToast() (Toast, bool) {
	if len(m.toasts) == 0 {
		return Toast{}, false
	}
	return m.toasts[len(m.toasts)-1], true
}

// Toasts 全部提示，按时间顺序
func (m *Model) Toasts() []Toast { return append([]Toast(nil), m.toasts...) }
