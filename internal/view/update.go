package view

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"go-user-admin/internal/bridge"
)

type RowsLoaded struct {
	Seq    uint64
	Result bridge.QueryResult
	Err    error
}

type Deleted struct {
	ID     string
	Result bridge.Result
	Err    error
}

type Edited struct {
	ID  string
	OK  bool
	Err error
}

type Added struct {
	ID  string
	OK  bool
	Err error
}

// Update 处理远程结果，可能返回一次重新加载
func (m *Model) Update(msg Msg) Cmd {
	if m.unmounted {
		m.log.Debug("drop message after unmount", zap.String("msg", fmt.Sprintf("%T", msg)))
		return nil
	}
	switch msg := msg.(type) {
	case RowsLoaded:
		m.rowsLoaded(msg)
	case Deleted:
		return m.deleted(msg)
	case Edited:
		return m.edited(msg)
	case Added:
		return m.added(msg)
	}
	return nil
}

func (m *Model) rowsLoaded(msg RowsLoaded) {
	if msg.Seq != m.seq {
		m.log.Debug("drop stale load", zap.Uint64("seq", msg.Seq), zap.Uint64("latest", m.seq))
		return
	}
	m.Loading = false
	switch {
	case msg.Err != nil:
		m.toast(ToastError, "failed to load users: "+msg.Err.Error())
	case !msg.Result.OK():
		m.toast(ToastError, loadFailure(msg.Result))
	default:
		m.Rows = append(m.Rows[:0:0], msg.Result.Data...)
	}
}

func (m *Model) deleted(msg Deleted) Cmd {
	switch {
	case msg.Err != nil:
		m.toast(ToastError, fmt.Sprintf("failed to delete user %s: %v", msg.ID, msg.Err))
	case msg.Result.OK:
		m.toast(ToastSuccess, fmt.Sprintf("user %s deleted", msg.ID))
		return m.LoadRows()
	case msg.Result.Message != "":
		m.toast(ToastError, msg.Result.Message)
	default:
		m.toast(ToastError, fmt.Sprintf("failed to delete user %s", msg.ID))
	}
	return nil
}

func (m *Model) edited(msg Edited) Cmd {
	m.Edit.Loading = false
	if msg.Err != nil || !msg.OK {
		m.toast(ToastError, mutateFailure("update", msg.ID, msg.Err))
		return nil
	}
	m.EditForm.Reset()
	m.Edit.Visible = false
	m.toast(ToastSuccess, fmt.Sprintf("user %s updated", msg.ID))
	return m.LoadRows()
}

func (m *Model) added(msg Added) Cmd {
	m.Add.Loading = false
	if msg.Err != nil || !msg.OK {
		m.toast(ToastError, mutateFailure("create", msg.ID, msg.Err))
		return nil
	}
	m.AddForm.Reset()
	m.Add.Visible = false
	m.toast(ToastSuccess, fmt.Sprintf("user %s created", msg.ID))
	return m.LoadRows()
}

func loadFailure(r bridge.QueryResult) string {
	if r.Message != "" {
		return fmt.Sprintf("failed to load users (%d): %s", r.Code, r.Message)
	}
	return fmt.Sprintf("failed to load users (%d)", r.Code)
}

func mutateFailure(verb, id string, err error) string {
	var re *bridge.RemoteError
	switch {
	case errors.As(err, &re):
		return fmt.Sprintf("failed to %s user %s: %s", verb, id, re.Message)
	case err != nil:
		return fmt.Sprintf("failed to %s user %s: %v", verb, id, err)
	default:
		return fmt.Sprintf("failed to %s user %s", verb, id)
	}
}
