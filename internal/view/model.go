// Package view is the user list screen as a plain state machine.
//
// Gestures mutate the model synchronously and may return a Cmd. A Cmd does
// the remote work off the event loop and reports back with a Msg, which the
// host feeds into Update on the same goroutine that handles gestures.
package view

import (
	"context"

	"go.uber.org/zap"

	"go-user-admin/internal/bridge"
	"go-user-admin/internal/domain"
	"go-user-admin/internal/form"
)

// Cmd 远程调用；ctx 应为 Model.Context()
type Cmd func(ctx context.Context) Msg

type Msg interface{}

type EditState struct {
	Visible bool
	Loading bool
	Target  domain.UserRow
}

type AddState struct {
	Visible bool
	Loading bool
}

type Option func(*Model)

func WithNotifier(n Notifier) Option { return func(m *Model) { m.notifier = n } }

func WithLogger(l *zap.Logger) Option { return func(m *Model) { m.log = l } }

// WithRoles 角色目录，用于表单 role 字段校验
func WithRoles(roles []string) Option { return func(m *Model) { m.roles = roles } }

// WithContext 父 ctx；Unmount 时取消派生出的 ctx
func WithContext(ctx context.Context) Option { return func(m *Model) { m.parent = ctx } }

type Model struct {
	Rows    []domain.UserRow
	Edit    EditState
	Add     AddState
	Loading bool

	EditForm *form.Dialog
	AddForm  *form.Dialog

	bridge   bridge.Bridge
	notifier Notifier
	log      *zap.Logger
	roles    []string
	toasts   []Toast

	parent    context.Context
	ctx       context.Context
	cancel    context.CancelFunc
	seq       uint64
	unmounted bool
}

func New(b bridge.Bridge, opts ...Option) *Model {
	m := &Model{bridge: b, log: zap.NewNop(), parent: context.Background()}
	for _, o := range opts {
		o(m)
	}
	m.ctx, m.cancel = context.WithCancel(m.parent)
	m.EditForm = form.EditForm(m.roles)
	m.AddForm = form.AddForm(m.roles)
	return m
}

func (m *Model) Context() context.Context { return m.ctx }

// Mounted false 表示已卸载
func (m *Model) Mounted() bool { return !m.unmounted }

// Mount 首次加载
func (m *Model) Mount() Cmd { return m.LoadRows() }

// Unmount 取消进行中的调用，之后到达的结果一律丢弃
func (m *Model) Unmount() {
	if m.unmounted {
		return
	}
	m.unmounted = true
	m.cancel()
}

// LoadRows 发起一次列表查询；只有最新一次查询的结果会被采用
func (m *Model) LoadRows() Cmd {
	if m.unmounted {
		return nil
	}
	m.seq++
	seq := m.seq
	m.Loading = true
	b := m.bridge
	return func(ctx context.Context) Msg {
		res, err := b.Query(ctx, bridge.ListUsers{})
		return RowsLoaded{Seq: seq, Result: res, Err: err}
	}
}

func (m *Model) OpenEditDialog(row domain.UserRow) {
	m.Edit.Target = row
	m.EditForm.Reset()
	m.EditForm.Fill(form.Values{
		form.FieldID:   row.ID,
		form.FieldName: row.Name,
		form.FieldRole: row.Role,
	})
	m.Edit.Visible = true
}

func (m *Model) OpenAddDialog() { m.Add.Visible = true }

// CloseDialogs 只收起弹窗，不动 Target 和 Loading
func (m *Model) CloseDialogs() {
	m.Edit.Visible = false
	m.Add.Visible = false
}

func (m *Model) ConfirmDelete(row domain.UserRow) Cmd {
	if m.unmounted {
		return nil
	}
	id := row.ID
	b := m.bridge
	return func(ctx context.Context) Msg {
		res, err := b.Execute(ctx, bridge.DeleteUser{ID: id})
		return Deleted{ID: id, Result: res, Err: err}
	}
}

// ConfirmEdit 校验失败时直接返回 nil，不产生任何副作用
func (m *Model) ConfirmEdit() Cmd {
	if m.unmounted || m.Edit.Loading {
		return nil
	}
	var cmd Cmd
	m.EditForm.ValidateFields(func(err error, v form.Values) {
		if err != nil {
			m.log.Debug("edit form invalid", zap.Error(err))
			return
		}
		m.Edit.Loading = true
		req := bridge.EditUser{
			ID:       v[form.FieldID],
			Name:     v[form.FieldName],
			Role:     v[form.FieldRole],
			PrevRole: m.Edit.Target.Role,
			Password: v[form.FieldPassword],
		}
		b := m.bridge
		cmd = func(ctx context.Context) Msg {
			ok, err := b.Mutate(ctx, req)
			return Edited{ID: req.ID, OK: ok, Err: err}
		}
	})
	return cmd
}

func (m *Model) ConfirmAdd() Cmd {
	if m.unmounted || m.Add.Loading {
		return nil
	}
	var cmd Cmd
	m.AddForm.ValidateFields(func(err error, v form.Values) {
		if err != nil {
			m.log.Debug("add form invalid", zap.Error(err))
			return
		}
		m.Add.Loading = true
		req := bridge.AddUser{
			ID:       v[form.FieldID],
			Name:     v[form.FieldName],
			Role:     v[form.FieldRole],
			Password: v[form.FieldPassword],
		}
		b := m.bridge
		cmd = func(ctx context.Context) Msg {
			ok, err := b.Mutate(ctx, req)
			return Added{ID: req.ID, OK: ok, Err: err}
		}
	})
	return cmd
}

// Drive 同步执行 cmd 及其后续命令，直到没有新命令
func (m *Model) Drive(cmd Cmd) {
	for cmd != nil {
		cmd = m.Update(cmd(m.ctx))
	}
}
