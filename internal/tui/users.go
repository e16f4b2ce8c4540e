package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-user-admin/internal/domain"
	"go-user-admin/internal/form"
	"go-user-admin/internal/view"
)

type mode int

const (
	modeNormal mode = iota
	modeEdit        // 编辑弹窗
	modeAdd         // 新增弹窗
	modeConfirmDel  // 删除确认
)

// remoteMsg 包装 view 的远程结果
type remoteMsg struct{ msg view.Msg }

type Model struct {
	vm      *view.Model
	title   string
	table   table.Model
	spinner spinner.Model
	mode    mode

	dialog *form.Dialog
	inputs []textinput.Model
	focus  int
	first  int    // 可聚焦的第一个输入框；编辑时 ID 只读
	hint   string // 表单校验提示，仅本地展示
	mark   int    // 打开弹窗时已有的提示条数

	pending domain.UserRow // 按 d 时选中的行；期间列表刷新不影响它

	lastRefreshed time.Time
	width         int
	height        int
}

func New(vm *view.Model, title string) Model {
	s := spinner.New()
	s.Spinner = brailleSpinner
	s.Style = StyleSpinner
	m := Model{vm: vm, title: title, spinner: s, width: 100, height: 24}
	return m.withRebuiltTable()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.lift(m.vm.Mount()), m.spinner.Tick)
}

// lift 把 view.Cmd 放到 bubbletea 的协程里执行
func (m Model) lift(c view.Cmd) tea.Cmd {
	if c == nil {
		return nil
	}
	ctx := m.vm.Context()
	return func() tea.Msg { return remoteMsg{msg: c(ctx)} }
}

// withSpinner 加载中时顺带驱动 spinner
func (m Model) withSpinner(c tea.Cmd) tea.Cmd {
	if c == nil {
		return nil
	}
	if m.vm.Loading {
		return tea.Batch(c, m.spinner.Tick)
	}
	return c
}

// ID/NAME/ROLE 列宽，加上列间距和外边距
const fixedColWidth = 16 + 20 + 12 + 12

func (m Model) withRebuiltTable() Model {
	descWidth := m.width - fixedColWidth
	if descWidth < 20 {
		descWidth = 20
	}
	cols := []table.Column{
		{Title: "ID", Width: 16},
		{Title: "NAME", Width: 20},
		{Title: "ROLE", Width: 12},
		{Title: "DESCRIPTION", Width: descWidth},
	}
	rows := make([]table.Row, len(m.vm.Rows))
	for i, r := range m.vm.Rows {
		rows[i] = table.Row{r.ID, r.Name, r.Role, r.Description}
	}

	h := m.height - 9
	if h < 3 {
		h = 3
	}
	cursor := m.table.Cursor()
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(h),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("236")).
		Bold(false)
	t.SetStyles(s)
	if cursor > 0 && cursor < len(rows) {
		t.SetCursor(cursor)
	}
	m.table = t
	return m
}

func (m Model) selected() (domain.UserRow, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.vm.Rows) {
		return domain.UserRow{}, false
	}
	return m.vm.Rows[c], true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m.withRebuiltTable(), nil

	case remoteMsg:
		next := m.vm.Update(msg.msg)
		if _, ok := msg.msg.(view.RowsLoaded); ok && !m.vm.Loading {
			m.lastRefreshed = time.Now()
		}
		m = m.withRebuiltTable()
		if m.mode == modeEdit && !m.vm.Edit.Visible || m.mode == modeAdd && !m.vm.Add.Visible {
			m.closeDialog()
		}
		return m, m.withSpinner(m.lift(next))

	case spinner.TickMsg:
		if !m.vm.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.vm.Unmount()
			return m, tea.Quit
		}
		switch m.mode {
		case modeEdit, modeAdd:
			return m.updateDialog(msg)
		case modeConfirmDel:
			return m.updateConfirm(msg)
		}
		return m.updateNormal(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.vm.Unmount()
		return m, tea.Quit
	case "a":
		m.vm.OpenAddDialog()
		return m.openDialog(modeAdd, m.vm.AddForm, 0)
	case "e", "enter":
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.vm.OpenEditDialog(row)
		return m.openDialog(modeEdit, m.vm.EditForm, 1)
	case "d":
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.pending = row
		m.mode = modeConfirmDel
		return m, nil
	case "ctrl+r":
		return m, m.withSpinner(m.lift(m.vm.LoadRows()))
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		row := m.pending
		m.mode, m.pending = modeNormal, domain.UserRow{}
		return m, m.lift(m.vm.ConfirmDelete(row))
	case "esc":
		m.mode, m.pending = modeNormal, domain.UserRow{}
	}
	return m, nil
}

func (m Model) openDialog(md mode, d *form.Dialog, first int) (tea.Model, tea.Cmd) {
	fields := d.Fields()
	m.inputs = make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Placeholder = f.Label
		ti.CharLimit = 72
		ti.SetValue(d.Value(f.Name))
		if f.Name == form.FieldPassword {
			ti.EchoMode = textinput.EchoPassword
			if md == modeEdit {
				ti.Placeholder = "leave empty to keep"
			}
		}
		m.inputs[i] = ti
	}
	m.mode, m.dialog, m.first, m.focus, m.hint = md, d, first, first, ""
	m.mark = len(m.vm.Toasts())
	m.inputs[m.focus].Focus()
	return m, textinput.Blink
}

func (m *Model) closeDialog() {
	m.mode = modeNormal
	m.dialog = nil
	m.inputs = nil
	m.hint = ""
}

func (m *Model) syncForm() {
	for i, f := range m.dialog.Fields() {
		m.dialog.Set(f.Name, m.inputs[i].Value())
	}
}

func (m *Model) moveFocus(delta int) {
	m.inputs[m.focus].Blur()
	m.focus += delta
	if m.focus >= len(m.inputs) {
		m.focus = m.first
	}
	if m.focus < m.first {
		m.focus = len(m.inputs) - 1
	}
	m.inputs[m.focus].Focus()
}

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loadingDialog() {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.vm.CloseDialogs()
		m.closeDialog()
		return m, nil
	case "tab", "down":
		m.moveFocus(1)
		return m, textinput.Blink
	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, textinput.Blink
	case "enter":
		if m.focus < len(m.inputs)-1 {
			m.moveFocus(1)
			return m, textinput.Blink
		}
		m.syncForm()
		var c view.Cmd
		if m.mode == modeEdit {
			c = m.vm.ConfirmEdit()
		} else {
			c = m.vm.ConfirmAdd()
		}
		if c == nil {
			if err := m.dialog.Validate(); err != nil {
				m.hint = err.Error()
			}
			return m, nil
		}
		m.hint = ""
		return m, m.lift(c)
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.syncForm()
	return m, cmd
}

func (m Model) loadingDialog() bool {
	return m.mode == modeEdit && m.vm.Edit.Loading || m.mode == modeAdd && m.vm.Add.Loading
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	title := StyleTitle.Render(m.title)
	count := StyleDim.Render(fmt.Sprintf(" (%d)", len(m.vm.Rows)))

	if m.mode == modeEdit || m.mode == modeAdd {
		return m.dialogView(title + count)
	}

	lines := []string{headerLine(title+count, m.width, m.lastRefreshed), ""}
	if m.vm.Loading && len(m.vm.Rows) == 0 {
		lines = append(lines, StyleWarning.Render(m.spinner.View()+" Loading..."))
	} else {
		lines = append(lines, m.table.View())
	}

	if m.mode == modeConfirmDel {
		lines = append(lines, "", StyleWarning.Render(
			fmt.Sprintf("Delete user %q? [Enter] confirm   [Esc] cancel", m.pending.ID)))
		return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
	}

	lines = append(lines, m.statusLine())
	lines = append(lines, StyleHelp.Render("[a] add   [e] edit   [d] delete  |  [ctrl+r] refresh"))
	lines = append(lines, StyleHelp.Render("[Q] quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}

func (m Model) statusLine() string {
	t, ok := m.vm.LastToast()
	if !ok {
		return ""
	}
	if t.Kind == view.ToastError {
		return StyleError.Render(t.Text)
	}
	return StyleSuccess.Render(t.Text)
}

func (m Model) dialogView(header string) string {
	heading := "Add User"
	if m.mode == modeEdit {
		heading = "Edit User " + m.vm.Edit.Target.ID
	}
	lines := []string{header, "", StyleTitle.Render(heading), ""}
	for i, f := range m.dialog.Fields() {
		label := fmt.Sprintf("  %-10s", f.Label+":")
		switch {
		case i < m.first:
			lines = append(lines, StyleDim.Render(label)+StyleDim.Render(m.inputs[i].Value()))
		case i == m.focus:
			lines = append(lines, StyleWarning.Render(label)+m.inputs[i].View())
		default:
			lines = append(lines, StyleDim.Render(label)+m.inputs[i].View())
		}
	}
	lines = append(lines, "")
	switch {
	case m.loadingDialog():
		lines = append(lines, StyleWarning.Render(m.spinner.View()+" Saving..."))
	case m.hint != "":
		lines = append(lines, StyleError.Render(m.hint))
	case len(m.vm.Toasts()) > m.mark:
		lines = append(lines, m.statusLine())
	default:
		lines = append(lines, "")
	}
	lines = append(lines, StyleHelp.Render("[Enter] next/save   [Tab] next field   [Esc] cancel"))
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}

// Launch 运行 TUI，阻塞到退出
func Launch(ctx context.Context, vm *view.Model, title string) error {
	p := tea.NewProgram(New(vm, title), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	vm.Unmount()
	return err
}
