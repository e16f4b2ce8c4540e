package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"go-user-admin/internal/domain"
	"go-user-admin/internal/form"
	"go-user-admin/internal/view"
)

func (a *app) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List, add, edit and delete users",
	}
	cmd.AddCommand(a.usersListCmd())
	cmd.AddCommand(a.usersDeleteCmd())
	cmd.AddCommand(a.usersEditCmd())
	cmd.AddCommand(a.usersAddCmd())
	return cmd
}

// newView 脚本命令与 TUI 走同一个视图模型
func (a *app) newView(cmd *cobra.Command) (*view.Model, error) {
	ctx := cmd.Context()
	b, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	return view.New(b,
		view.WithContext(ctx),
		view.WithLogger(a.log),
		view.WithRoles(a.roles(ctx, b)),
	), nil
}

// report 成功提示写 stdout，第一条错误提示作为命令错误返回
func report(w io.Writer, vm *view.Model) error {
	for _, t := range vm.Toasts() {
		if t.Kind == view.ToastError {
			return errors.New(t.Text)
		}
		fmt.Fprintln(w, t.Text)
	}
	return nil
}

func (a *app) usersListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users ordered by role level",
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, err := a.newView(cmd)
			if err != nil {
				return err
			}
			defer vm.Unmount()
			vm.Drive(vm.Mount())
			if err := report(cmd.OutOrStdout(), vm); err != nil {
				return err
			}
			return printRows(cmd.OutOrStdout(), vm.Rows, a.flagOutput)
		},
	}
	cmd.Flags().StringVarP(&a.flagOutput, "output", "o", "table", "output format: table, json or yaml")
	return cmd
}

func printRows(w io.Writer, rows []domain.UserRow, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if rows == nil {
			rows = []domain.UserRow{}
		}
		return enc.Encode(rows)
	case "yaml":
		if rows == nil {
			rows = []domain.UserRow{}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tROLE\tDESCRIPTION")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Role, r.Description)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q (table|json|yaml)", format)
	}
}

func (a *app) usersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a user",
		Long:    "Delete a user and its role links. The developer and admin accounts are refused by the server.",
		Example: "  console users delete alice",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, err := a.newView(cmd)
			if err != nil {
				return err
			}
			defer vm.Unmount()
			vm.Drive(vm.ConfirmDelete(domain.UserRow{ID: args[0]}))
			return report(cmd.OutOrStdout(), vm)
		},
	}
}

// pickRow 在列表中找到要编辑的那一行；用户有多个角色时需用 from 指明
func pickRow(rows []domain.UserRow, id, from string) (domain.UserRow, error) {
	var hits []domain.UserRow
	for _, r := range rows {
		if r.ID == id && (from == "" || r.Role == from) {
			hits = append(hits, r)
		}
	}
	switch len(hits) {
	case 0:
		if from != "" {
			return domain.UserRow{}, fmt.Errorf("user %s has no role %s", id, from)
		}
		return domain.UserRow{}, fmt.Errorf("user %s not found", id)
	case 1:
		return hits[0], nil
	default:
		return domain.UserRow{}, fmt.Errorf("user %s has several roles, choose one with --from-role", id)
	}
}

func (a *app) usersEditCmd() *cobra.Command {
	var name, role, from, password string
	cmd := &cobra.Command{
		Use:     "edit <id>",
		Short:   "Change a user's name, role or password",
		Long:    "Change a user's name, role or password. Only the listed role is replaced; other roles of the user are kept.",
		Example: "  console users edit alice --name \"Alice B\" --role editor",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, err := a.newView(cmd)
			if err != nil {
				return err
			}
			defer vm.Unmount()
			vm.Drive(vm.Mount())
			if err := report(io.Discard, vm); err != nil {
				return err
			}
			row, err := pickRow(vm.Rows, args[0], from)
			if err != nil {
				return err
			}
			vm.OpenEditDialog(row)
			vm.EditForm.Fill(form.Values{form.FieldName: name, form.FieldRole: role, form.FieldPassword: password})
			c := vm.ConfirmEdit()
			if c == nil {
				return vm.EditForm.Validate()
			}
			vm.Drive(c)
			return report(cmd.OutOrStdout(), vm)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", "", "role name")
	cmd.Flags().StringVar(&from, "from-role", "", "role row to replace when the user has several")
	cmd.Flags().StringVar(&password, "password", "", "new password (empty keeps the current one)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func (a *app) usersAddCmd() *cobra.Command {
	var name, role, password string
	cmd := &cobra.Command{
		Use:     "add <id>",
		Short:   "Create a user with one role",
		Example: "  console users add bob --name Bob --role guest --password secret",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, err := a.newView(cmd)
			if err != nil {
				return err
			}
			defer vm.Unmount()
			vm.OpenAddDialog()
			vm.AddForm.Fill(form.Values{
				form.FieldID:       args[0],
				form.FieldName:     name,
				form.FieldRole:     role,
				form.FieldPassword: password,
			})
			c := vm.ConfirmAdd()
			if c == nil {
				return vm.AddForm.Validate()
			}
			vm.Drive(c)
			return report(cmd.OutOrStdout(), vm)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", "", "role name")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("role")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
