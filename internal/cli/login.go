package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"go-user-admin/internal/bridge"
)

func (a *app) loginCmd() *cobra.Command {
	var user, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for a bearer token",
		Long: `Log in to the admin API and print the token.

Export it for later calls:
  export APP_CONSOLE_TOKEN=$(console login --user admin --password 123)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.flagLocal {
				return errors.New("login needs the admin API; drop --local")
			}
			if user == "" {
				user = a.cfg.Console.UserID
			}
			if password == "" {
				password = a.cfg.Console.Password
			}
			if user == "" || password == "" {
				return errors.New("--user and --password are required")
			}
			c := bridge.NewHTTPClient(a.baseURL(), "", a.timeout())
			out, err := c.Login(cmd.Context(), user, password)
			if err != nil {
				return fmt.Errorf("login %s: %w", a.baseURL(), err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "logged in as %s (%s)\n", out.ID, strings.Join(out.Roles, ","))
			fmt.Fprintln(cmd.OutOrStdout(), out.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id or name (default console.userId)")
	cmd.Flags().StringVar(&password, "password", "", "password (default console.password)")
	return cmd
}
