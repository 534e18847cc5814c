package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/dmitrijs2005/gophauth/internal/authrpc"
	"github.com/dmitrijs2005/gophauth/internal/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
)

// options carries global flags and the resolved configuration to every
// subcommand.
type options struct {
	configFile string
	addr       string
	tokenFile  string
	timeout    time.Duration
	jsonOutput bool

	cfg      *config.Config
	dialOpts []grpc.DialOption
}

// NewRootCmd creates the authctl command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authctl",
		Short: "Command-line client for the gophauth service",
		Long: `authctl registers accounts, logs in and manages users on a gophauth
server. The token pair from login is kept in the token file and refreshed
automatically when the access token expires.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.resolve(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configFile, "config", "", "JSON config file path")
	pf.StringVar(&o.addr, "addr", "", "server address (host:port)")
	pf.StringVar(&o.tokenFile, "token-file", "", "file holding the saved token pair")
	pf.DurationVar(&o.timeout, "timeout", 0, "timeout for the whole command")
	pf.BoolVar(&o.jsonOutput, "json", false, "print results as JSON")

	cmd.AddCommand(newPingCmd(o))
	cmd.AddCommand(newRegisterCmd(o))
	cmd.AddCommand(newLoginCmd(o))
	cmd.AddCommand(newRefreshCmd(o))
	cmd.AddCommand(newWhoamiCmd(o))
	cmd.AddCommand(newLogoutCmd(o))
	cmd.AddCommand(newUsersCmd(o))

	return cmd
}

// resolve loads config and lets explicitly set flags win.
func (o *options) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.ServerAddr = o.addr
	}
	if flags.Changed("token-file") {
		cfg.TokenFile = o.tokenFile
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}

	o.cfg = cfg
	return nil
}

// withClient dials the server with the saved tokens, runs fn and persists
// any pair the client stores along the way.
func (o *options) withClient(cmd *cobra.Command, fn func(ctx context.Context, c *client.GRPCClient) error) error {
	tokens, err := LoadTokens(o.cfg.TokenFile)
	if err != nil {
		return err
	}

	var saveErr error
	c, err := client.NewGRPCClient(o.cfg.ServerAddr,
		client.WithTokens(tokens),
		client.WithTokenHook(func(t client.Tokens) {
			if err := SaveTokens(o.cfg.TokenFile, t); err != nil {
				saveErr = err
			}
		}),
		client.WithDialOptions(o.dialOpts...),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	if err := fn(ctx, c); err != nil {
		return err
	}
	return saveErr
}

func (o *options) printUsers(w io.Writer, users ...*authrpc.User) error {
	if o.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(users) == 1 {
			return enc.Encode(users[0])
		}
		return enc.Encode(users)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tACTIVE\tADMIN\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\t%s\n",
			u.ID, u.Username, u.Email, u.IsActive, u.IsAdmin, u.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func (o *options) printTokens(w io.Writer, prefix string, resp *authrpc.TokenResponse) error {
	if o.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	_, err := fmt.Fprintf(w, "%s; access token expires in %s, refresh token in %s\n", prefix,
		time.Duration(resp.ExpiresIn)*time.Second, time.Duration(resp.RefreshExpiresIn)*time.Second)
	return err
}

// credentials holds the flags shared by register and login.
type credentials struct {
	username      string
	passwordStdin bool
}

func (cr *credentials) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&cr.username, "username", "u", "", "account username (prompted when empty)")
	cmd.Flags().BoolVar(&cr.passwordStdin, "password-stdin", false, "read the password from stdin instead of the terminal")
}

func (cr *credentials) readUsername(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	if cr.username != "" {
		return cr.username, nil
	}
	username, err := GetSimpleText(in, "Username", cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read username: %w", err)
	}
	return username, nil
}

func (cr *credentials) readPassword(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	if cr.passwordStdin {
		return GetPasswordLine(in)
	}
	return GetPassword(cmd.ErrOrStderr())
}
