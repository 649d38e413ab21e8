package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mensylisir/xmadmin/common"
	"github.com/mensylisir/xmadmin/connector"
	"github.com/mensylisir/xmadmin/logger"
	"github.com/mensylisir/xmadmin/runtime"
)

var (
	// Version is set at build time
	Version = "dev"

	globals = &globalOptions{}

	// runtimeFactory builds the runtime for a subcommand run.
	runtimeFactory = newRuntime
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	cfgFile  string
	hosts    []string
	address  string
	user     string
	port     int
	password string
	askPass  bool
	keyPath  string
	local    bool

	agentSocket string
	knownHosts  string
	bastion     string
	bastionPort int
	bastionUser string

	logLevel string
	verbose  bool
	logDir   string
}

var rootCmd = &cobra.Command{
	Use:   common.AppName,
	Short: "Inspect and update RHEL and Fedora hosts over SSH",
	Long: `xmadmin runs small administration tasks against RHEL and Fedora
hosts over SSH. Hosts come from an inventory file (--config) or from
ad-hoc connection flags (--address). Hosts are processed one at a time.

Examples:
  xmadmin distro-info --address 10.0.0.5 --user root --ask-pass
  xmadmin distro-info --config inventory.yaml --require ">= 7.4"
  xmadmin update-packages --config inventory.yaml --host web1 --sudo httpd`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(globals.logLevel)
		if err != nil {
			return errors.Wrapf(err, "invalid --log-level %q", globals.logLevel)
		}
		return logger.InitGlobalLogger(globals.logDir, globals.verbose, level)
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the running
// command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&globals.cfgFile, "config", "", "Inventory file listing target hosts")
	f.StringSliceVar(&globals.hosts, "host", nil, "Inventory host to target (repeatable, default: all)")
	f.StringVar(&globals.address, "address", "", "Address of a single ad-hoc target host")
	f.StringVarP(&globals.user, "user", "u", "", "SSH user (default: root)")
	f.IntVarP(&globals.port, "port", "p", 0, "SSH port (default: 22)")
	f.StringVar(&globals.password, "password", "", "SSH password, also used to answer sudo prompts")
	f.BoolVar(&globals.askPass, "ask-pass", false, "Prompt for the SSH password")
	f.StringVarP(&globals.keyPath, "key", "i", "", "SSH private key file (default: ~/.ssh/id_rsa)")
	f.BoolVar(&globals.local, "local", false, "Run commands on this machine instead of over SSH")
	f.StringVar(&globals.agentSocket, "agent-socket", "env:SSH_AUTH_SOCK", "SSH agent socket path, or env:VAR to read it from VAR (empty disables the agent)")
	f.StringVar(&globals.knownHosts, "known-hosts", "", "Verify host keys against this known_hosts file (default: host keys are not checked)")
	f.StringVar(&globals.bastion, "bastion", "", "Jump host used to reach the --address host")
	f.IntVar(&globals.bastionPort, "bastion-port", 0, "SSH port of the jump host (default: 22)")
	f.StringVar(&globals.bastionUser, "bastion-user", "", "SSH user on the jump host (default: the target user)")
	f.StringVar(&globals.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	f.BoolVarP(&globals.verbose, "verbose", "v", false, "Enable debug logging")
	f.StringVar(&globals.logDir, "log-dir", "", "Also write logs to a daily rotated file in this directory")

	rootCmd.MarkFlagsMutuallyExclusive("config", "address")
	rootCmd.MarkFlagsMutuallyExclusive("config", "local")
	rootCmd.MarkFlagsMutuallyExclusive("address", "local")
	rootCmd.MarkFlagsMutuallyExclusive("password", "ask-pass")
	rootCmd.MarkFlagsMutuallyExclusive("config", "bastion")
	rootCmd.MarkFlagsMutuallyExclusive("local", "bastion")

	rootCmd.AddCommand(newDistroInfoCmd(), newUpdatePackagesCmd())
	rootCmd.SetVersionTemplate(`xmadmin {{.Version}}
`)
}

// newRuntime resolves the target hosts from the global flags and builds the
// runtime that connects to them.
func newRuntime() (runtime.Runtime, error) {
	password, err := resolvePassword(globals, os.Stdin, os.Stderr)
	if err != nil {
		return nil, err
	}
	hosts, err := resolveHosts(globals, password)
	if err != nil {
		return nil, err
	}
	return runtime.NewRuntime(runtime.Config{
		Hosts: hosts,
		Out:   os.Stdout,
		Local: globals.local,
		Dialer: connector.NewDialer(connector.DialOptions{
			AgentSocket:    globals.agentSocket,
			KnownHostsFile: globals.knownHosts,
		}),
	})
}

func closeRuntime(rt runtime.Runtime) {
	if err := rt.Close(); err != nil {
		logger.Log.Warnf("Failed to close connections: %v", err)
	}
}
