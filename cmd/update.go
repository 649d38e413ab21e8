package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mensylisir/xmadmin/executor"
	"github.com/mensylisir/xmadmin/logger"
	"github.com/mensylisir/xmadmin/packages"
	"github.com/mensylisir/xmadmin/util"
)

func newUpdatePackagesCmd() *cobra.Command {
	opts := executor.Options{}
	cmd := &cobra.Command{
		Use:   "update-packages [names...]",
		Short: "Run yum update on each host",
		Long: `Runs "yum update -y [names...]" on each host. With no names every
installed package is updated. yum output is echoed unless --quiet is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFactory()
			if err != nil {
				return err
			}
			defer closeRuntime(rt)

			updater := packages.NewUpdater()
			for _, host := range rt.AllHosts() {
				sess, err := rt.Session(cmd.Context(), host)
				if err != nil {
					return err
				}
				start := time.Now()
				if err := updater.Update(cmd.Context(), sess, opts, args...); err != nil {
					return err
				}
				logger.Log.InfofNode(sess.HostID(), "Update finished in %s", util.ShortDur(time.Since(start).Round(time.Second)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Do not echo yum output")
	cmd.Flags().BoolVar(&opts.WarnOnly, "warn-only", false, "Log a warning instead of failing when yum exits non-zero")
	cmd.Flags().BoolVar(&opts.Sudo, "sudo", false, "Run yum through sudo")
	return cmd
}
