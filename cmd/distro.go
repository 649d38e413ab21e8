package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mensylisir/xmadmin/common"
	"github.com/mensylisir/xmadmin/distro"
	"github.com/mensylisir/xmadmin/session"
	"github.com/mensylisir/xmadmin/util"
)

type distroInfoOptions struct {
	require     string
	saveRelease string
}

func newDistroInfoCmd() *cobra.Command {
	opts := &distroInfoOptions{}
	cmd := &cobra.Command{
		Use:   "distro-info",
		Short: "Print the distribution family and version of each host",
		Long: `Reads /etc/redhat-release on each host and prints one line per host:

  <family> <major> <minor>

where family is rhel or fedora and a missing minor version prints as None.
The first host that cannot be read or recognised stops the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFactory()
			if err != nil {
				return err
			}
			defer closeRuntime(rt)

			inspector := distro.NewInspector()
			for _, host := range rt.AllHosts() {
				sess, err := rt.Session(cmd.Context(), host)
				if err != nil {
					return err
				}
				if err := runDistroInfo(cmd.Context(), inspector, sess, opts); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.require, "require", "", `Fail unless every host satisfies this version constraint, e.g. ">= 7.4"`)
	cmd.Flags().StringVar(&opts.saveRelease, "save-release", "", "Copy each host's release file into this directory")
	return cmd
}

func runDistroInfo(ctx context.Context, inspector *distro.Inspector, sess *session.Session, opts *distroInfoOptions) error {
	info, err := inspector.Inspect(ctx, sess)
	if err != nil {
		return err
	}

	if opts.require != "" {
		ok, err := info.Satisfies(opts.require)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Errorf("%s: %s does not satisfy %q", sess.HostID(), info, opts.require)
		}
	}

	if opts.saveRelease != "" {
		dest, err := saveRelease(ctx, sess, opts.saveRelease)
		if err != nil {
			return err
		}
		sess.Log().Infof("Saved release file to %s", dest)
	}
	return nil
}

// saveRelease copies the host's release file to dir/<host>-redhat-release.
// Local sessions read the file directly.
func saveRelease(ctx context.Context, sess *session.Session, dir string) (string, error) {
	var src io.ReadCloser
	var err error
	if sess.Conn != nil {
		src, err = sess.Conn.Fetch(ctx, common.RedHatReleaseFile)
	} else {
		src, err = os.Open(common.RedHatReleaseFile)
	}
	if err != nil {
		return "", errors.Wrapf(err, "%s: failed to fetch %s", sess.HostID(), common.RedHatReleaseFile)
	}
	defer src.Close()

	if err := util.EnsureDir(dir); err != nil {
		return "", err
	}
	dest := filepath.Join(dir, sess.HostID()+"-"+filepath.Base(common.RedHatReleaseFile))
	f, err := os.Create(dest)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %s", dest)
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		return "", errors.Wrapf(err, "failed to write %s", dest)
	}
	return dest, f.Close()
}
