package distro

import (
	"context"
	"fmt"

	"github.com/mensylisir/xmadmin/cache"
	"github.com/mensylisir/xmadmin/common"
	"github.com/mensylisir/xmadmin/executor"
	"github.com/mensylisir/xmadmin/session"
)

// Inspector detects host distributions and remembers them per host for the
// lifetime of the Inspector. Cached entries are never refreshed.
type Inspector struct {
	cache *cache.Cache[string, Info]
}

func NewInspector() *Inspector {
	return &Inspector{cache: cache.NewCache[string, Info]()}
}

// Inspect returns the distribution of the session's host, reading the
// release file only the first time a host is seen. The result is also
// printed as one line to sess.Out.
func (in *Inspector) Inspect(ctx context.Context, sess *session.Session) (Info, error) {
	hostID := sess.HostID()
	log := sess.Log()

	info, ok := in.cache.Get(hostID)
	if !ok {
		cmd := fmt.Sprintf(common.CatCmdTpl, common.RedHatReleaseFile)
		res, err := sess.Executor.Run(ctx, cmd, executor.Options{Quiet: true})
		if err != nil {
			return Info{}, &Error{Host: hostID, Kind: ErrReleaseUnreadable, Output: resultOutput(res), Err: err}
		}

		info, err = Parse(res.Stdout)
		if err != nil {
			return Info{}, &Error{Host: hostID, Kind: ErrUnrecognizedRelease, Output: res.Stdout, Err: err}
		}
		in.cache.Set(hostID, info)
		log.Debugf("Detected distribution %s", info)
	}

	fmt.Fprintln(sess.Out, info.String())
	return info, nil
}

// Cached returns the remembered distribution of hostID, if any.
func (in *Inspector) Cached(hostID string) (Info, bool) {
	return in.cache.Get(hostID)
}

// Forget drops the remembered distribution of hostID.
func (in *Inspector) Forget(hostID string) {
	in.cache.Delete(hostID)
}

func resultOutput(res *executor.Result) string {
	if res == nil {
		return ""
	}
	return res.Stdout + res.Stderr
}
