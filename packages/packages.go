package packages

import (
	"context"
	"fmt"
	"strings"

	"github.com/mensylisir/xmadmin/common"
	"github.com/mensylisir/xmadmin/executor"
	"github.com/mensylisir/xmadmin/session"
)

// UpdateCommand builds the yum update command line. With no names every
// installed package is updated; the trailing space is kept in that case.
func UpdateCommand(names ...string) string {
	return fmt.Sprintf(common.YumUpdateCmdTpl, strings.Join(names, " "))
}

// Updater runs package updates on a session's host.
type Updater struct{}

func NewUpdater() *Updater {
	return &Updater{}
}

// Update runs yum update for names on the session's host. The executor's
// outcome is returned unchanged; opts decide whether a non-zero exit fails.
func (u *Updater) Update(ctx context.Context, sess *session.Session, opts executor.Options, names ...string) error {
	cmd := UpdateCommand(names...)
	log := sess.Log().WithField(common.CommandName, cmd)
	if len(names) == 0 {
		log.Info("Updating all packages")
	} else {
		log.Infof("Updating %d package(s)", len(names))
	}

	_, err := sess.Executor.Run(ctx, cmd, opts)
	return err
}
