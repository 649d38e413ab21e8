package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/mensylisir/xmadmin/common"
	"github.com/mensylisir/xmadmin/config"
	"github.com/mensylisir/xmadmin/connector"
)

// resolvePassword returns --password, or reads one from the terminal when
// --ask-pass is set.
func resolvePassword(opts *globalOptions, in *os.File, prompt io.Writer) (string, error) {
	if !opts.askPass {
		return opts.password, nil
	}
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--ask-pass requires an interactive terminal")
	}
	fmt.Fprint(prompt, "SSH password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", errors.Wrap(err, "failed to read password")
	}
	return string(raw), nil
}

// resolveHosts builds the target host list from the inventory, the ad-hoc
// connection flags or --local, in that order of precedence.
func resolveHosts(opts *globalOptions, password string) ([]connector.Host, error) {
	switch {
	case opts.local:
		h := connector.NewHost()
		h.SetName(common.LocalHostname)
		h.SetAddress("127.0.0.1")
		return []connector.Host{h}, nil

	case opts.cfgFile != "":
		inv, err := config.NewLoader(opts.cfgFile).Load()
		if err != nil {
			return nil, err
		}
		all, err := inv.Hosts()
		if err != nil {
			return nil, errors.Wrapf(err, "invalid inventory '%s'", opts.cfgFile)
		}
		hosts, err := config.Select(all, opts.hosts)
		if err != nil {
			return nil, err
		}
		if password != "" {
			for _, h := range hosts {
				if h.GetPassword() == "" {
					h.SetPassword(password)
				}
			}
		}
		return hosts, nil

	case opts.address != "":
		if len(opts.hosts) > 0 {
			return nil, errors.New("--host selects inventory hosts and requires --config")
		}
		h := connector.NewHost()
		addr := strings.TrimSpace(opts.address)
		h.SetName(addr)
		h.SetAddress(addr)
		h.SetUser(config.DefaultUser)
		if opts.user != "" {
			h.SetUser(opts.user)
		}
		if opts.port != 0 {
			h.SetPort(opts.port)
		}
		h.SetPassword(password)
		h.SetPrivateKeyPath(opts.keyPath)
		h.SetBastion(opts.bastion)
		h.SetBastionPort(opts.bastionPort)
		h.SetBastionUser(opts.bastionUser)
		if password == "" && opts.keyPath == "" {
			h.SetPrivateKeyPath(config.DefaultPrivateKeyPath())
		}
		if err := h.Validate(); err != nil {
			return nil, err
		}
		return []connector.Host{h}, nil
	}
	return nil, errors.New("no target host: use --config, --address or --local")
}
