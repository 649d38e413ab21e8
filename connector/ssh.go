package connector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/mensylisir/xmadmin/logger"
	"github.com/mensylisir/xmadmin/util"
)

type Config struct {
	Username    string
	Password    string
	Address     string
	Port        int
	PrivateKey  string
	KeyFile     string
	AgentSocket string
	Timeout     time.Duration
	Bastion     string
	BastionPort int
	BastionUser string
	// KnownHostsFile enables host key checking against an OpenSSH
	// known_hosts file. Host keys are not checked when it is empty.
	KnownHostsFile string
}

const socketEnvPrefix = "env:"

var _ Connection = (*connection)(nil)

type connection struct {
	mu         sync.Mutex
	sftpclient *sftp.Client
	sshclient  *ssh.Client
	config     Config

	connCtx    context.Context
	connCancel context.CancelFunc

	agentSocketConn net.Conn
}

// NewConnection dials the host described by cfg, optionally through a
// bastion, and opens an SFTP subsystem on the same client.
func NewConnection(cfg Config) (Connection, error) {
	var err error
	cfg, err = validateConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to validate ssh connection parameters")
	}

	checkHostKey, err := hostKeyCallback(cfg.KnownHostsFile)
	if err != nil {
		return nil, err
	}

	conn := &connection{config: cfg}
	authMethods, err := conn.authMethods()
	if err != nil {
		return nil, err
	}

	targetHost, targetPort, effectiveUser := cfg.Address, cfg.Port, cfg.Username
	if cfg.Bastion != "" {
		targetHost, targetPort, effectiveUser = cfg.Bastion, cfg.BastionPort, cfg.BastionUser
	}

	endpoint := net.JoinHostPort(targetHost, strconv.Itoa(targetPort))
	client, err := ssh.Dial("tcp", endpoint, &ssh.ClientConfig{
		User:            effectiveUser,
		Timeout:         cfg.Timeout,
		Auth:            authMethods,
		HostKeyCallback: checkHostKey,
	})
	if err != nil {
		conn.cleanupAgentSocket()
		return nil, errors.Wrapf(err, "could not establish connection to %s", endpoint)
	}

	if cfg.Bastion != "" {
		endpointBehindBastion := net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port))
		connToTarget, dialErr := client.Dial("tcp", endpointBehindBastion)
		if dialErr != nil {
			_ = client.Close()
			conn.cleanupAgentSocket()
			return nil, errors.Wrapf(dialErr, "could not establish connection to target %s via bastion", endpointBehindBastion)
		}

		ncc, chans, reqs, clientConnErr := ssh.NewClientConn(connToTarget, endpointBehindBastion, &ssh.ClientConfig{
			User:            cfg.Username,
			Timeout:         cfg.Timeout,
			Auth:            authMethods,
			HostKeyCallback: checkHostKey,
		})
		if clientConnErr != nil {
			_ = connToTarget.Close()
			_ = client.Close()
			conn.cleanupAgentSocket()
			return nil, errors.Wrapf(clientConnErr, "failed to create SSH client connection to %s via bastion", endpointBehindBastion)
		}
		client = ssh.NewClient(ncc, chans, reqs)
	}

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		_ = client.Close()
		conn.cleanupAgentSocket()
		return nil, errors.Wrap(err, "failed to create SFTP client")
	}

	conn.sshclient = client
	conn.sftpclient = sftpClient
	conn.connCtx, conn.connCancel = context.WithCancel(context.Background())
	return conn, nil
}

func (c *connection) authMethods() ([]ssh.AuthMethod, error) {
	cfg := c.config
	methods := make([]ssh.AuthMethod, 0, 3)

	if len(cfg.Password) > 0 {
		methods = append(methods, ssh.Password(cfg.Password))
	}

	if len(cfg.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey([]byte(cfg.PrivateKey))
		if err != nil {
			return nil, errors.Wrap(err, "the given SSH key could not be parsed")
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if addr := resolveAgentSocket(cfg.AgentSocket); addr != "" {
		signers, err := c.agentSigners(addr)
		switch {
		case err == nil:
			methods = append(methods, ssh.PublicKeys(signers...))
		case len(methods) > 0:
			logger.Log.WarnfNode(cfg.Address, "Skipping SSH agent: %v", err)
		default:
			return nil, err
		}
	} else if cfg.AgentSocket != "" {
		logger.Log.DebugfNode(cfg.Address, "SSH agent socket %s is not set, skipping agent authentication", cfg.AgentSocket)
	}

	if len(methods) == 0 {
		return nil, errors.New("no usable SSH authentication method")
	}
	return methods, nil
}

// resolveAgentSocket expands an "env:NAME" reference to the value of NAME.
// It returns "" when the variable is unset.
func resolveAgentSocket(socket string) string {
	if !strings.HasPrefix(socket, socketEnvPrefix) {
		return socket
	}
	return os.Getenv(strings.TrimPrefix(socket, socketEnvPrefix))
}

func (c *connection) agentSigners(addr string) ([]ssh.Signer, error) {
	sock, err := net.Dial("unix", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open SSH agent socket %q", addr)
	}
	signers, err := agent.NewClient(sock).Signers()
	if err != nil {
		_ = sock.Close()
		return nil, errors.Wrap(err, "error when creating signer for SSH agent")
	}
	c.agentSocketConn = sock
	return signers, nil
}

// hostKeyCallback verifies host keys against knownHostsFile, or accepts any
// key when the path is empty.
func hostKeyCallback(knownHostsFile string) (ssh.HostKeyCallback, error) {
	if knownHostsFile == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(knownHostsFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load known hosts file %q", knownHostsFile)
	}
	return cb, nil
}

func (c *connection) cleanupAgentSocket() {
	if c.agentSocketConn != nil {
		_ = c.agentSocketConn.Close()
		c.agentSocketConn = nil
	}
}

func validateConfig(cfg Config) (Config, error) {
	if len(cfg.Username) == 0 {
		return cfg, errors.New("no username specified for SSH connection")
	}
	if len(cfg.Address) == 0 {
		return cfg, errors.New("no address specified for SSH connection")
	}
	if len(cfg.Password) == 0 && len(cfg.PrivateKey) == 0 && len(cfg.KeyFile) == 0 && len(cfg.AgentSocket) == 0 {
		return cfg, errors.New("must specify at least one of password, private key, keyfile or agent socket")
	}

	if len(cfg.PrivateKey) == 0 && len(cfg.KeyFile) > 0 {
		content, err := os.ReadFile(cfg.KeyFile)
		switch {
		case err == nil:
			cfg.PrivateKey = string(content)
		case len(cfg.Password) > 0 || resolveAgentSocket(cfg.AgentSocket) != "":
			logger.Log.DebugfNode(cfg.Address, "Ignoring unreadable keyfile %q: %v", cfg.KeyFile, err)
			cfg.KeyFile = ""
		default:
			return cfg, errors.Wrapf(err, "failed to read keyfile %q", cfg.KeyFile)
		}
	}

	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.Bastion != "" {
		if cfg.BastionPort <= 0 {
			cfg.BastionPort = 22
		}
		if cfg.BastionUser == "" {
			cfg.BastionUser = cfg.Username
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg, nil
}

func (c *connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sshclient == nil && c.sftpclient == nil && c.agentSocketConn == nil {
		return nil
	}
	if c.connCancel != nil {
		c.connCancel()
	}

	var errs []error
	if c.sftpclient != nil {
		if err := c.sftpclient.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "sftp close error"))
		}
		c.sftpclient = nil
	}
	if c.sshclient != nil {
		if err := c.sshclient.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "ssh close error"))
		}
		c.sshclient = nil
	}
	if c.agentSocketConn != nil {
		if err := c.agentSocketConn.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "agent socket close error"))
		}
		c.agentSocketConn = nil
	}
	return util.CombineErrors(errs...)
}

// newSession opens a session, giving up when ctx or the connection is
// cancelled first. A PTY is requested when withPty is set so that sudo
// prompts can be answered.
func (c *connection) newSession(ctx context.Context, withPty bool) (*ssh.Session, error) {
	c.mu.Lock()
	client := c.sshclient
	c.mu.Unlock()
	if client == nil {
		return nil, errors.New("ssh connection is closed or not initialized")
	}

	type result struct {
		sess *ssh.Session
		err  error
	}
	done := make(chan result, 1)
	go func() {
		s, err := client.NewSession()
		done <- result{sess: s, err: err}
	}()

	var sess *ssh.Session
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "failed to create ssh session (context cancelled)")
	case <-c.connCtx.Done():
		return nil, errors.New("failed to create ssh session (connection closed)")
	case r := <-done:
		if r.err != nil {
			return nil, errors.Wrap(r.err, "failed to create ssh session")
		}
		sess = r.sess
	}

	if withPty {
		modes := ssh.TerminalModes{
			ssh.ECHO:          0,
			ssh.TTY_OP_ISPEED: 14400,
			ssh.TTY_OP_OSPEED: 14400,
		}
		if err := sess.RequestPty("xterm", 100, 50, modes); err != nil {
			_ = sess.Close()
			return nil, errors.Wrap(err, "failed to request PTY")
		}
	}
	return sess, nil
}

func (c *connection) Exec(ctx context.Context, cmd string) ([]byte, []byte, int, error) {
	var stdout, stderr bytes.Buffer
	exitCode, err := c.run(ctx, cmd, nil, &stdout, &stderr)
	return stdout.Bytes(), stderr.Bytes(), exitCode, err
}

func (c *connection) PExec(ctx context.Context, cmd string, stdin io.Reader, stdout io.Writer, stderr io.Writer) (int, error) {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return c.run(ctx, cmd, stdin, stdout, stderr)
}

func (c *connection) run(ctx context.Context, cmd string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	cmd = strings.TrimSpace(cmd)
	answerPrompts := stdin == nil && c.config.Password != "" && strings.HasPrefix(cmd, "sudo ")

	sess, err := c.newSession(ctx, answerPrompts)
	if err != nil {
		return -1, err
	}
	defer sess.Close()

	sess.Stderr = stderr
	if answerPrompts {
		stdinPipe, pipeErr := sess.StdinPipe()
		if pipeErr != nil {
			return -1, errors.Wrap(pipeErr, "failed to get stdin pipe")
		}
		defer stdinPipe.Close()
		sess.Stdout = &promptResponder{
			out:      stdout,
			stdin:    stdinPipe,
			password: c.config.Password,
			prompt:   fmt.Sprintf("[sudo] password for %s:", c.config.Username),
		}
	} else {
		sess.Stdin = stdin
		sess.Stdout = stdout
	}

	if err := sess.Start(cmd); err != nil {
		return -1, errors.Wrapf(err, "failed to start command: %s", cmd)
	}

	waitDone := make(chan error, 1)
	go func() {
		waitDone <- sess.Wait()
	}()

	select {
	case <-ctx.Done():
		_ = sess.Signal(ssh.SIGINT)
		select {
		case <-time.After(250 * time.Millisecond):
		case <-waitDone:
		}
		return -1, errors.Wrap(ctx.Err(), "command execution cancelled")
	case err := <-waitDone:
		if err == nil {
			return 0, nil
		}
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitStatus(), nil
		}
		return -1, errors.Wrapf(err, "command %q did not complete", cmd)
	}
}

// promptResponder copies remote output to out and answers the first sudo or
// password prompt it sees on stdin.
type promptResponder struct {
	out      io.Writer
	stdin    io.Writer
	password string
	prompt   string
	line     []byte
	handled  bool
}

func (p *promptResponder) Write(b []byte) (int, error) {
	if !p.handled {
		for _, ch := range b {
			if ch == '\n' {
				p.line = p.line[:0]
				continue
			}
			p.line = append(p.line, ch)
			s := string(p.line)
			if (strings.HasPrefix(s, p.prompt) || strings.HasPrefix(s, "Password:")) && strings.HasSuffix(s, ": ") {
				logger.Log.Debugf("Password prompt detected, answering")
				if _, err := p.stdin.Write([]byte(p.password + "\n")); err != nil {
					logger.Log.Warnf("Failed to answer password prompt: %v", err)
				}
				p.handled = true
				p.line = nil
				break
			}
		}
	}
	return p.out.Write(b)
}

func (c *connection) Fetch(ctx context.Context, remotePath string) (io.ReadCloser, error) {
	c.mu.Lock()
	sftpClient := c.sftpclient
	c.mu.Unlock()
	if sftpClient == nil {
		return nil, errors.New("sftp client is not initialized or connection is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := sftpClient.Open(remotePath)
	if err != nil {
		return nil, errors.Wrapf(err, "sftp: failed to open remote file %s", remotePath)
	}
	return file, nil
}

// SudoPrefix wraps cmd so that it runs through bash as root, preserving the
// caller's environment.
func SudoPrefix(cmd string) string {
	return fmt.Sprintf("sudo -E /bin/bash -c %s", EscapeShellArg(cmd))
}

// EscapeShellArg single-quotes arg for a POSIX shell.
func EscapeShellArg(arg string) string {
	return "'" + strings.ReplaceAll(arg, "'", "'\\''") + "'"
}
