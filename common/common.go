package common

const (
	AppName = "xmadmin"
)

// Log field keys, in the order the formatter prints them.
const (
	HostName    = "Host"
	SessionName = "Session"
	CommandName = "Command"
)

const (
	// RedHatReleaseFile identifies the distribution on RHEL-family hosts.
	RedHatReleaseFile = "/etc/redhat-release"

	// CatCmdTpl prints a remote file verbatim.
	// Example: fmt.Sprintf(CatCmdTpl, "/etc/redhat-release")
	CatCmdTpl = "cat %s"
	// YumUpdateCmdTpl updates all packages, or only the ones named.
	// Example: fmt.Sprintf(YumUpdateCmdTpl, "httpd vim")
	YumUpdateCmdTpl = "yum update -y %s"
)

const (
	DefaultSSHPort = 22
	LocalHostname  = "localhost"
)

type Arch string

const (
	ArchAmd64   Arch = "amd64"
	ArchX86_64  Arch = "x86_64"
	ArchArm64   Arch = "arm64"
	ArchArm     Arch = "arm"
	ArchUnknown Arch = "unknown"
)
