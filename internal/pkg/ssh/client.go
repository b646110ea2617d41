package ssh

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type Config struct {
	Host           string
	Port           int
	Username       string
	AuthType       string
	Password       string
	PrivateKey     string
	Passphrase     string
	ConnectTimeout time.Duration
}

// Client holds one SSH connection plus the SFTP subsystem opened over it.
// It is not safe for concurrent use; the deployment is strictly sequential.
type Client struct {
	config Config
	conn   *ssh.Client
	sftp   *sftp.Client
}

type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func NewClient(config Config) *Client {
	if config.Port == 0 {
		config.Port = 22
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 30 * time.Second
	}
	if config.AuthType == "" {
		config.AuthType = "password"
	}
	return &Client{config: config}
}

// Connect dials the host and opens the SFTP subsystem used for uploads.
// The host key is not verified; targets are addressed by IP and provisioned
// out of band.
func (c *Client) Connect() error {
	var auth []ssh.AuthMethod

	switch c.config.AuthType {
	case "password":
		auth = append(auth, ssh.Password(c.config.Password))
	case "key":
		signer, err := c.parsePrivateKey(c.config.PrivateKey, c.config.Passphrase)
		if err != nil {
			return errors.Wrap(err, "ssh: parse private key")
		}
		auth = append(auth, ssh.PublicKeys(signer))
	default:
		return errors.Errorf("ssh: unknown auth type %q", c.config.AuthType)
	}

	clientConfig := &ssh.ClientConfig{
		User:            c.config.Username,
		Auth:            auth,
		Timeout:         c.config.ConnectTimeout,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
	conn, err := ssh.Dial("tcp", addr, clientConfig)
	if err != nil {
		return errors.Wrapf(err, "ssh: dial %s", addr)
	}

	sftpClient, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "ssh: open sftp subsystem")
	}

	c.conn = conn
	c.sftp = sftpClient
	return nil
}

func (c *Client) parsePrivateKey(privateKey, passphrase string) (ssh.Signer, error) {
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase([]byte(privateKey), []byte(passphrase))
	}
	return ssh.ParsePrivateKey([]byte(privateKey))
}

// Run executes cmd in its own session and reports the exit status. A
// non-zero exit is an error carrying the remote stderr.
func (c *Client) Run(cmd string) (*CommandResult, error) {
	if c.conn == nil {
		return nil, errors.New("ssh: not connected")
	}

	session, err := c.conn.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "ssh: open session")
	}
	defer session.Close()

	var stdoutBuf, stderrBuf strings.Builder
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	err = session.Run(cmd)

	result := &CommandResult{
		Stdout: strings.TrimSpace(stdoutBuf.String()),
		Stderr: strings.TrimSpace(stderrBuf.String()),
	}

	if err != nil {
		if exitError, ok := err.(*ssh.ExitError); ok {
			result.ExitCode = exitError.ExitStatus()
		} else {
			// Session or transport failure, not a remote exit.
			result.ExitCode = -1
		}
		return result, errors.Wrapf(err, "ssh: command %q failed (stderr: %q)", cmd, result.Stderr)
	}

	result.ExitCode = 0
	return result, nil
}

// DirExists reports whether path is a directory on the remote host.
func (c *Client) DirExists(path string) (bool, error) {
	result, err := c.Run("test -d " + quote(path))
	if err == nil {
		return true, nil
	}
	if result != nil && result.ExitCode == 1 {
		return false, nil
	}
	return false, err
}

// Rename moves a remote file or directory. The destination must not exist:
// mv into an existing directory nests instead of replacing.
func (c *Client) Rename(oldPath, newPath string) error {
	_, err := c.Run(fmt.Sprintf("mv %s %s", quote(oldPath), quote(newPath)))
	return err
}

// RemoveAll deletes a remote path recursively; a missing path is fine.
func (c *Client) RemoveAll(path string) error {
	_, err := c.Run("rm -rf " + quote(path))
	return err
}

// MkdirAll creates the remote directory with any missing parents.
func (c *Client) MkdirAll(path string) error {
	if c.sftp == nil {
		return errors.New("ssh: not connected")
	}
	return errors.Wrapf(c.sftp.MkdirAll(path), "ssh: mkdir %s", path)
}

// Upload streams a local file to remotePath over SFTP.
func (c *Client) Upload(localPath, remotePath string) error {
	if c.sftp == nil {
		return errors.New("ssh: not connected")
	}

	src, err := os.Open(localPath)
	if err != nil {
		return errors.Wrapf(err, "ssh: open %s", localPath)
	}
	defer src.Close()

	dst, err := c.sftp.Create(remotePath)
	if err != nil {
		return errors.Wrapf(err, "ssh: create remote %s", remotePath)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return errors.Wrapf(err, "ssh: write remote %s", remotePath)
	}
	return errors.Wrapf(dst.Close(), "ssh: close remote %s", remotePath)
}

// RestartService restarts a systemd unit on the remote host.
func (c *Client) RestartService(name string) error {
	_, err := c.Run("sudo systemctl restart " + quote(name))
	return err
}

// Close shuts down the SFTP subsystem and the underlying connection.
func (c *Client) Close() error {
	var result *multierror.Error
	if c.sftp != nil {
		if err := c.sftp.Close(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "ssh: close sftp"))
		}
		c.sftp = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "ssh: close connection"))
		}
		c.conn = nil
	}
	return result.ErrorOrNil()
}

// quote wraps s in single quotes for the remote shell.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
