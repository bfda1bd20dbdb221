package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"sweep-runner/core/models"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

const defaultSSHTimeout = 30 * time.Second

// SSHExecutor runs jobs on a remote host over SSH. The command line is the
// same one ProcessExecutor builds; the remote output directory's metrics
// files are fetched back into the local work tree after the job finishes so
// that results aggregation works unchanged.
type SSHExecutor struct {
	addr        string
	config      *ssh.ClientConfig
	python      string
	trainScript string
	testScript  string
	remoteRoot  string // remote working directory the framework runs in
}

// NewSSHExecutor creates an executor that runs jobs on host via SSH using
// key-based authentication
func NewSSHExecutor(host string, port int, user, privateKeyPath, remoteRoot, python, trainScript, testScript string) (*SSHExecutor, error) {
	key, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         defaultSSHTimeout,
	}

	return &SSHExecutor{
		addr:        fmt.Sprintf("%s:%d", host, port),
		config:      config,
		python:      python,
		trainScript: trainScript,
		testScript:  testScript,
		remoteRoot:  remoteRoot,
	}, nil
}

// Execute runs the job on the remote host and downloads its metrics output
func (e *SSHExecutor) Execute(ctx context.Context, spec *models.JobSpec) *models.JobResult {
	result := &models.JobResult{
		Spec:      *spec,
		StartedAt: time.Now(),
	}

	client, err := ssh.Dial("tcp", e.addr, e.config)
	if err != nil {
		result.ExitCode = -1
		result.Error = fmt.Sprintf("ssh dial %s: %v", e.addr, err)
		result.FinishedAt = time.Now()
		return result
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		result.ExitCode = -1
		result.Error = fmt.Sprintf("ssh session: %v", err)
		result.FinishedAt = time.Now()
		return result
	}
	defer session.Close()

	command := e.remoteCommand(spec)
	err = session.Run(command)
	result.FinishedAt = time.Now()

	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitStatus()
			result.Error = fmt.Sprintf("remote process exited with code %d", result.ExitCode)
		} else {
			result.ExitCode = -1
			result.Error = err.Error()
		}
	}

	// Fetch output back regardless of exit code; a failed job's log is
	// still the only diagnostic we have.
	if err := e.fetchOutput(client, spec); err != nil {
		log.Printf("Failed to fetch remote output for (%s, epoch %d): %v", spec.Axis, spec.Epoch, err)
	}

	return result
}

// remoteCommand builds the full remote shell command: create the output
// directory, run the framework, capture combined output to job.log
func (e *SSHExecutor) remoteCommand(spec *models.JobSpec) string {
	args := BuildCommand(e.trainScript, e.testScript, spec)

	quoted := make([]string, 0, len(args)+1)
	quoted = append(quoted, shellQuote(e.python))
	for _, arg := range args {
		quoted = append(quoted, shellQuote(arg))
	}

	outDir := shellQuote(e.remotePath(spec.OutputDir))
	return fmt.Sprintf("mkdir -p %s && cd %s && %s > %s/job.log 2>&1",
		outDir, shellQuote(e.remoteRoot), strings.Join(quoted, " "), outDir)
}

// fetchOutput copies job.log and every metrics JSON file from the remote
// output directory into the identical local path
func (e *SSHExecutor) fetchOutput(client *ssh.Client, spec *models.JobSpec) error {
	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return fmt.Errorf("sftp client: %w", err)
	}
	defer sftpClient.Close()

	remoteDir := e.remotePath(spec.OutputDir)
	if err := os.MkdirAll(spec.OutputDir, 0o755); err != nil {
		return err
	}

	walker := sftpClient.Walk(remoteDir)
	for walker.Step() {
		if walker.Err() != nil {
			continue
		}
		if walker.Stat().IsDir() {
			continue
		}
		name := walker.Path()
		if !strings.HasSuffix(name, ".json") && path.Base(name) != "job.log" {
			continue
		}

		rel, err := relativeTo(remoteDir, name)
		if err != nil {
			continue
		}
		localPath := filepath.Join(spec.OutputDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return err
		}
		if err := downloadFile(sftpClient, name, localPath); err != nil {
			return err
		}
	}

	return nil
}

// remotePath rebases a local output path under the remote working root
func (e *SSHExecutor) remotePath(p string) string {
	return path.Join(e.remoteRoot, filepath.ToSlash(p))
}

func downloadFile(client *sftp.Client, remotePath, localPath string) error {
	src, err := client.Open(remotePath)
	if err != nil {
		return fmt.Errorf("open remote %s: %w", remotePath, err)
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

func relativeTo(base, target string) (string, error) {
	base = path.Clean(base)
	target = path.Clean(target)
	if !strings.HasPrefix(target, base+"/") {
		return "", fmt.Errorf("%s is outside %s", target, base)
	}
	return strings.TrimPrefix(target, base+"/"), nil
}

// shellQuote single-quotes an argument for the remote shell
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
