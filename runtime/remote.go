package runtime

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

// remoteKillAckTimeout bounds how long Remote waits for the SSH session to
// report closed after sending SIGKILL to the remote process group. The spec
// leaves this acknowledgment timeout unspecified; an unresponsive remote
// adapter must not hang the caller forever, so past this we tear down the
// SSH session itself rather than retry.
const remoteKillAckTimeout = 5 * time.Second

// Remote is the SSH-tunneled Runtime variant. All path resolution is
// POSIX-only and never consults the host OS running this process.
type Remote struct {
	client *ssh.Client
	log    *logrus.Entry
}

// NewRemote wraps an already-dialed SSH client. Dialing (host keys, auth)
// is the tool host's concern, not this core's.
func NewRemote(client *ssh.Client, log *logrus.Entry) *Remote {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Remote{client: client, log: log}
}

func (r *Remote) Exec(ctx context.Context, script string, opts ExecOptions) (*ExecStream, error) {
	session, err := r.client.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "open ssh session")
	}

	for k, v := range opts.Env {
		// Most sshd configs reject arbitrary SetEnv requests (AcceptEnv),
		// so env is folded into the remote command line instead of relying
		// on session.Setenv.
		script = fmt.Sprintf("export %s=%s; %s", k, shellQuote(v), script)
	}

	remoteCmd := fmt.Sprintf("cd %s && exec bash -c %s", shellQuote(opts.Cwd), shellQuote(script))
	if opts.Niceness != nil {
		remoteCmd = fmt.Sprintf("cd %s && exec nice -n %d bash -c %s", shellQuote(opts.Cwd), *opts.Niceness, shellQuote(script))
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return nil, errors.Wrap(err, "stdin pipe")
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, errors.Wrap(err, "stdout pipe")
	}
	stderr, err := session.StderrPipe()
	if err != nil {
		session.Close()
		return nil, errors.Wrap(err, "stderr pipe")
	}

	// Wrap the SSH-native stdout/stderr pipes as ReadClosers; session.Wait
	// owns teardown, so Close here is a no-op left to the session.
	stdoutRC := io.NopCloser(stdout)
	stderrRC := io.NopCloser(stderr)

	if err := session.Start(remoteCmd); err != nil {
		session.Close()
		return nil, errors.Wrap(err, "start remote command")
	}
	r.log.WithField("cwd", opts.Cwd).Debug("runtime: started remote session")

	resultCh := make(chan error, 1)
	go func() { resultCh <- session.Wait() }()

	var once sync.Once
	var exitCode int
	var waitErr error
	done := make(chan struct{})

	go func() {
		defer once.Do(func() { close(done) })

		var timerCh <-chan time.Time
		if opts.Timeout > 0 {
			t := time.NewTimer(opts.Timeout)
			defer t.Stop()
			timerCh = t.C
		}

		select {
		case err := <-resultCh:
			exitCode, waitErr = classifyRemoteExit(err)
		case <-timerCh:
			r.killRemoteGroup(session)
			exitCode, waitErr = awaitAck(resultCh, ExitCodeTimeout)
		case <-opts.Abort:
			r.killRemoteGroup(session)
			exitCode, waitErr = awaitAck(resultCh, ExitCodeAborted)
		}
		session.Close()
	}()

	wait := func(ctx context.Context) (int, error) {
		select {
		case <-done:
			return exitCode, waitErr
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	return &ExecStream{Stdin: stdin, Stdout: stdoutRC, Stderr: stderrRC, Wait: wait}, nil
}

// killRemoteGroup sends SIGKILL to the remote shell's process group. Most
// sshd implementations do not honor session.Signal for arbitrary signals,
// so this shells out a second, short-lived session the way
// jesseduffield-lazydocker's SSHHandler composes ssh sessions for side
// effects rather than relying on the protocol's signal message.
func (r *Remote) killRemoteGroup(session *ssh.Session) {
	killSession, err := r.client.NewSession()
	if err != nil {
		r.log.WithError(err).Warn("runtime: could not open kill session")
		return
	}
	defer killSession.Close()
	// $$ inside the original bash -c is that shell's own pid, which is also
	// the process group leader because it was exec'd as the session leader.
	_ = killSession.Run(`pkill -9 -g "$(ps -o pgid= -p $(pgrep -n bash) 2>/dev/null | tr -d ' ')" 2>/dev/null || true`)
}

func awaitAck(resultCh <-chan error, sentinel int) (int, error) {
	select {
	case <-resultCh:
	case <-time.After(remoteKillAckTimeout):
		// Acknowledgment timed out; the caller already tore down the
		// session in Exec's goroutine right after this returns.
	}
	return sentinel, nil
}

func classifyRemoteExit(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*ssh.ExitError); ok {
		return exitErr.ExitStatus(), nil
	}
	return -1, err
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func (r *Remote) Stat(ctx context.Context, path string) (FileStat, error) {
	session, err := r.client.NewSession()
	if err != nil {
		return FileStat{}, errors.Wrap(err, "open ssh session")
	}
	defer session.Close()

	out, err := session.Output(fmt.Sprintf(
		`if [ -d %s ]; then echo DIR 0 0; else stat -c '%%s %%Y' %s 2>/dev/null && echo; fi`,
		shellQuote(path), shellQuote(path)))
	if err != nil {
		return FileStat{}, fmt.Errorf("stat %s: %w", path, err)
	}

	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return FileStat{}, fmt.Errorf("stat %s: not found", path)
	}
	if fields[0] == "DIR" {
		return FileStat{IsDirectory: true}, nil
	}
	if len(fields) < 2 {
		return FileStat{}, fmt.Errorf("stat %s: unexpected output %q", path, out)
	}
	size, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return FileStat{}, fmt.Errorf("stat %s: parse size: %w", path, err)
	}
	epoch, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return FileStat{}, fmt.Errorf("stat %s: parse mtime: %w", path, err)
	}
	return FileStat{Size: size, ModTime: time.Unix(epoch, 0)}, nil
}

func (r *Remote) ReadFile(ctx context.Context, path string) (io.ReadCloser, error) {
	session, err := r.client.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "open ssh session")
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, errors.Wrap(err, "stdout pipe")
	}
	if err := session.Start(fmt.Sprintf("cat %s", shellQuote(path))); err != nil {
		session.Close()
		return nil, errors.Wrap(err, "start cat")
	}
	return &sessionReadCloser{r: bufio.NewReader(stdout), session: session}, nil
}

type sessionReadCloser struct {
	r       *bufio.Reader
	session *ssh.Session
}

func (s *sessionReadCloser) Read(p []byte) (int, error) { return s.r.Read(p) }
func (s *sessionReadCloser) Close() error {
	_ = s.session.Wait()
	return s.session.Close()
}

// WriteFile streams into a remote temp file and renames over the target
// once the stream closes cleanly, giving the same atomic-from-the-caller's-
// perspective guarantee as Local.WriteFile.
func (r *Remote) WriteFile(ctx context.Context, path string) (io.WriteCloser, error) {
	session, err := r.client.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "open ssh session")
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return nil, errors.Wrap(err, "stdin pipe")
	}
	script := fmt.Sprintf(
		`sh -c 'tmp="$1.toolcore-tmp.$$"; cat > "$tmp" && mv "$tmp" "$1"' sh %s`,
		shellQuote(path))
	if err := session.Start(script); err != nil {
		session.Close()
		return nil, errors.Wrap(err, "start remote write")
	}
	return &sessionWriteCloser{stdin: stdin, session: session}, nil
}

type sessionWriteCloser struct {
	stdin   io.WriteCloser
	session *ssh.Session
}

func (s *sessionWriteCloser) Write(p []byte) (int, error) { return s.stdin.Write(p) }
func (s *sessionWriteCloser) Close() error {
	if err := s.stdin.Close(); err != nil {
		s.session.Close()
		return err
	}
	if err := s.session.Wait(); err != nil {
		return fmt.Errorf("remote write did not complete cleanly: %w", err)
	}
	return s.session.Close()
}

func (r *Remote) NormalizePath(target, base string) string {
	return NormalizePOSIX(target, base)
}
