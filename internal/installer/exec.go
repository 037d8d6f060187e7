package installer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	utilexec "k8s.io/utils/exec"

	"github.com/autopeer-io/ft/internal/core"
	"github.com/autopeer-io/ft/pkg/log"
)

const (
	// ProgressPrefix marks a progress line on the command output, such as
	// "PROGRESS: 40" for 40 percent.
	ProgressPrefix = "PROGRESS:"

	detailLines = 20
)

// ExecInstaller runs the install_command of a package through a shell.
// The placeholders {location}, {name}, {version} and {device} are
// replaced before the command runs.
type ExecInstaller struct {
	pkg     *core.Package
	locator Locator
	exec    utilexec.Interface
	shell   string

	mu       sync.Mutex
	progress float64
	status   string
	tail     []string
}

var _ core.Installer = (*ExecInstaller)(nil)

func (i *ExecInstaller) Install(ctx context.Context) error {
	location := ""
	if i.locator != nil {
		loc, err := i.locator.Locate(ctx, i.pkg)
		if err != nil {
			i.setStatus("failed")
			return &core.InstallError{Package: i.pkg, Err: err}
		}
		location = loc
	}

	command := strings.NewReplacer(
		"{location}", location,
		"{name}", i.pkg.Name,
		"{version}", i.pkg.Version,
		"{device}", i.pkg.DeviceID,
	).Replace(i.pkg.InstallCommand)
	log.Debug("Running install command", "package", i.pkg.Identity(), "command", command)

	pr, pw := io.Pipe()
	cmd := i.exec.CommandContext(ctx, i.shell, "-c", command)
	cmd.SetStdout(pw)
	cmd.SetStderr(pw)

	scanned := make(chan struct{})
	go func() {
		defer close(scanned)
		i.scan(pr)
	}()

	err := cmd.Run()
	_ = pw.Close()
	<-scanned

	if err != nil {
		i.setStatus("failed")
		return &core.InstallError{Package: i.pkg, Detail: i.detail(), Err: err}
	}

	i.mu.Lock()
	i.progress = 1
	i.status = "success"
	i.mu.Unlock()
	return nil
}

func (i *ExecInstaller) scan(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()

		i.mu.Lock()
		if pct, ok := parseProgress(line); ok {
			i.progress = pct
		} else {
			i.tail = append(i.tail, line)
			if len(i.tail) > detailLines {
				i.tail = i.tail[len(i.tail)-detailLines:]
			}
		}
		i.mu.Unlock()
	}
	// Drain so the command never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
}

func parseProgress(line string) (float64, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), ProgressPrefix)
	if !ok {
		return 0, false
	}
	pct, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(rest), "%"), 64)
	if err != nil {
		return 0, false
	}
	return min(max(pct/100, 0), 1), true
}

func (i *ExecInstaller) detail() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return strings.Join(i.tail, "\n")
}

func (i *ExecInstaller) setStatus(s string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.status = s
}

func (i *ExecInstaller) Progress() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.progress
}

func (i *ExecInstaller) Status() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.status == "" {
		return "installing"
	}
	return i.status
}

func (i *ExecInstaller) String() string {
	return fmt.Sprintf("exec installer for %s", i.pkg)
}
