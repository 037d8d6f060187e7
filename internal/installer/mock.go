package installer

import (
	"context"
	"sync"
	"time"

	"github.com/autopeer-io/ft/internal/core"
)

// MockInstaller pretends to flash a package, advancing its progress in
// steps. It is used in fake mode.
type MockInstaller struct {
	pkg   *core.Package
	steps int
	delay time.Duration

	mu   sync.Mutex
	done int
}

var _ core.Installer = (*MockInstaller)(nil)

func NewMockInstaller(pkg *core.Package, steps int) *MockInstaller {
	if steps <= 0 {
		steps = 10
	}
	return &MockInstaller{pkg: pkg, steps: steps, delay: 100 * time.Millisecond}
}

func (i *MockInstaller) Install(ctx context.Context) error {
	ticker := time.NewTicker(i.delay)
	defer ticker.Stop()

	for range i.steps {
		select {
		case <-ctx.Done():
			return &core.InstallError{Package: i.pkg, Detail: "mock install interrupted", Err: ctx.Err()}
		case <-ticker.C:
		}
		i.mu.Lock()
		i.done++
		i.mu.Unlock()
	}
	return nil
}

func (i *MockInstaller) Progress() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return float64(i.done) / float64(i.steps)
}

func (i *MockInstaller) Status() string {
	if i.Progress() >= 1 {
		return "success"
	}
	return "installing"
}
