// Package ordering computes the installation order of selected packages.
package ordering

import (
	"errors"
	"fmt"
	"strings"

	"github.com/autopeer-io/ft/internal/core"
)

// ErrCycle is matched by every CycleError.
var ErrCycle = errors.New("dependency cycle detected")

// CycleError lists the packages that could not be ordered.
type CycleError struct {
	Packages []*core.Package
}

func (e *CycleError) Error() string {
	names := make([]string, 0, len(e.Packages))
	for _, p := range e.Packages {
		names = append(names, p.Identity())
	}
	return fmt.Sprintf("%v between packages: %s", ErrCycle, strings.Join(names, ", "))
}

func (e *CycleError) Is(target error) bool { return target == ErrCycle }

// Order returns pkgs sorted so that every package comes after the
// packages it depends on. Only dependencies on packages that are part of
// pkgs create an ordering edge; a dependency names its target by package
// name. Packages without a relation keep their input order.
func Order(pkgs []*core.Package) ([]*core.Package, error) {
	byName := make(map[string][]int, len(pkgs))
	for i, p := range pkgs {
		byName[p.Name] = append(byName[p.Name], i)
	}

	// dependents[j] lists packages that must wait for pkgs[j].
	dependents := make([][]int, len(pkgs))
	pending := make([]int, len(pkgs))
	for i, p := range pkgs {
		seen := make(map[int]bool)
		for _, dep := range p.Dependencies {
			for _, j := range byName[dep.Name] {
				if j == i || seen[j] {
					continue
				}
				seen[j] = true
				dependents[j] = append(dependents[j], i)
				pending[i]++
			}
		}
	}

	done := make([]bool, len(pkgs))
	out := make([]*core.Package, 0, len(pkgs))
	// Rescanning from the start after each pick keeps ties in input order.
	for len(out) < len(pkgs) {
		next := -1
		for i := range pkgs {
			if !done[i] && pending[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, &CycleError{Packages: remaining(pkgs, done)}
		}

		done[next] = true
		out = append(out, pkgs[next])
		for _, d := range dependents[next] {
			pending[d]--
		}
	}

	return out, nil
}

func remaining(pkgs []*core.Package, done []bool) []*core.Package {
	var left []*core.Package
	for i, p := range pkgs {
		if !done[i] {
			left = append(left, p)
		}
	}
	return left
}
