package pipeline

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// arena owns everything a session acquires so one Close releases it all,
// including after a partially failed setup.
type arena struct {
	names    []string
	releases []func() error
}

func (a *arena) add(name string, release func() error) {
	a.names = append(a.names, name)
	a.releases = append(a.releases, release)
}

// Close releases in reverse acquisition order and empties the arena.
func (a *arena) Close() error {
	var err error
	for i := len(a.releases) - 1; i >= 0; i-- {
		if rerr := a.releases[i](); rerr != nil {
			err = multierr.Append(err, errors.Wrapf(rerr, "release %s", a.names[i]))
		}
	}
	a.names, a.releases = nil, nil
	return err
}

func (a *arena) len() int {
	return len(a.releases)
}
