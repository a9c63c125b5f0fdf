package common

import (
	"github.com/pkg/errors"
)

const (
	NOT_ENTERED = 1
	ENTERED     = 2
)

var ErrReentrancyDetected = errors.New("reentrant call detected")

// ReentrancyGuard keeps a guarded operation from being invoked again before
// the first invocation unwinds. The flag is scoped to one external call, it
// is never persisted.
type ReentrancyGuard struct {
	status uint
}

func NewReentrancyGuard() *ReentrancyGuard {
	return &ReentrancyGuard{status: NOT_ENTERED}
}

func (rg *ReentrancyGuard) Enter() error {
	if rg.status == ENTERED {
		return ErrReentrancyDetected
	}

	rg.status = ENTERED
	return nil
}

func (rg *ReentrancyGuard) Exit() {
	rg.status = NOT_ENTERED
}

func (rg *ReentrancyGuard) IsEntered() bool {
	return rg.status == ENTERED
}
