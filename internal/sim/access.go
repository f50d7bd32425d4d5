package sim

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Access implements capability checks over the environment's role sets.
type Access struct {
	env *Env
}

func (a *Access) IsCurator(_ context.Context, addr common.Address) (bool, error) {
	return a.env.curators[addr], nil
}

func (a *Access) IsGuardian(_ context.Context, addr common.Address) (bool, error) {
	return a.env.guardians[addr], nil
}

func (a *Access) IsModule(_ context.Context, addr common.Address) (bool, error) {
	return a.env.modules[addr], nil
}

// CountingSink records distribute signals without moving funds, leaving the
// surplus observable on the adapter's balance.
type CountingSink struct {
	env *Env
}

func (s *CountingSink) Distribute(_ context.Context) error {
	s.env.st.sinkCalls++
	return nil
}
