package services

import "sync"

// MutationGuard serializes whole mutations across the services sharing one
// store. Each mutation is a read-validate-write sequence spanning several
// repository calls; without the guard two concurrent mutations can interleave
// between the validation read and the write, for example two reparents
// forming a hierarchy cycle, or an entry committing against an account being
// disabled at the same moment. Share a single guard between the account and
// journal services wired to the same repositories.
type MutationGuard struct {
	mu sync.Mutex
}

// NewMutationGuard creates a new mutation guard.
func NewMutationGuard() *MutationGuard {
	return &MutationGuard{}
}

func (g *MutationGuard) lock()   { g.mu.Lock() }
func (g *MutationGuard) unlock() { g.mu.Unlock() }
