package repositories

// RepositoryProvider bundles the concrete repositories a storage backend
// offers, so wiring code can swap backends in one place.
type RepositoryProvider struct {
	AccountRepo AccountRepository
	JournalRepo JournalRepository
}
