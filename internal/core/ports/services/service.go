package services

// ServiceContainer carries the wired service facades to the HTTP boundary.
type ServiceContainer struct {
	Account AccountSvcFacade
	Journal JournalSvcFacade
	Ledger  LedgerQuerySvc
}
