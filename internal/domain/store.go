package domain

// Store is the authenticated data-access handle. It is created once per backend
// and handed to a session on login.
type Store interface {
	Users() UserRepository
	Events() EventRepository
	Messages() MessageRepository
}

// Session is the per-client state shared by every page: who is logged in and
// which store handle they use.
type Session interface {
	ID() string
	CurrentUser() (string, bool)
	// Require returns the username and store, or ErrUnauthenticated.
	Require() (string, Store, error)
}
