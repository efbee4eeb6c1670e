package domain

// User is a lobby participant. Created on first announce of a username,
// never mutated afterwards. Ids are monotonic and never reused within a
// process lifetime.
type User struct {
	ID       int64
	Username string
}
