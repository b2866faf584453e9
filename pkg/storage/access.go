package storage

// Denial explains why a user may not start the quiz
type Denial string

const (
	DenialNone     Denial = ""
	DenialLockdown Denial = "lockdown"
	DenialBlocked  Denial = "blocked"
)

// CanPlay decides whether name may start the quiz. Lockdown applies to
// everyone and is checked before the block list.
func (s *Store) CanPlay(name string) (bool, Denial) {
	if s.Lockdown() {
		return false, DenialLockdown
	}
	if s.IsBlocked(name) {
		return false, DenialBlocked
	}
	return true, DenialNone
}
