package runtime

import "github.com/aretw0/parley/pkg/domain"

// pushMemory appends a statement to the session queue, evicting the oldest
// entries once the queue holds limit items.
func pushMemory(sess *domain.Session, statement string, limit int) {
	sess.Memory = append(sess.Memory, statement)
	if over := len(sess.Memory) - limit; over > 0 {
		sess.Memory = append(sess.Memory[:0:0], sess.Memory[over:]...)
	}
}

// popMemory removes and returns the oldest queued statement.
func popMemory(sess *domain.Session) (string, bool) {
	if len(sess.Memory) == 0 {
		return "", false
	}
	head := sess.Memory[0]
	sess.Memory = append(sess.Memory[:0:0], sess.Memory[1:]...)
	return head, true
}
