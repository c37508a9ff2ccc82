package session

import "sync"

// Locker hands out one mutex per chat identifier so the read-state, handle,
// write-state sequence for a chat never interleaves with another event for
// the same chat. Events for different chats proceed concurrently.
type Locker struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewLocker constructs an empty Locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[int64]*sync.Mutex)}
}

// Lock acquires the mutex for the chat, creating it on first use.
// Mutexes are kept for the process lifetime; the set of active chats is
// bounded by the audience of the bot.
func (l *Locker) Lock(chatID int64) {
	l.mu.Lock()
	m, ok := l.locks[chatID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[chatID] = m
	}
	l.mu.Unlock()
	m.Lock()
}

// Unlock releases the mutex for the chat.
func (l *Locker) Unlock(chatID int64) {
	l.mu.Lock()
	m := l.locks[chatID]
	l.mu.Unlock()
	if m != nil {
		m.Unlock()
	}
}
