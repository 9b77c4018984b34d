package auth

import "sync"

// Notifier fans out session changes to whoever subscribed to a session key.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func()
}

func NewNotifier() *Notifier {
	return &Notifier{subs: map[string]map[int]func(){}}
}

// Subscribe registers fn for key until the returned func is called.
func (n *Notifier) Subscribe(key string, fn func()) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	if n.subs[key] == nil {
		n.subs[key] = map[int]func(){}
	}
	n.subs[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs[key], id)
			if len(n.subs[key]) == 0 {
				delete(n.subs, key)
			}
		})
	}
}

// Publish calls every subscriber of key outside the lock.
func (n *Notifier) Publish(key string) {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.subs[key]))
	for _, fn := range n.subs[key] {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Subscribers is the number of live subscriptions for key.
func (n *Notifier) Subscribers(key string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[key])
}
