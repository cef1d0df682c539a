package queue

import "sync"

// WorkQueue is a FIFO of pending input filenames shared by all mappers.
// Items are pushed before the workers start and popped concurrently.
type WorkQueue struct {
	mu    sync.Mutex
	items []string
}

// New returns a queue pre-populated with files, in order.
func New(files ...string) *WorkQueue {
	q := &WorkQueue{items: make([]string, 0, len(files))}
	for _, f := range files {
		q.Push(f)
	}
	return q
}

func (q *WorkQueue) Push(filename string) {
	q.mu.Lock()
	q.items = append(q.items, filename)
	q.mu.Unlock()
}

// TryPop removes and returns the oldest filename. It returns false once the
// queue is empty; nothing is pushed after workers start, so the first false
// is final.
func (q *WorkQueue) TryPop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return "", false
	}
	filename := q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	return filename, true
}

func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
