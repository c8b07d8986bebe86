package state

import "sync"

// Dispatcher delivers state transitions on the context presentation code
// observes them on. Dispatch may block; Operation never calls it while
// holding its own lock.
type Dispatcher interface {
	Dispatch(fn func())
}

type inline struct{}

func (inline) Dispatch(fn func()) { fn() }

// Inline runs every callback synchronously on the publishing goroutine.
var Inline Dispatcher = inline{}

// MainQueue runs callbacks one at a time, in submission order, on a single
// goroutine.
type MainQueue struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// NewMainQueue starts the queue goroutine. buffer bounds pending callbacks.
func NewMainQueue(buffer int) *MainQueue {
	if buffer <= 0 {
		buffer = 64
	}
	q := &MainQueue{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
	q.wg.Add(1)
	go q.loop()
	return q
}

func (q *MainQueue) loop() {
	defer q.wg.Done()
	for {
		select {
		case fn := <-q.tasks:
			fn()
		case <-q.done:
			// Drain what was queued before Close.
			for {
				select {
				case fn := <-q.tasks:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Dispatch enqueues fn, blocking while the buffer is full. Callbacks
// submitted after Close are dropped.
func (q *MainQueue) Dispatch(fn func()) {
	select {
	case <-q.done:
		return
	default:
	}
	select {
	case q.tasks <- fn:
	case <-q.done:
	}
}

// Close stops the queue after running callbacks already queued.
func (q *MainQueue) Close() {
	q.once.Do(func() { close(q.done) })
	q.wg.Wait()
}
