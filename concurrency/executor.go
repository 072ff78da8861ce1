// File: concurrency/executor.go
// Author: Derek Huang
// License: MIT
//
// Fixed-size worker pool draining one shared FIFO task queue. A single
// mutex + condition variable guard the queue; workers sleep on the condvar
// until a task is posted or the pool is stopped.

package concurrency

import (
	"runtime"
	"sync"

	"github.com/eapache/queue"
)

// Task is a unit of work executed by the pool.
type Task func()

// Executor runs posted tasks on a fixed set of workers in submission order.
// Tasks posted while the pool is stopped stay queued and run after the next
// Start.
type Executor struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   *queue.Queue
	workers int
	running bool
	wg      sync.WaitGroup
}

// NewExecutor creates and starts a pool with the given worker count. A
// non-positive count means one worker per CPU.
func NewExecutor(workers int) *Executor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	e := &Executor{tasks: queue.New(), workers: workers}
	e.cond = sync.NewCond(&e.mu)
	e.Start()
	return e
}

// Workers reports the configured worker count.
func (e *Executor) Workers() int {
	return e.workers
}

// Running reports whether the pool currently accepts and executes tasks.
func (e *Executor) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Start launches the workers. Starting a running pool is a no-op.
func (e *Executor) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()
	e.wg.Add(e.workers)
	for i := 0; i < e.workers; i++ {
		go e.work()
	}
}

// Post appends a task to the queue and wakes one worker. Tasks are picked
// up strictly in submission order.
func (e *Executor) Post(t Task) {
	e.mu.Lock()
	e.tasks.Add(t)
	e.mu.Unlock()
	e.cond.Signal()
}

// Stop marks the pool stopped and wakes every worker so each can observe
// the flag and exit. Queued tasks are left in place.
func (e *Executor) Stop() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
	e.cond.Broadcast()
}

// Close stops the pool and waits for all workers to exit.
func (e *Executor) Close() {
	e.Stop()
	e.wg.Wait()
}

func (e *Executor) work() {
	defer e.wg.Done()
	for {
		e.mu.Lock()
		for e.running && e.tasks.Length() == 0 {
			e.cond.Wait()
		}
		// stop wins over pending work
		if !e.running {
			e.mu.Unlock()
			return
		}
		t := e.tasks.Remove().(Task)
		e.mu.Unlock()
		t()
	}
}
