package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// JobFunc is one scheduled unit of work. The context is cancelled on Stop.
type JobFunc func(ctx context.Context)

type job struct {
	id         string
	every      time.Duration
	runAtStart bool
	fn         JobFunc
}

// Scheduler runs registered jobs on fixed intervals, one goroutine per job.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []*job
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddInterval registers a job. Registering an id twice replaces the earlier
// job. Must be called before Start.
func (s *Scheduler) AddInterval(id string, every time.Duration, runAtStart bool, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &job{id: id, every: every, runAtStart: runAtStart, fn: fn}
	for i, existing := range s.jobs {
		if existing.id == id {
			s.jobs[i] = entry
			return
		}
	}
	s.jobs = append(s.jobs, entry)
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	jobs := make([]*job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	for _, j := range jobs {
		s.wg.Add(1)
		go s.run(j)
		log.Printf("Scheduler: job %q every %s", j.id, j.every)
	}
	log.Printf("Scheduler started with %d jobs", len(jobs))
}

func (s *Scheduler) run(j *job) {
	defer s.wg.Done()

	if j.runAtStart {
		s.safeRun(j)
	}

	ticker := time.NewTicker(j.every)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.safeRun(j)
		}
	}
}

// safeRun keeps one bad tick from killing the job's goroutine.
func (s *Scheduler) safeRun(j *job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Scheduler: job %q panicked: %v", j.id, r)
		}
	}()
	j.fn(s.ctx)
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	log.Printf("Scheduler stopped")
}
