// application/scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ethfi-report-bot/pkg/logger"

	"github.com/go-co-op/gocron/v2"
)

// Schedule определяет расписание задачи
type Schedule struct {
	interval time.Duration
}

// Every создает расписание "каждые N времени"
func Every(d time.Duration) Schedule {
	return Schedule{interval: d}
}

// Job описывает одну планируемую задачу
type Job struct {
	Name        string
	Description string
	Schedule    Schedule
	// RunOnStart - первый запуск сразу после Start, а не через интервал
	RunOnStart bool
	Handler    func(ctx context.Context) error

	mu      sync.Mutex
	cronJob gocron.Job
	lastRun time.Time
	lastErr error
	runs    int
}

// Status возвращает текущее состояние задачи
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()

	st := JobStatus{
		Name:        j.Name,
		Description: j.Description,
		Interval:    j.Schedule.interval,
		LastRun:     j.lastRun,
		LastErr:     j.lastErr,
		Runs:        j.runs,
	}
	if j.cronJob != nil {
		if next, err := j.cronJob.NextRun(); err == nil {
			st.NextRun = next
		}
	}
	return st
}

// JobStatus снапшот состояния задачи
type JobStatus struct {
	Name        string
	Description string
	Interval    time.Duration
	NextRun     time.Time
	LastRun     time.Time
	LastErr     error
	Runs        int
}

// Scheduler управляет периодическими задачами приложения поверх gocron
type Scheduler struct {
	cron gocron.Scheduler
	jobs []*Job
	mu   sync.RWMutex

	// ctx живет до Stop; у запуска нет общего дедлайна,
	// сроки ограничивают сами обработчики (HTTP-таймауты)
	ctx    context.Context
	cancel context.CancelFunc
}

// New создает новый планировщик
func New() (*Scheduler, error) {
	cron, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{cron: cron, ctx: ctx, cancel: cancel}, nil
}

// Register добавляет задачу в планировщик.
// Запуски одной задачи не пересекаются: если предыдущий еще идет, следующий переносится.
func (s *Scheduler) Register(job *Job) error {
	if job.Handler == nil {
		return fmt.Errorf("job %q has no handler", job.Name)
	}
	if job.Schedule.interval <= 0 {
		return fmt.Errorf("job %q: interval must be positive", job.Name)
	}

	opts := []gocron.JobOption{
		gocron.WithName(job.Name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if job.RunOnStart {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	cronJob, err := s.cron.NewJob(
		gocron.DurationJob(job.Schedule.interval),
		gocron.NewTask(s.run, job),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("register job %q: %w", job.Name, err)
	}

	job.mu.Lock()
	job.cronJob = cronJob
	job.mu.Unlock()

	s.mu.Lock()
	s.jobs = append(s.jobs, job)
	s.mu.Unlock()

	logger.Info("📋 [Scheduler] Зарегистрирована задача %q — каждые %v (сразу после старта: %v)",
		job.Name, job.Schedule.interval, job.RunOnStart)
	return nil
}

// Start запускает планировщик
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("✅ [Scheduler] Запущен (%d задач)", len(s.Jobs()))
}

// Stop отменяет текущие запуски и ждёт их завершения
func (s *Scheduler) Stop() error {
	s.cancel()
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	logger.Info("🛑 [Scheduler] Остановлен")
	return nil
}

// Jobs возвращает статус всех задач
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.RLock()
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.RUnlock()

	statuses := make([]JobStatus, len(jobs))
	for i, j := range jobs {
		statuses[i] = j.Status()
	}
	return statuses
}

// run выполняет одну задачу и обновляет её состояние
func (s *Scheduler) run(job *Job) {
	logger.Info("▶️  [Scheduler] Запуск задачи %q", job.Name)
	start := time.Now()

	err := job.Handler(s.ctx)
	elapsed := time.Since(start)

	job.mu.Lock()
	job.lastRun = start
	job.lastErr = err
	job.runs++
	job.mu.Unlock()

	if err != nil {
		logger.Error("❌ [Scheduler] Задача %q завершилась с ошибкой за %v: %v", job.Name, elapsed, err)
	} else {
		logger.Info("✅ [Scheduler] Задача %q выполнена за %v", job.Name, elapsed)
	}
}
