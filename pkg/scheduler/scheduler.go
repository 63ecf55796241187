// Package scheduler runs periodic housekeeping tasks on cron specs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task is a named periodic job.
type Task struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Scheduler wraps a cron runner with context propagation and zap logging.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu     sync.Mutex
	tasks  map[string]Task
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler evaluating specs in loc.
func New(logger *zap.Logger, loc *time.Location) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	adapter := cronLogger{logger: logger.Named("cron")}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		logger: logger,
		tasks:  make(map[string]Task),
		ctx:    context.Background(),
	}
}

// Register adds task. An empty spec disables the task.
func (s *Scheduler) Register(task Task) error {
	if task.Name == "" || task.Run == nil {
		return fmt.Errorf("scheduler task requires name and run func")
	}
	if task.Spec == "" {
		s.logger.Info("scheduler task disabled", zap.String("task", task.Name))
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.Name]; exists {
		return fmt.Errorf("scheduler task %s already registered", task.Name)
	}
	if _, err := s.cron.AddFunc(task.Spec, func() { s.execute(task) }); err != nil {
		return fmt.Errorf("schedule %s (%s): %w", task.Name, task.Spec, err)
	}
	s.tasks[task.Name] = task
	return nil
}

// Start begins evaluating schedules. Tasks receive a context derived from ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("tasks", len(s.tasks)))
}

// Stop halts scheduling and waits for running tasks to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Trigger runs a registered task immediately and returns its error.
func (s *Scheduler) Trigger(name string) error {
	s.mu.Lock()
	task, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("scheduler task %s not registered", name)
	}
	return s.execute(task)
}

func (s *Scheduler) execute(task Task) error {
	s.mu.Lock()
	parent := s.ctx
	s.mu.Unlock()

	ctx := parent
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, task.Timeout)
		defer cancel()
	}
	start := time.Now()
	err := task.Run(ctx)
	fields := []zap.Field{zap.String("task", task.Name), zap.Duration("duration", time.Since(start))}
	if err != nil {
		s.logger.Error("scheduler task failed", append(fields, zap.Error(err))...)
		return err
	}
	s.logger.Debug("scheduler task finished", fields...)
	return nil
}

type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
