package orchestrator

import (
	"github.com/ShayCichocki/embassy/internal/logging"
)

// Option configures an Orchestrator. Use With* functions to create Options.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *Orchestrator) { o.log = logging.OrNop(l).Named("orchestrator") }
}

// WithEmitter publishes progress events to e.
func WithEmitter(e *EventEmitter) Option {
	return func(o *Orchestrator) { o.emitter = e }
}

// WithWorker registers w under name, replacing any built-in worker.
func WithWorker(name WorkerName, w Worker) Option {
	return func(o *Orchestrator) { o.workers[name] = w }
}
