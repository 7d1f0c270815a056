package audit

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rypi-dev/photos-stats/internal/library"
)

// Recorder reçoit l'issue de chaque commande (implémenté par metrics.Metrics)
type Recorder interface {
	ObserveCommand(command, outcome string, d time.Duration)
}

const (
	OutcomeOK                  = "ok"
	OutcomeDatabaseUnavailable = "database_unavailable"
	OutcomeQueryFailure        = "query_failure"
	OutcomeInvalidColumn       = "invalid_column"
	OutcomeError               = "error"
)

// Run is one command invocation.
type Run struct {
	ID      string
	Command string
	Args    []string
	Start   time.Time
}

// Start ouvre un run avec un identifiant unique
func Start(command string, args []string) *Run {
	return &Run{
		ID:      uuid.NewString(),
		Command: command,
		Args:    args,
		Start:   time.Now(),
	}
}

// Outcome classe une erreur selon les erreurs connues de la bibliothèque
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, library.ErrDatabaseUnavailable):
		return OutcomeDatabaseUnavailable
	case errors.Is(err, library.ErrInvalidColumn):
		return OutcomeInvalidColumn
	case errors.Is(err, library.ErrQueryFailure):
		return OutcomeQueryFailure
	}
	return OutcomeError
}

// Event logs the end of a run and records it. Failed runs are logged at error level.
func Event(logger *zap.Logger, rec Recorder, run *Run, err error, extra ...zap.Field) {
	if run == nil {
		return
	}

	duration := time.Since(run.Start)
	outcome := Outcome(err)

	if rec != nil {
		rec.ObserveCommand(run.Command, outcome, duration)
	}
	if logger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("run_id", run.ID),
		zap.String("command", run.Command),
		zap.Strings("args", run.Args),
		zap.String("outcome", outcome),
		zap.Int64("duration_ms", duration.Milliseconds()),
	}
	fields = append(fields, extra...)

	level := zapcore.InfoLevel
	if err != nil {
		level = zapcore.ErrorLevel
		fields = append(fields, zap.Error(err))
	}

	if ce := logger.Check(level, "command completed"); ce != nil {
		ce.Write(fields...)
	}
}
