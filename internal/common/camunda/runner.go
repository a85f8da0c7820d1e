// internal/common/camunda/runner.go
package camunda

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"realty-workers/internal/common/errors"
	"realty-workers/internal/common/logger"
	"realty-workers/internal/common/metrics"
	"realty-workers/internal/common/observability"
)

// ExecFunc runs one job against its decoded input.
type ExecFunc func(ctx context.Context) (interface{}, error)

// Runner holds the job lifecycle shared by all workers: variable decoding,
// timeout, metrics, tracing, completion and BPMN error handling.
type Runner struct {
	taskType string
	timeout  time.Duration
	logger   logger.Logger
	errors   *errors.ErrorHandler
	obs      *observability.Observability
	retry    *RetryConfig
}

func NewRunner(taskType string, timeout time.Duration, log logger.Logger, obs *observability.Observability) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{
		taskType: taskType,
		timeout:  timeout,
		logger:   log,
		errors:   errors.NewErrorHandler(log),
		obs:      obs,
		retry:    &RetryConfig{MaxRetries: 2, BaseDelay: 200 * time.Millisecond, MaxDelay: 2 * time.Second},
	}
}

// Run decodes job variables into input, executes exec and completes the job
// with its output. Failures go through the ErrorHandler.
func (r *Runner) Run(client worker.JobClient, job entities.Job, input interface{}, exec ExecFunc) {
	log := logger.ForJob(r.logger, r.taskType, job.Key, job.ProcessInstanceKey)
	log.Info("processing job", nil)

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	output, err := r.Process(ctx, job.Variables, input, exec)
	if err != nil {
		r.errors.HandleJobError(ctx, client, job, err)
		return
	}
	r.completeJob(ctx, client, job, output, log)
}

// Process is Run without the job client. It is exported for handler tests.
func (r *Runner) Process(ctx context.Context, variables string, input interface{}, exec ExecFunc) (interface{}, error) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(r.taskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(r.taskType).Dec()

	ctx, span := r.obs.StartSpan(ctx, r.taskType, attribute.String("task_type", r.taskType))
	defer span.End()

	var output interface{}
	err := decodeVariables(variables, input)
	if err == nil {
		output, err = exec(ctx)
	}

	status := "completed"
	if err != nil {
		status = "failed"
		code := errors.Normalize(err).Code
		metrics.WorkerJobsFailed.WithLabelValues(r.taskType, string(code)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, string(code))
	} else {
		metrics.WorkerJobsCompleted.WithLabelValues(r.taskType).Inc()
	}

	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(r.taskType).Observe(elapsed.Seconds())
	r.obs.RecordJobProcessed(ctx, r.taskType, status)
	r.obs.RecordJobDuration(ctx, r.taskType, elapsed, status)

	return output, err
}

func decodeVariables(variables string, input interface{}) error {
	if variables == "" || input == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(variables), input); err != nil {
		return &errors.StandardError{
			Code:      "PARSE_ERROR",
			Message:   "Job variables could not be decoded",
			Details:   err.Error(),
			Timestamp: time.Now().UTC(),
		}
	}
	return nil
}

func (r *Runner) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}, log logger.Logger) {
	err := ExecuteWithRetry(ctx, r.retry, "complete job", func(ctx context.Context) error {
		cmd, err := client.NewCompleteJobCommand().
			JobKey(job.Key).
			VariablesFromObject(output)
		if err != nil {
			return err
		}
		_, err = cmd.Send(ctx)
		return err
	})
	if err != nil {
		log.Error("failed to complete job", map[string]interface{}{"error": err.Error()})
		return
	}
	log.Info("job completed", nil)
}
