package analysis

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/speechcare/clinic-api/pkg/errors"
	"github.com/speechcare/clinic-api/pkg/metrics"
)

// Stderr fragments that indicate the engine's runtime environment is
// missing dependencies rather than the analysis itself failing. Coarse
// substring matching against the engine's dependency check output.
var misconfigMarkers = []string{
	"ModuleNotFoundError",
	"Missing required Python packages",
}

// SubprocessConfig locates the external analysis engine on the host.
type SubprocessConfig struct {
	Command string `mapstructure:"command" validate:"required"` // interpreter, e.g. python3
	Script  string `mapstructure:"script" validate:"required"`  // path to the analysis entrypoint
}

// SubprocessEngine launches the analysis engine as a child process per
// invocation and blocks until it exits. No timeout, retry or concurrency
// cap: each request owns exactly one subprocess.
type SubprocessEngine struct {
	cfg     SubprocessConfig
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

func NewSubprocessEngine(cfg SubprocessConfig, logger *zerolog.Logger, m *metrics.Metrics) *SubprocessEngine {
	return &SubprocessEngine{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
	}
}

// Invoke runs the engine with positional arguments
// (audioPath, name, age, gender), captures stdout and stderr, and maps the
// exit status. Zero exit hands stdout to the normalizer; non-zero exit
// surfaces the captured stderr.
func (e *SubprocessEngine) Invoke(ctx context.Context, audioPath string, meta PatientMeta) (*Result, error) {
	args := []string{
		e.cfg.Script,
		audioPath,
		meta.Name,
		strconv.Itoa(meta.Age),
		meta.Gender,
	}

	cmd := exec.CommandContext(ctx, e.cfg.Command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if e.metrics != nil {
		e.metrics.AnalysisDuration.Observe(elapsed.Seconds())
	}

	if err != nil {
		errOut := strings.TrimSpace(stderr.String())
		e.logger.Error().
			Err(err).
			Str("audio_path", audioPath).
			Str("stderr", errOut).
			Dur("elapsed", elapsed).
			Msg("analysis engine exited with error")

		if isMisconfigured(errOut) {
			if e.metrics != nil {
				e.metrics.AnalysisFailures.WithLabelValues("misconfigured").Inc()
			}
			return nil, apperrors.EngineMisconfigured(errOut, err)
		}
		if e.metrics != nil {
			e.metrics.AnalysisFailures.WithLabelValues("engine").Inc()
		}
		return nil, apperrors.EngineFailure(errOut, err)
	}

	e.logger.Info().
		Str("audio_path", audioPath).
		Dur("elapsed", elapsed).
		Int("stdout_bytes", stdout.Len()).
		Msg("analysis engine completed")

	result, err := Normalize(stdout.Bytes())
	if err != nil {
		if e.metrics != nil {
			e.metrics.AnalysisFailures.WithLabelValues("malformed_output").Inc()
		}
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.AnalysisInvocations.Inc()
	}
	return result, nil
}

func isMisconfigured(stderr string) bool {
	for _, marker := range misconfigMarkers {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}
