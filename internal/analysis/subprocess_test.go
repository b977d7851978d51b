package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/speechcare/clinic-api/pkg/errors"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
	return path
}

func newTestEngine(t *testing.T, script string) *SubprocessEngine {
	t.Helper()
	logger := zerolog.Nop()
	return NewSubprocessEngine(SubprocessConfig{
		Command: "/bin/sh",
		Script:  writeScript(t, script),
	}, &logger, nil)
}

func TestInvokeSuccess(t *testing.T) {
	engine := newTestEngine(t, `#!/bin/sh
echo '{"transcript":"hello","emotions":["calm (91.0%)"],"pitch":150,"pace":140,"silence":1.2,"summary":"ok"}'
`)

	result, err := engine.Invoke(context.Background(), "/tmp/sample.wav", PatientMeta{Name: "Ann", Age: 30, Gender: "female"})
	require.NoError(t, err)

	assert.Equal(t, "hello", result.Transcript)
	assert.Equal(t, []string{"calm"}, result.Emotions)
	require.NotNil(t, result.Pitch)
	assert.Equal(t, 150.0, *result.Pitch)
}

func TestInvokePassesPositionalArgs(t *testing.T) {
	engine := newTestEngine(t, `#!/bin/sh
printf '{"transcript":"%s|%s|%s|%s","emotions":[],"pitch":1,"pace":1,"silence":0,"summary":""}' "$1" "$2" "$3" "$4"
`)

	result, err := engine.Invoke(context.Background(), "/tmp/sample.wav", PatientMeta{Name: "Ann", Age: 30, Gender: "female"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/sample.wav|Ann|30|female", result.Transcript)
}

func TestInvokeEngineFailure(t *testing.T) {
	engine := newTestEngine(t, `#!/bin/sh
echo "something broke" 1>&2
exit 1
`)

	_, err := engine.Invoke(context.Background(), "/tmp/sample.wav", PatientMeta{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrEngineFailure))
	assert.Contains(t, err.Error(), "something broke")
}

func TestInvokeEngineMisconfigured(t *testing.T) {
	engine := newTestEngine(t, `#!/bin/sh
echo "ModuleNotFoundError: No module named 'librosa'" 1>&2
exit 1
`)

	_, err := engine.Invoke(context.Background(), "/tmp/sample.wav", PatientMeta{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrEngineMisconfigured))
}

func TestInvokeMissingPackagesMisconfigured(t *testing.T) {
	engine := newTestEngine(t, `#!/bin/sh
echo "Missing required Python packages: librosa, torch" 1>&2
exit 1
`)

	_, err := engine.Invoke(context.Background(), "/tmp/sample.wav", PatientMeta{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrEngineMisconfigured))
}

func TestInvokeMalformedStdout(t *testing.T) {
	engine := newTestEngine(t, `#!/bin/sh
echo "this is not json"
`)

	_, err := engine.Invoke(context.Background(), "/tmp/sample.wav", PatientMeta{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrMalformedOutput))
}
