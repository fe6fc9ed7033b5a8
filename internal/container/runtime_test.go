// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	onPath   map[string]bool
	runnable map[string]bool
	piped    func(name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
	lastArgs []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.onPath[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(_ context.Context, name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnable[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunPiped(_ context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	m.lastArgs = append([]string{name}, args...)
	if m.piped != nil {
		return m.piped(name, args, stdin, stdout, stderr)
	}
	return nil
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name:     "docker available",
			exec:     &mockExecutor{onPath: map[string]bool{"docker": true}, runnable: map[string]bool{"docker info": true}},
			wantName: "docker",
		},
		{
			name:     "podman fallback",
			exec:     &mockExecutor{onPath: map[string]bool{"podman": true}, runnable: map[string]bool{"podman info": true}},
			wantName: "podman",
		},
		{
			name: "docker daemon down",
			exec: &mockExecutor{
				onPath:   map[string]bool{"docker": true, "podman": true},
				runnable: map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name:    "none",
			exec:    &mockExecutor{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detect(context.Background(), tt.exec)
			if tt.wantErr {
				assert.ErrorContains(t, err, "no container runtime available")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, rt.Name())
		})
	}
}

func TestImageExists(t *testing.T) {
	ctx := context.Background()
	e := &mockExecutor{runnable: map[string]bool{
		"docker image inspect weasyprint:latest": true,
		"podman image exists weasyprint:latest":  true,
	}}
	assert.NoError(t, newDocker(e).ImageExists(ctx, "weasyprint:latest"))
	assert.NoError(t, newPodman(e).ImageExists(ctx, "weasyprint:latest"))

	err := newDocker(&mockExecutor{}).ImageExists(ctx, "weasyprint:latest")
	assert.ErrorContains(t, err, "weasyprint:latest")
}

func TestRun(t *testing.T) {
	e := &mockExecutor{piped: func(_ string, _ []string, stdin io.Reader, stdout, _ io.Writer) error {
		data, _ := io.ReadAll(stdin)
		_, _ = stdout.Write([]byte("%PDF " + string(data)))
		return nil
	}}
	var out bytes.Buffer
	err := newPodman(e).Run(context.Background(), "weasyprint:latest", []string{"-", "-"}, strings.NewReader("<html/>"), &out)
	require.NoError(t, err)

	assert.Equal(t, "%PDF <html/>", out.String())
	assert.Equal(t, []string{"podman", "run", "--rm", "-i", "--network", "none", "weasyprint:latest", "-", "-"}, e.lastArgs)
}

func TestRunFailureIncludesStderr(t *testing.T) {
	e := &mockExecutor{piped: func(_ string, _ []string, _ io.Reader, _, stderr io.Writer) error {
		_, _ = stderr.Write([]byte("font not found\n"))
		return errors.New("exit status 1")
	}}
	err := newDocker(e).Run(context.Background(), "weasyprint:latest", nil, strings.NewReader(""), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running docker container weasyprint:latest")
	assert.Contains(t, err.Error(), "font not found")
}
