package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rileyhilliard/gpudash/internal/api"
	"github.com/rileyhilliard/gpudash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListHosts_Text(t *testing.T) {
	_, client := newFakeBackend(t, "gpu1", "gpu2")

	var buf bytes.Buffer
	require.NoError(t, listHosts(context.Background(), client, &buf, false))

	out := buf.String()
	assert.Contains(t, out, "2 hosts from /etc/gpu/ssh_config")
	assert.Contains(t, out, "gpu1")
	assert.Contains(t, out, "gpu2")
}

func TestListHosts_Empty(t *testing.T) {
	_, client := newFakeBackend(t)

	var buf bytes.Buffer
	require.NoError(t, listHosts(context.Background(), client, &buf, false))
	assert.Equal(t, "No hosts in /etc/gpu/ssh_config\n", buf.String())
}

func TestListHosts_JSON(t *testing.T) {
	_, client := newFakeBackend(t)

	var buf bytes.Buffer
	require.NoError(t, listHosts(context.Background(), client, &buf, true))

	var env struct {
		Success bool        `json:"success"`
		Data    HostsOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, []string{}, env.Data.Hosts, "empty list encodes as []")
}

func TestListHosts_UnreachableJSON(t *testing.T) {
	b, client := newFakeBackend(t, "gpu1")
	b.server.Close()

	var buf bytes.Buffer
	err := listHosts(context.Background(), client, &buf, true)

	code, ok := errors.GetExitCode(err)
	require.True(t, ok)
	assert.Equal(t, 1, code)

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, ErrCodeBackendUnreachable, env.Error.Code)
}

func TestFleetStatus_AllHealthy(t *testing.T) {
	_, client := newFakeBackend(t, "gpu1", "gpu2")

	var buf bytes.Buffer
	require.NoError(t, fleetStatus(context.Background(), client, &buf, nil, false))

	out := buf.String()
	assert.Contains(t, out, "gpu1")
	assert.Contains(t, out, "gpu2")
	assert.Contains(t, out, "20.0 GiB")
	assert.Contains(t, out, "2 of 2 hosts reporting")
}

func TestFleetStatus_FailedHostExitsOne(t *testing.T) {
	b, client := newFakeBackend(t, "gpu1", "gpu2", "gpu3")
	b.failing["gpu2"] = "ssh timeout"

	var buf bytes.Buffer
	err := fleetStatus(context.Background(), client, &buf, nil, false)

	code, ok := errors.GetExitCode(err)
	require.True(t, ok)
	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "ssh timeout")
	assert.Contains(t, buf.String(), "2 of 3 hosts reporting")
}

func TestFleetStatus_NamedHostsJSON(t *testing.T) {
	b, client := newFakeBackend(t, "gpu1", "gpu2", "gpu3")
	b.failing["gpu3"] = "nvidia-smi not found"

	var buf bytes.Buffer
	err := fleetStatus(context.Background(), client, &buf, []string{"gpu3", "gpu1"}, true)
	require.Error(t, err)

	var env struct {
		Success bool         `json:"success"`
		Data    StatusOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	require.Len(t, env.Data.Hosts, 2)
	assert.Equal(t, "gpu3", env.Data.Hosts[0].Host, "input order is kept")
	assert.False(t, env.Data.Hosts[0].OK)
	assert.Equal(t, "nvidia-smi not found", env.Data.Hosts[0].Error)
	assert.Equal(t, "gpu1", env.Data.Hosts[1].Host)
	assert.Equal(t, 1, env.Data.Healthy)
	assert.Equal(t, 1, env.Data.Failed)
}

func TestFleetRows(t *testing.T) {
	rows := FleetRows([]api.StatusReport{
		{Host: "gpu1", OK: true, Summary: api.Summary{Count: 4, UtilAvg: 75, MemUsed: 1024, MemTotal: 4096}},
		{Host: "gpu2", OK: true, GPUs: []api.GPU{{Index: 0}, {Index: 1}}},
		{Host: "gpu3", OK: false, Error: "ssh timeout"},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, 4, rows[0].GPUs)
	assert.Equal(t, 75.0, rows[0].UtilAvg)
	assert.Equal(t, 4096, rows[0].MemTotal)
	assert.Equal(t, 2, rows[1].GPUs, "falls back to the GPU list length")
	assert.False(t, rows[2].OK)
	assert.Equal(t, "ssh timeout", rows[2].Error)
}

func TestListProcesses_Text(t *testing.T) {
	_, client := newFakeBackend(t, "gpu1")

	var buf bytes.Buffer
	require.NoError(t, listProcesses(context.Background(), client, &buf, "gpu1", 0, false))

	out := buf.String()
	assert.Contains(t, out, "gpu1 GPU 0")
	assert.Contains(t, out, "2 processes detected.")
	assert.Contains(t, out, "4242")
	assert.Contains(t, out, "python")
	assert.Contains(t, out, "2.0 GiB")
	assert.Contains(t, out, "permission denied")
}

func TestListProcesses_JSON(t *testing.T) {
	_, client := newFakeBackend(t, "gpu1")

	var buf bytes.Buffer
	require.NoError(t, listProcesses(context.Background(), client, &buf, "gpu1", 0, true))

	var env struct {
		Data api.ProcessReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	require.Len(t, env.Data.Processes, 2)
	assert.Nil(t, env.Data.Processes[1].PID)
}

func TestListProcesses_UnknownHost(t *testing.T) {
	_, client := newFakeBackend(t, "gpu1", "gpu2", "login")

	err := listProcesses(context.Background(), client, &bytes.Buffer{}, "gpu3", 0, false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))
	assert.Equal(t, "No host 'gpu3' in the fleet", errors.Message(err))

	var gdErr *errors.Error
	require.ErrorAs(t, err, &gdErr)
	assert.Equal(t, "Did you mean one of 'gpu1', 'gpu2'?", gdErr.Suggestion)
}

func TestListProcesses_UnknownHostJSON(t *testing.T) {
	_, client := newFakeBackend(t, "gpu1")

	var buf bytes.Buffer
	err := listProcesses(context.Background(), client, &buf, "storage", 0, true)
	_, isExit := errors.GetExitCode(err)
	assert.True(t, isExit)
	assert.Contains(t, buf.String(), `"INVALID_INPUT"`)
	assert.Contains(t, buf.String(), "gpudash hosts")
}

func TestOptionalInt(t *testing.T) {
	v := 7
	assert.Equal(t, "7", optionalInt(&v))
	assert.Equal(t, "-", optionalInt(nil))
}
