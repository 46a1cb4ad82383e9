package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/fieldlog/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `
deployments:
  - key: d1
    mode: ROV
    sub_type: WORK CLASS
    name: Jacket leg B2
    number: R-014
    job_pack_id: jp-1
    structure_id: jacket-b
    movements:
      - code: LAUNCHED
        time: 2024-05-01T09:00:00Z
    tapes:
      - number: ROV-0001
        events:
          - verb: start
            time: 2024-05-01T09:01:00Z
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, dir string, v map[string]any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, "server.json")
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestMigrateSeedAndList(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "fieldlog.db")

	out, err := run(t, "--dsn", dsn, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrations applied (sqlite)")

	fixturePath := filepath.Join(dir, "fixture.yaml")
	require.NoError(t, os.WriteFile(fixturePath, []byte(fixture), 0o600))

	out, err = run(t, "--dsn", dsn, "seed", fixturePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 1 deployments, 1 movements, 1 tapes, 1 tape events, 0 inspections")

	out, err = run(t, "--dsn", dsn, "deployments", "-j", "jp-1", "-m", "rov")
	require.NoError(t, err)
	assert.Contains(t, out, "R-014 Jacket leg B2")
	assert.Contains(t, out, "jacket-b")

	out, err = run(t, "--dsn", dsn, "deployments", "-j", "jp-2", "-m", "rov")
	require.NoError(t, err)
	assert.Contains(t, out, "No deployments.")
}

func TestSeed_Errors(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "fieldlog.db")

	_, err := run(t, "--dsn", dsn, "seed", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("deployments:\n  - mode: SUBMARINE\n    job_pack_id: x\n"), 0o600))
	_, err = run(t, "--dsn", dsn, "seed", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")

	_, err = run(t, "seed")
	require.Error(t, err)
}

func TestMemoryDriverRefused(t *testing.T) {
	_, err := run(t, "--driver", "memory", "migrate")
	assert.ErrorIs(t, err, errMemoryStore)
}

func TestToken_UsesConfiguredSecret(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, map[string]any{"secret_key": "ctl-secret"})

	out, err := run(t, "-c", cfgPath, "token", "op-42", "--ttl", "1h")
	require.NoError(t, err)

	token := strings.TrimSpace(out)
	id, err := auth.GetOperatorIDFromToken(token, []byte("ctl-secret"))
	require.NoError(t, err)
	assert.Equal(t, "op-42", id)

	_, err = auth.GetOperatorIDFromToken(token, []byte("secretKey"))
	assert.Error(t, err)
}

func TestToken_Errors(t *testing.T) {
	_, err := run(t, "token")
	require.Error(t, err)

	_, err = run(t, "-c", filepath.Join(t.TempDir(), "nope.json"), "token", "op")
	require.Error(t, err)
}

func TestSecretAndVersion(t *testing.T) {
	out, err := run(t, "secret", "--bytes", "16")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), 32)

	_, err = run(t, "secret", "--bytes", "4")
	require.Error(t, err)

	out, err = run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Build version:")
}

func TestRenderTable(t *testing.T) {
	assert.Empty(t, renderTable(nil, nil, nil))

	out := renderTable([]string{"#", "Name"}, [][]string{{"1", "alpha"}, {"2"}}, []columnAlignment{alignRight})
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "Name")
}
