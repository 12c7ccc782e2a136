package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/specialistvlad/wasmrepro/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_StageLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf, false)

	r.Section("contract", "token")
	r.StageStarted(pipeline.StageBuild, "soroban-token-contract")
	r.StageFinished(pipeline.StageBuild, "soroban-token-contract", nil)
	r.StageStarted(pipeline.StageOptimize, "soroban_token_contract.wasm")
	r.StageFinished(pipeline.StageOptimize, "soroban_token_contract.wasm", errors.New("exit status 1"))

	assert.Equal(t,
		"------- contract: token ----------\n"+
			"▶ build soroban-token-contract\n"+
			"✅ build soroban-token-contract\n"+
			"▶ optimize soroban_token_contract.wasm\n"+
			"❌ optimize soroban_token_contract.wasm: exit status 1\n",
		buf.String())
}

func TestReporter_Summary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf, false)

	r.Record("token", nil)
	r.Record("liquidity_pool", errors.New("reproduce failed"))
	r.Record("hello_world", nil)

	require.Len(t, r.Results(), 3)
	failed := r.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "liquidity_pool", failed[0].Item)

	r.Summary()
	out := buf.String()
	assert.Contains(t, out, "Summary: 2 passed, 1 failed, 0 skipped")
	assert.Contains(t, out, "liquidity_pool")
	assert.Contains(t, out, "reproduce failed")
}

func TestReporter_PassAndSkip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf, false)

	r.Pass("token/soroban-token-contract", []string{"out/soroban_token_contract.wasm", "out/soroban_token_contract.optimized.wasm"}, true)
	r.Record("liquidity_pool.wasm", errors.New("reproduce failed"))
	r.Skip("router.wasm", "dependency liquidity_pool failed")

	require.Len(t, r.Failed(), 1)
	skipped := r.Skipped()
	require.Len(t, skipped, 1)
	assert.Equal(t, "router.wasm", skipped[0].Item)
	assert.False(t, skipped[0].OK())
	assert.NoError(t, skipped[0].Err)

	r.Summary()
	out := buf.String()
	assert.Contains(t, out, "⏭ skip router.wasm: dependency liquidity_pool failed\n")
	assert.Contains(t, out, "Summary: 1 passed, 1 failed, 1 skipped")
	assert.Contains(t, out, "out/soroban_token_contract.wasm, out/soroban_token_contract.optimized.wasm (verified)")
}

func TestReporter_ColorOnlyWhenEnabled(t *testing.T) {
	t.Parallel()

	var plain bytes.Buffer
	New(&plain, false).StageStarted(pipeline.StageReproduce, "a.wasm")
	assert.NotContains(t, plain.String(), "\x1b[")
}
