package mcmc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

var _ Fit = (*MemoryFit)(nil)

func TestMemoryFit_JSONRoundTrip(t *testing.T) {
	fit := testFit()

	raw, err := json.Marshal(fit)
	require.NoError(t, err)

	var decoded MemoryFit
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.Equal(t, fit.SamplingMode, decoded.Mode())
	require.Equal(t, fit.Params, decoded.Parameters())
	require.Equal(t, fit.Flat, decoded.FlatNames())
	require.Equal(t, fit.NSave, decoded.Saved())
	require.Equal(t, fit.NWarmup, decoded.Warmup())
	require.Equal(t, fit.Model, decoded.ModelCode())

	// A decoded fit extracts identically to the original.
	want, err := ExtractDraws(fit, nil, nil)
	require.NoError(t, err)
	got, err := ExtractDraws(&decoded, nil, nil)
	require.NoError(t, err)

	require.Equal(t, want.Names, got.Names)
	for _, name := range want.Names {
		require.True(t, want.Get(name).Equal(got.Get(name)), "variable %q", name)
	}
}
