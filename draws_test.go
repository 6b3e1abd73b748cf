package mcmc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testModelCode = `
data {
  int<lower=0> n;
  vector[2] y;
}
parameters {
  real mu;
  matrix[2,3] theta;
}
model {
  // int not_a_declaration;
  y ~ normal(mu, 1);
}
generated quantities {
  int y_rep[2]; // replicated data
  vector[2] log_lik;
}
`

// testFlatNames lists flattened columns in sampler storage order: shaped
// variables enumerate the first index fastest.
var testFlatNames = []string{
	"mu",
	"theta[0,0]", "theta[1,0]", "theta[0,1]", "theta[1,1]", "theta[0,2]", "theta[1,2]",
	"y_rep[0]", "y_rep[1]",
	"log_lik[0]", "log_lik[1]",
	"lp__",
}

// testColumn synthesizes a deterministic saved column: the value encodes
// chain, column position and row so tests can assert exact placement.
func testColumn(chain, col, rows int) []float64 {
	out := make([]float64, rows)
	for r := range out {
		out[r] = float64(1000*chain + 10*col + r)
	}
	return out
}

// testFit builds a two-chain fit with six saved rows and two warm-up rows
// per chain, covering scalar, matrix, integer and zero-size variables.
func testFit() *MemoryFit {
	const (
		nChains = 2
		nSave   = 6
		nWarmup = 2
	)

	chains := make([]*Chain, nChains)
	for c := 0; c < nChains; c++ {
		cols := make(map[string][]float64, len(testFlatNames))
		for i, key := range testFlatNames {
			cols[key] = testColumn(c, i, nSave)
		}
		chains[c] = &Chain{
			Columns:           cols,
			SamplerParamNames: []string{"accept_stat__", "divergent__", "n_leapfrog__", "treedepth__"},
			SamplerParams: map[string][]float64{
				"accept_stat__": {0.91, 0.92, 0.93, 0.94, 0.95, 0.96},
				"divergent__":   {0, 1, 0, 0, 1, 0},
				"n_leapfrog__":  {3, 7, 15, 7, 3, 7},
				"treedepth__":   {2, 3, 4, 3, 2, 3},
			},
		}
	}

	observed := map[string]*Array{
		"y": {Shape: []int{2}, DType: Float64, Data: []float64{1.5, 2.5}},
		"n": {Shape: nil, DType: Float64, Data: []float64{8}},
	}

	return &MemoryFit{
		SamplingMode: ModeSampling,
		Params: []Parameter{
			{Name: "mu"},
			{Name: "theta", Shape: []int{2, 3}},
			{Name: "y_rep", Shape: []int{2}},
			{Name: "log_lik", Shape: []int{2}},
			{Name: "empty", Shape: []int{0}},
			{Name: "lp__"},
		},
		Flat:      testFlatNames,
		ChainData: chains,
		NSave:     []int{6, 6},
		NWarmup:   []int{2, 2},
		Model:     testModelCode,
		Observed:  observed,
	}
}

func TestExtractDraws_ScalarShape(t *testing.T) {
	draws, err := ExtractDraws(testFit(), []string{"mu"}, nil)
	require.NoError(t, err)

	mu := draws.Get("mu")
	require.NotNil(t, mu)
	require.Equal(t, []int{2, 4}, mu.Shape, "(chain, draws-after-warmup)")
}

func TestExtractDraws_ShapedVariable(t *testing.T) {
	draws, err := ExtractDraws(testFit(), []string{"theta"}, nil)
	require.NoError(t, err)

	theta := draws.Get("theta")
	require.Equal(t, []int{2, 4, 2, 3}, theta.Shape)
}

func TestExtractDraws_WarmupTrimmed(t *testing.T) {
	draws, err := ExtractDraws(testFit(), []string{"mu"}, nil)
	require.NoError(t, err)

	mu := draws.Get("mu")
	// Column "mu" is flat column 0: saved rows are 1000c+0..1000c+5 and the
	// first two are warm-up, so draws must be rows 2..5 only.
	for c := 0; c < 2; c++ {
		for d := 0; d < 4; d++ {
			require.Equal(t, float64(1000*c+2+d), mu.At(c, d),
				"chain %d draw %d", c, d)
		}
	}
}

func TestExtractDraws_ColumnMajorReconstruction(t *testing.T) {
	fit := testFit()
	draws, err := ExtractDraws(fit, []string{"theta"}, nil)
	require.NoError(t, err)

	theta := draws.Get("theta")
	// theta[0,0] is flat column 1 and theta[1,2] is flat column 6; their raw
	// post-warm-up rows must land at those exact multi-indices.
	for c := 0; c < 2; c++ {
		for d := 0; d < 4; d++ {
			require.Equal(t, fit.ChainData[c].Columns["theta[0,0]"][2+d],
				theta.At(c, d, 0, 0))
			require.Equal(t, fit.ChainData[c].Columns["theta[1,2]"][2+d],
				theta.At(c, d, 1, 2))
			require.Equal(t, fit.ChainData[c].Columns["theta[0,1]"][2+d],
				theta.At(c, d, 0, 1))
		}
	}
}

func TestExtractDraws_DefaultSelectionAndOrder(t *testing.T) {
	draws, err := ExtractDraws(testFit(), nil, nil)
	require.NoError(t, err)

	// All declared parameters in declaration order, minus the zero-size one.
	require.Equal(t, []string{"mu", "theta", "y_rep", "log_lik", "lp__"}, draws.Names)
}

func TestExtractDraws_Ignore(t *testing.T) {
	draws, err := ExtractDraws(testFit(), nil, []string{"lp__"})
	require.NoError(t, err)

	require.NotContains(t, draws.Names, "lp__")
	require.Nil(t, draws.Get("lp__"))
	require.Contains(t, draws.Names, "mu")
}

func TestExtractDraws_DtypeInference(t *testing.T) {
	draws, err := ExtractDraws(testFit(), nil, nil)
	require.NoError(t, err)

	require.Equal(t, Int64, draws.Get("y_rep").DType,
		"generated quantities int declaration")
	require.Equal(t, Float64, draws.Get("log_lik").DType)
	require.Equal(t, Float64, draws.Get("mu").DType)
}

func TestExtractDraws_TestGradMode(t *testing.T) {
	fit := testFit()
	fit.SamplingMode = ModeTestGrad

	for _, selection := range [][]string{nil, {"mu"}, {"theta", "mu"}} {
		_, err := ExtractDraws(fit, selection, nil)
		require.ErrorIs(t, err, ErrTestGradMode)
	}
}

func TestExtractDraws_NoSamples(t *testing.T) {
	fit := testFit()
	fit.SamplingMode = ModeNoSamples
	_, err := ExtractDraws(fit, nil, nil)
	require.ErrorIs(t, err, ErrNoSamples)

	fit = testFit()
	fit.ChainData = nil
	_, err = ExtractDraws(fit, nil, nil)
	require.ErrorIs(t, err, ErrNoSamples)
}

func TestExtractDraws_UnknownVariable(t *testing.T) {
	_, err := ExtractDraws(testFit(), []string{"tau"}, nil)
	require.ErrorIs(t, err, ErrUnknownVariable)
	require.Contains(t, err.Error(), "tau")
}

func TestExtractDraws_RaggedChains(t *testing.T) {
	fit := testFit()
	fit.NWarmup = []int{2, 3}

	_, err := ExtractDraws(fit, nil, nil)
	require.ErrorIs(t, err, ErrRaggedChains)
}

func TestExtractDraws_WarmupExceedsSaved(t *testing.T) {
	fit := testFit()
	fit.NWarmup = []int{7, 7}

	_, err := ExtractDraws(fit, nil, nil)
	require.Error(t, err)
}

func TestExtractDraws_Idempotent(t *testing.T) {
	fit := testFit()

	first, err := ExtractDraws(fit, nil, nil)
	require.NoError(t, err)
	second, err := ExtractDraws(fit, nil, nil)
	require.NoError(t, err)

	require.Equal(t, first.Names, second.Names)
	for _, name := range first.Names {
		require.True(t, first.Get(name).Equal(second.Get(name)),
			"arrays for %q must be bit-identical", name)
	}
}

func TestExtractDraws_OutputDoesNotAliasFit(t *testing.T) {
	fit := testFit()
	draws, err := ExtractDraws(fit, []string{"mu"}, nil)
	require.NoError(t, err)

	before := draws.Get("mu").At(0, 0)
	fit.ChainData[0].Columns["mu"][2] = -1e9
	require.Equal(t, before, draws.Get("mu").At(0, 0))
}

func TestExtractVariable(t *testing.T) {
	mu, err := ExtractVariable(testFit(), "mu")
	require.NoError(t, err)
	require.Equal(t, []int{2, 4}, mu.Shape)

	_, err = ExtractVariable(testFit(), "nope")
	require.ErrorIs(t, err, ErrUnknownVariable)
}

func TestGroupFlatNames(t *testing.T) {
	vk := groupFlatNames([]string{"a", "b[0]", "b[1]", "c[0,0]", "c[1,0]", "a2"})

	require.Equal(t, []string{"a", "b", "c", "a2"}, vk.names)
	require.Equal(t, []string{"b[0]", "b[1]"}, vk.keys["b"])
	require.Equal(t, []string{"c[0,0]", "c[1,0]"}, vk.keys["c"])
}
