package mcmc

// FitMode distinguishes a fit that holds samples from one that does not.
type FitMode int

// Fit modes reported by Stan-style samplers.
const (
	ModeSampling  FitMode = 0 // Sampling was performed; draws are present.
	ModeTestGrad  FitMode = 1 // Gradient test only; no sampling conducted.
	ModeNoSamples FitMode = 2 // Fit object carries no sample buffers.
)

// Parameter describes one declared model variable: its name and declared
// shape. An empty Shape declares a scalar.
type Parameter struct {
	Name  string `json:"name"`
	Shape []int  `json:"shape"`
}

// Chain holds the saved output of one independent sampling run.
//
// Columns maps each flattened key (for example "theta[0,1]") to its saved
// rows, warm-up included. SamplerParams holds sampler diagnostics such as
// divergent__ or treedepth__, with SamplerParamNames preserving their
// reported order.
type Chain struct {
	Columns           map[string][]float64 `json:"columns"`
	SamplerParamNames []string             `json:"sampler_param_names"`
	SamplerParams     map[string][]float64 `json:"sampler_params"`
}

// Fit is the read-only view of a sampler run that the extractor consumes.
// Implementations must not mutate the underlying buffers during a call.
type Fit interface {
	// Mode reports whether sampling was performed.
	Mode() FitMode

	// Parameters lists the declared variables in declaration order.
	Parameters() []Parameter

	// FlatNames lists all flattened column names in sampler storage order.
	// Keys of a shaped variable enumerate the first index fastest.
	FlatNames() []string

	// Chains returns the per-chain sample holders. An empty result means
	// the fit carries no samples.
	Chains() []*Chain

	// Saved returns the total saved row count per chain, warm-up included.
	Saved() []int

	// Warmup returns the warm-up row count per chain.
	Warmup() []int

	// ModelCode returns the textual model source, or "" if unavailable.
	ModelCode() string

	// Data returns the observed data table the model was conditioned on,
	// or nil if none was recorded.
	Data() map[string]*Array
}

// MemoryFit is an in-memory Fit implementation. It backs tests, examples,
// and the JSON fit files consumed by the stanconvert command.
type MemoryFit struct {
	SamplingMode FitMode           `json:"mode"`
	Params       []Parameter       `json:"parameters"`
	Flat         []string          `json:"flat_names"`
	ChainData    []*Chain          `json:"chains"`
	NSave        []int             `json:"saved"`
	NWarmup      []int             `json:"warmup"`
	Model        string            `json:"model_code"`
	Observed     map[string]*Array `json:"observed_data,omitempty"`
}

// Mode implements Fit.
func (f *MemoryFit) Mode() FitMode { return f.SamplingMode }

// Parameters implements Fit.
func (f *MemoryFit) Parameters() []Parameter { return f.Params }

// FlatNames implements Fit.
func (f *MemoryFit) FlatNames() []string { return f.Flat }

// Chains implements Fit.
func (f *MemoryFit) Chains() []*Chain { return f.ChainData }

// Saved implements Fit.
func (f *MemoryFit) Saved() []int { return f.NSave }

// Warmup implements Fit.
func (f *MemoryFit) Warmup() []int { return f.NWarmup }

// ModelCode implements Fit.
func (f *MemoryFit) ModelCode() string { return f.Model }

// Data implements Fit.
func (f *MemoryFit) Data() map[string]*Array { return f.Observed }
