package mcmc

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/scigolib/mcmc/internal/errutil"
)

// Group names emitted by the converter, in build order.
const (
	GroupPosterior           = "posterior"
	GroupSampleStats         = "sample_stats"
	GroupPosteriorPredictive = "posterior_predictive"
	GroupPrior               = "prior"
	GroupSampleStatsPrior    = "sample_stats_prior"
	GroupPriorPredictive     = "prior_predictive"
	GroupObservedData        = "observed_data"
)

// logProbKey is the sampler's log-probability column. It is routed to the
// sample_stats group and excluded from posterior and prior draws.
const logProbKey = "lp__"

// samplerParamDtypes overrides the representation of known diagnostics.
var samplerParamDtypes = map[string]DType{
	"divergent__":  Bool,
	"n_leapfrog__": Int64,
	"treedepth__":  Int64,
}

// InferenceData bundles the converted groups, keyed by group name with
// build order preserved.
type InferenceData struct {
	GroupNames []string            `json:"group_names"`
	Groups     map[string]*Dataset `json:"groups"`
}

// Get returns the dataset for a group, or nil if the group was not built.
func (id *InferenceData) Get(group string) *Dataset {
	return id.Groups[group]
}

// Converter assembles an InferenceData bundle from one or two fits.
//
// Posterior is the sampled fit; Prior, when set, is a second fit sampled
// from the prior. PosteriorPredictive, PriorPredictive and LogLikelihood
// name variables inside those fits that are routed to their own groups and
// excluded from the main draw groups. ObservedData names entries of the
// posterior fit's data table. Dims and Coords override the generated
// dimension names and coordinate labels per variable.
//
// A group is produced only when every input it requires is present; absent
// optional inputs silently skip the group, matching the capability table in
// groupSpecs.
type Converter struct {
	Posterior           Fit
	Prior               Fit
	PosteriorPredictive []string
	PriorPredictive     []string
	ObservedData        []string
	LogLikelihood       string
	Dims                map[string][]string
	Coords              map[string][]string

	// Logger receives progress at debug level. Nil disables logging.
	Logger *zap.Logger
}

// groupSpec declares one convertible group: its name, the inputs it
// requires, and its build function. The table replaces scattered presence
// checks with a single declarative gate.
type groupSpec struct {
	name     string
	required func(*Converter) bool
	build    func(*Converter) (*Dataset, error)
}

var groupSpecs = []groupSpec{
	{
		name:     GroupPosterior,
		required: func(c *Converter) bool { return c.Posterior != nil },
		build:    (*Converter).posteriorGroup,
	},
	{
		name:     GroupSampleStats,
		required: func(c *Converter) bool { return c.Posterior != nil },
		build:    (*Converter).sampleStatsGroup,
	},
	{
		name: GroupPosteriorPredictive,
		required: func(c *Converter) bool {
			return c.Posterior != nil && len(c.PosteriorPredictive) > 0
		},
		build: (*Converter).posteriorPredictiveGroup,
	},
	{
		name:     GroupPrior,
		required: func(c *Converter) bool { return c.Prior != nil },
		build:    (*Converter).priorGroup,
	},
	{
		name:     GroupSampleStatsPrior,
		required: func(c *Converter) bool { return c.Prior != nil },
		build:    (*Converter).sampleStatsPriorGroup,
	},
	{
		name: GroupPriorPredictive,
		required: func(c *Converter) bool {
			return c.Prior != nil && len(c.PriorPredictive) > 0
		},
		build: (*Converter).priorPredictiveGroup,
	},
	{
		name: GroupObservedData,
		required: func(c *Converter) bool {
			return c.Posterior != nil && len(c.ObservedData) > 0
		},
		build: (*Converter).observedDataGroup,
	},
}

// Convert builds every group whose required inputs are present.
// Any group build failure aborts the whole conversion; no partial bundle
// is returned.
func (c *Converter) Convert() (*InferenceData, error) {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	out := &InferenceData{Groups: make(map[string]*Dataset)}
	for _, spec := range groupSpecs {
		if !spec.required(c) {
			logger.Debug("skipping group, required inputs absent",
				zap.String("group", spec.name))
			continue
		}
		ds, err := spec.build(c)
		if err != nil {
			return nil, errutil.Wrap(fmt.Sprintf("building group %q", spec.name), err)
		}
		out.GroupNames = append(out.GroupNames, spec.name)
		out.Groups[spec.name] = ds
		logger.Debug("built group",
			zap.String("group", spec.name),
			zap.Int("variables", len(ds.VarNames)))
	}
	logger.Info("conversion complete", zap.Strings("groups", out.GroupNames))
	return out, nil
}

// FromFit converts a single posterior fit with default settings: posterior
// draws plus sampler diagnostics.
func FromFit(posterior Fit) (*InferenceData, error) {
	return (&Converter{Posterior: posterior}).Convert()
}

func (c *Converter) posteriorGroup() (*Dataset, error) {
	ignore := append([]string{}, c.PosteriorPredictive...)
	if c.LogLikelihood != "" {
		ignore = append(ignore, c.LogLikelihood)
	}
	ignore = append(ignore, logProbKey)

	draws, err := ExtractDraws(c.Posterior, nil, ignore)
	if err != nil {
		return nil, err
	}
	return DrawsToDataset(draws, c.Dims, c.Coords), nil
}

func (c *Converter) priorGroup() (*Dataset, error) {
	ignore := append([]string{}, c.PriorPredictive...)
	ignore = append(ignore, logProbKey)

	draws, err := ExtractDraws(c.Prior, nil, ignore)
	if err != nil {
		return nil, err
	}
	return DrawsToDataset(draws, c.Dims, c.Coords), nil
}

func (c *Converter) posteriorPredictiveGroup() (*Dataset, error) {
	draws, err := ExtractDraws(c.Posterior, c.PosteriorPredictive, nil)
	if err != nil {
		return nil, err
	}
	return DrawsToDataset(draws, c.Dims, c.Coords), nil
}

func (c *Converter) priorPredictiveGroup() (*Dataset, error) {
	draws, err := ExtractDraws(c.Prior, c.PriorPredictive, nil)
	if err != nil {
		return nil, err
	}
	return DrawsToDataset(draws, c.Dims, c.Coords), nil
}

func (c *Converter) sampleStatsGroup() (*Dataset, error) {
	return c.sampleStats(c.Posterior, c.LogLikelihood)
}

func (c *Converter) sampleStatsPriorGroup() (*Dataset, error) {
	return c.sampleStats(c.Prior, "")
}

// statName maps a sampler diagnostic key to its published name: one
// trailing "__" is stripped and divergent becomes diverging.
func statName(key string) string {
	name := strings.TrimSuffix(key, "__")
	if name == "divergent" {
		return "diverging"
	}
	return name
}

// sampleStats builds a diagnostics dataset from the fit's sampler
// parameters, appending the pointwise log likelihood (when named) and the
// log probability. Warm-up rows are trimmed the same way draw extraction
// trims them, so every variable in the group shares the draw dimension.
func (c *Converter) sampleStats(fit Fit, logLikelihood string) (*Dataset, error) {
	chains := fit.Chains()
	if len(chains) == 0 {
		return nil, ErrNoSamples
	}
	saved, warmup := fit.Saved(), fit.Warmup()
	if len(saved) != len(chains) || len(warmup) != len(chains) {
		return nil, fmt.Errorf("fit reports %d saved and %d warm-up entries for %d chains",
			len(saved), len(warmup), len(chains))
	}

	// Diagnostics keys in first-seen order across chains.
	var keys []string
	seen := make(map[string]struct{})
	for _, chain := range chains {
		for _, key := range chain.SamplerParamNames {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}

	draws := &Draws{Arrays: make(map[string]*Array)}
	dims := make(map[string][]string, len(c.Dims))
	for k, v := range c.Dims {
		dims[k] = v
	}

	for _, key := range keys {
		perChain := make([]*Array, len(chains))
		for i, chain := range chains {
			rows, ok := chain.SamplerParams[key]
			if !ok {
				return nil, fmt.Errorf("chain %d has no sampler parameter %q", i, key)
			}
			ndraw := saved[i] - warmup[i]
			ary, err := FromColumns([][]float64{rows}, ndraw, nil)
			if err != nil {
				return nil, errutil.Wrap(fmt.Sprintf("trimming sampler parameter %q in chain %d", key, i), err)
			}
			perChain[i] = ary
		}
		stacked, err := StackChains(perChain)
		if err != nil {
			return nil, errutil.Wrap(fmt.Sprintf("stacking sampler parameter %q", key), err)
		}
		if dtype, ok := samplerParamDtypes[key]; ok {
			stacked = stacked.AsType(dtype)
		}
		name := statName(key)
		draws.Names = append(draws.Names, name)
		draws.Arrays[name] = stacked
	}

	if logLikelihood != "" {
		ll, err := ExtractVariable(fit, logLikelihood)
		if err != nil {
			return nil, err
		}
		draws.Names = append(draws.Names, "log_likelihood")
		draws.Arrays["log_likelihood"] = ll
		// The variable's user-supplied axis names follow it into the group.
		if d, ok := dims[logLikelihood]; ok {
			dims["log_likelihood"] = d
			delete(dims, logLikelihood)
		}
	}

	lp, err := ExtractVariable(fit, logProbKey)
	if err != nil {
		return nil, err
	}
	draws.Names = append(draws.Names, "lp")
	draws.Arrays["lp"] = lp

	return DrawsToDataset(draws, dims, c.Coords), nil
}

// observedDataGroup labels entries of the posterior fit's data table.
// Observed values carry no chain or draw dimension; scalars are promoted
// to one-element vectors.
func (c *Converter) observedDataGroup() (*Dataset, error) {
	table := c.Posterior.Data()
	ds := NewDataset(nil)
	for _, name := range c.ObservedData {
		vals, ok := table[name]
		if !ok {
			return nil, fmt.Errorf("observed data %q not present in fit data table", name)
		}
		if vals.NDim() == 0 {
			promoted := &Array{Shape: []int{1}, DType: vals.DType,
				Data: append([]float64(nil), vals.Data...)}
			vals = promoted
		}
		dims, coords := dimsCoords(name, vals.Shape, nil, c.Dims[name], c.Coords)
		ds.Add(name, &DataArray{Values: vals, Dims: dims, Coords: coords})
	}
	return ds, nil
}
