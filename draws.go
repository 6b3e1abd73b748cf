// Package mcmc reconstructs structured, labeled draw arrays from the flat
// per-chain output of a Markov-chain-Monte-Carlo sampler. It groups a fit's
// flattened scalar columns by logical variable, trims warm-up rows,
// reassembles declared shapes in the sampler's first-index-fastest storage
// order, and assembles the results into grouped inference-data bundles.
package mcmc

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/scigolib/mcmc/internal/errutil"
)

// Extraction-level failures. These abort the whole call; no partial result
// is ever returned alongside them.
var (
	// ErrTestGradMode indicates the model ran in gradient-test mode, so
	// sampling was never conducted.
	ErrTestGradMode = errors.New("model run in test-gradient mode, sampling was not conducted")

	// ErrNoSamples indicates the fit carries no sample buffers.
	ErrNoSamples = errors.New("fit does not contain samples")

	// ErrUnknownVariable indicates a requested variable is not declared by
	// the fit.
	ErrUnknownVariable = errors.New("variable not declared by fit")

	// ErrRaggedChains indicates the chains disagree on their
	// draws-after-warm-up count, so they cannot be stacked densely.
	ErrRaggedChains = errors.New("chains have differing draw counts after warm-up")
)

// Draws is the result of one extraction call: one (chain, draw, *shape)
// array per resolved variable, with resolution order preserved.
type Draws struct {
	// Names lists the resolved variables in output order.
	Names []string

	// Arrays maps each name in Names to its reconstructed array.
	Arrays map[string]*Array
}

// Get returns the array for name, or nil if name was not extracted.
func (d *Draws) Get(name string) *Array {
	return d.Arrays[name]
}

// variableKeys groups the fit's flattened column names by logical variable,
// preserving first-seen order of both variables and keys. The key order is
// the sampler's flattening order and drives reconstruction.
type variableKeys struct {
	names []string
	keys  map[string][]string
}

// baseName tokenizes a flattened key into the variable name before the first
// index bracket. Scalar keys carry no bracket and are their own base.
func baseName(key string) string {
	base, _, _ := strings.Cut(key, "[")
	return base
}

// groupFlatNames builds variableKeys from the fit's flat column name list.
// Pass 1 tokenizes each key; pass 2 groups by base name in first-seen order.
func groupFlatNames(flat []string) *variableKeys {
	vk := &variableKeys{keys: make(map[string][]string)}
	for _, key := range flat {
		base := baseName(key)
		if _, seen := vk.keys[base]; !seen {
			vk.names = append(vk.names, base)
		}
		vk.keys[base] = append(vk.keys[base], key)
	}
	return vk
}

// ExtractDraws reconstructs shaped draw arrays from a fit.
//
// variables selects the logical variables to extract; nil selects every
// declared parameter. ignore drops names from the selection after it is
// resolved. Each output array has shape (chain, draw, *declared shape) with
// per-chain warm-up rows removed.
//
// The reconstruction contract: the fit's flattened keys for a shaped
// variable enumerate the first index fastest, so the gathered columns are
// reassembled with a column-major unraveling (see FromColumns). The element
// named theta[1,2] always lands at multi-index [1,2].
//
// ExtractDraws fails with ErrTestGradMode or ErrNoSamples when the fit is
// unusable, ErrUnknownVariable when a requested name is not declared, and
// ErrRaggedChains when chains disagree on draw counts. Output arrays are
// fresh allocations and never alias the fit's buffers.
func ExtractDraws(fit Fit, variables, ignore []string) (*Draws, error) {
	switch fit.Mode() {
	case ModeTestGrad:
		return nil, ErrTestGradMode
	case ModeNoSamples:
		return nil, ErrNoSamples
	}
	chains := fit.Chains()
	if len(chains) == 0 {
		return nil, ErrNoSamples
	}

	saved, warmup := fit.Saved(), fit.Warmup()
	if len(saved) != len(chains) || len(warmup) != len(chains) {
		return nil, fmt.Errorf("fit reports %d saved and %d warm-up entries for %d chains",
			len(saved), len(warmup), len(chains))
	}
	ndraws := make([]int, len(chains))
	for c := range chains {
		ndraws[c] = saved[c] - warmup[c]
		if ndraws[c] < 0 {
			return nil, fmt.Errorf("chain %d: warm-up %d exceeds saved rows %d",
				c, warmup[c], saved[c])
		}
		if ndraws[c] != ndraws[0] {
			return nil, fmt.Errorf("%w: chain 0 has %d, chain %d has %d",
				ErrRaggedChains, ndraws[0], c, ndraws[c])
		}
	}

	// Advisory only: inference irregularities must never abort extraction.
	dtypes := InferDtypes(fit)

	params := fit.Parameters()
	shapes := make(map[string][]int, len(params))
	declared := make([]string, 0, len(params))
	for _, p := range params {
		shapes[p.Name] = p.Shape
		declared = append(declared, p.Name)
	}

	vk := groupFlatNames(fit.FlatNames())

	selection := variables
	if selection == nil {
		selection = declared
	}
	resolved := make([]string, 0, len(selection))
	for _, name := range selection {
		shape, isDeclared := shapes[name]
		if !isDeclared {
			if _, hasKeys := vk.keys[name]; !hasKeys {
				return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
			}
		}
		// Zero-size declared shapes produce no columns; skip them.
		if isDeclared && zeroSize(shape) {
			continue
		}
		if slices.Contains(ignore, name) {
			continue
		}
		resolved = append(resolved, name)
	}

	out := &Draws{
		Names:  make([]string, 0, len(resolved)),
		Arrays: make(map[string]*Array, len(resolved)),
	}
	for _, name := range resolved {
		keys := vk.keys[name]
		if len(keys) == 0 {
			keys = []string{name}
		}
		shape := shapes[name]

		perChain := make([]*Array, len(chains))
		for c, chain := range chains {
			cols := make([][]float64, len(keys))
			for i, key := range keys {
				col, ok := chain.Columns[key]
				if !ok {
					return nil, fmt.Errorf("chain %d has no column %q for variable %q",
						c, key, name)
				}
				cols[i] = col
			}
			ary, err := FromColumns(cols, ndraws[c], shape)
			if err != nil {
				return nil, errutil.Wrap(fmt.Sprintf("reconstructing %q in chain %d", name, c), err)
			}
			perChain[c] = ary
		}

		stacked, err := StackChains(perChain)
		if err != nil {
			return nil, errutil.Wrap(fmt.Sprintf("stacking chains for %q", name), err)
		}
		if dtype, ok := dtypes[name]; ok {
			stacked = stacked.AsType(dtype)
		}
		out.Names = append(out.Names, name)
		out.Arrays[name] = stacked
	}
	return out, nil
}

// ExtractVariable extracts a single variable. It is shorthand for a
// one-element selection.
func ExtractVariable(fit Fit, name string) (*Array, error) {
	draws, err := ExtractDraws(fit, []string{name}, nil)
	if err != nil {
		return nil, err
	}
	ary := draws.Get(name)
	if ary == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	return ary, nil
}

func zeroSize(shape []int) bool {
	for _, dim := range shape {
		if dim == 0 {
			return true
		}
	}
	return false
}
