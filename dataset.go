package mcmc

import (
	"fmt"
	"strconv"
	"time"
)

// Version is the library version stamped into dataset attributes.
const Version = "0.1.0"

// Dimension names shared by every draw-shaped array.
const (
	DimChain = "chain"
	DimDraw  = "draw"
)

// DataArray is a labeled array: values plus one dimension name per axis and
// coordinate labels per dimension.
type DataArray struct {
	Values *Array              `json:"values"`
	Dims   []string            `json:"dims"`
	Coords map[string][]string `json:"coords"`
}

// Dataset is an ordered collection of labeled arrays with shared attributes.
type Dataset struct {
	// VarNames lists variables in insertion order; Vars is keyed by name.
	VarNames []string              `json:"var_names"`
	Vars     map[string]*DataArray `json:"vars"`
	Attrs    map[string]string     `json:"attrs"`
}

// NewDataset returns an empty dataset stamped with creation attributes.
func NewDataset(attrs map[string]string) *Dataset {
	merged := makeAttrs()
	for k, v := range attrs {
		merged[k] = v
	}
	return &Dataset{
		Vars:  make(map[string]*DataArray),
		Attrs: merged,
	}
}

// Add inserts a labeled array under name, preserving insertion order.
// Adding an existing name replaces its array without duplicating the name.
func (d *Dataset) Add(name string, da *DataArray) {
	if _, ok := d.Vars[name]; !ok {
		d.VarNames = append(d.VarNames, name)
	}
	d.Vars[name] = da
}

// Get returns the labeled array for name, or nil if absent.
func (d *Dataset) Get(name string) *DataArray {
	return d.Vars[name]
}

// makeAttrs builds the default attribute set recorded on every dataset.
func makeAttrs() map[string]string {
	return map[string]string{
		"created_at":                 time.Now().UTC().Format(time.RFC3339),
		"inference_library":          "stan",
		"conversion_library":         "mcmc",
		"conversion_library_version": Version,
	}
}

// dimsCoords resolves dimension names and coordinate labels for an array.
//
// shape is the full array shape. leading supplies fixed names for leading
// axes (chain and draw for draw-shaped arrays, empty for observed data);
// the remaining axes take user-supplied dims for this variable, defaulting
// to "<name>_dim_<i>". Coordinate labels come from userCoords when present
// with matching length, otherwise 0..n-1.
func dimsCoords(name string, shape []int, leading []string, userDims []string,
	userCoords map[string][]string) ([]string, map[string][]string) {
	dims := make([]string, 0, len(shape))
	dims = append(dims, leading...)
	for i := len(leading); i < len(shape); i++ {
		varAxis := i - len(leading)
		if varAxis < len(userDims) {
			dims = append(dims, userDims[varAxis])
		} else {
			dims = append(dims, fmt.Sprintf("%s_dim_%d", name, varAxis))
		}
	}

	coords := make(map[string][]string, len(dims))
	for i, dim := range dims {
		if labels, ok := userCoords[dim]; ok && len(labels) == shape[i] {
			coords[dim] = append([]string(nil), labels...)
			continue
		}
		labels := make([]string, shape[i])
		for j := range labels {
			labels[j] = strconv.Itoa(j)
		}
		coords[dim] = labels
	}
	return dims, coords
}

// DrawsToDataset labels every extracted array with chain and draw leading
// dimensions plus per-variable dims and coords, mirroring the extraction
// order in the dataset.
//
// dims maps a variable name to the names of its trailing axes; coords maps
// a dimension name to its labels. Both may be nil.
func DrawsToDataset(draws *Draws, dims map[string][]string,
	coords map[string][]string) *Dataset {
	ds := NewDataset(nil)
	for _, name := range draws.Names {
		ary := draws.Arrays[name]
		d, c := dimsCoords(name, ary.Shape, []string{DimChain, DimDraw}, dims[name], coords)
		ds.Add(name, &DataArray{Values: ary, Dims: d, Coords: c})
	}
	return ds
}
