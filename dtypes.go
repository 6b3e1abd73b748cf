package mcmc

import "github.com/scigolib/mcmc/internal/stantext"

// InferDtypes classifies which declared parameters are integer-valued by
// lexically scanning the fit's model source.
//
// The scan strips comments and string literals, keeps only the text after
// the last "generated quantities" block header, and collects identifiers
// declared with the int keyword there. Candidates that are not declared
// parameters of the fit are discarded.
//
// The result is advisory: only integer names are reported, absence means
// the sampler-native floating representation, and any malformed or missing
// model source degrades to an empty table rather than an error.
func InferDtypes(fit Fit) map[string]DType {
	dtypes := make(map[string]DType)

	code := fit.ModelCode()
	if code == "" {
		return dtypes
	}

	code = stantext.StripComments(code)
	code = stantext.GeneratedQuantities(code)

	declared := make(map[string]struct{})
	for _, p := range fit.Parameters() {
		declared[p.Name] = struct{}{}
	}

	for _, name := range stantext.IntDeclarations(code) {
		if _, ok := declared[name]; ok {
			dtypes[name] = Int64
		}
	}
	return dtypes
}
