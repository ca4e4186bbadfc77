// Command wasm is a light WebAssembly wrapper around the zinc and filter
// packages, adapted from the teacher's web/sqldef-wasm.go: same
// js.FuncOf/js.Global().Set shape, generalized from a single DDL-diff
// entry point to the Haystack core's two pure operations (grid
// round-trip, filter evaluation). You don't need to include this in your
// own build; it exists to prove the core is callable from a browser
// without any I/O of its own.
package main

import (
	"strings"
	"syscall/js"

	"github.com/glennpierce/go-haystack/filter"
	"github.com/glennpierce/go-haystack/fixtures"
	"github.com/glennpierce/go-haystack/util"
	"github.com/glennpierce/go-haystack/zinc"
)

// parseZinc(src, callback) calls callback(null, canonicalZinc), or
// callback(errorMessage, null) on a parse failure.
func parseZinc(this js.Value, args []js.Value) interface{} {
	src := args[0].String()
	callback := args[1]

	grid, err := zinc.Parse(src)
	if err != nil {
		callback.Invoke(err.Error(), js.Null())
		return nil
	}
	callback.Invoke(js.Null(), grid.ToZinc())
	return nil
}

// evalFilter(filterExpr, datasetYAML, callback) -> newline-separated
// matching refs in Zinc form (@id).
func evalFilter(this js.Value, args []js.Value) interface{} {
	expr := args[0].String()
	datasetYAML := args[1].String()
	callback := args[2]

	dataset, err := fixtures.ParseRefTagsYAML([]byte(datasetYAML))
	if err != nil {
		callback.Invoke(err.Error(), js.Null())
		return nil
	}

	matched, err := filter.Eval(expr, dataset)
	if err != nil {
		callback.Invoke(err.Error(), js.Null())
		return nil
	}

	ids := util.TransformSlice(matched, func(e filter.RefTag) string { return e.Ref.ToZinc() })
	callback.Invoke(js.Null(), strings.Join(ids, "\n"))
	return nil
}

func main() {
	c := make(chan bool)
	js.Global().Set("_HSZINC_PARSE", js.FuncOf(parseZinc))
	js.Global().Set("_HSZINC_FILTER", js.FuncOf(evalFilter))
	<-c
}
