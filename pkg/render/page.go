// pkg/render/page.go - Paged decomposition of feature sequences
package render

import (
	"github.com/paulmach/orb"
	"go.uber.org/multierr"
)

// Page selects a window of features. A Limit of zero or less uses the
// decomposer's MaxFeatures.
type Page struct {
	Offset int
	Limit  int
}

// Result is the outcome of decomposing one page of features.
type Result struct {
	Primitives []Primitive `json:"primitives"`
	Total      int         `json:"total"`       // Features available
	Drawn      int         `json:"drawn"`       // Features visited in this page
	NextOffset int         `json:"next_offset"` // Offset of the next page
	Skipped    int         `json:"skipped"`     // Geometries skipped as unsupported or too deep
}

// More reports whether features remain past this page.
func (r *Result) More() bool {
	return r.NextOffset < r.Total
}

// DecomposeFeatures decomposes the features selected by page. Primitive
// Feature indexes refer to positions in features.
func (d *Decomposer) DecomposeFeatures(features []orb.Geometry, page Page) (*Result, error) {
	total := len(features)

	limit := page.Limit
	if limit <= 0 {
		limit = d.opts.MaxFeatures
	}
	offset := min(max(page.Offset, 0), total)
	end := min(offset+limit, total)

	result := &Result{
		Primitives: make([]Primitive, 0, end-offset),
		Total:      total,
		Drawn:      end - offset,
		NextOffset: end,
	}

	var errs error
	for i := offset; i < end; i++ {
		prims, err := d.decompose(features[i], i)
		result.Primitives = append(result.Primitives, prims...)
		errs = multierr.Append(errs, err)
	}
	result.Skipped = len(multierr.Errors(errs))

	if result.More() {
		d.logger.Info("feature cap reached", "drawn", result.Drawn, "total", total, "next_offset", end)
	}

	return result, errs
}
