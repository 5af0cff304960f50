package checkers

import "bytes"

var svgFixups = []struct{ from, to []byte }{
	{[]byte("fill: 000000"), []byte("fill:#000000")},
	{[]byte("fill:000000"), []byte("fill:#000000")},
	{[]byte("stroke: 000000"), []byte("stroke:#000000")},
	{[]byte("fill: #"), []byte("fill:#")},
	{[]byte("stroke: #"), []byte("stroke:#")},
	{[]byte("stroke-width: "), []byte("stroke-width:")},
}

// sanitizeSVG normalizes inline style values that oksvg fails to parse.
func sanitizeSVG(svg []byte) []byte {
	out := svg
	for _, f := range svgFixups {
		out = bytes.ReplaceAll(out, f.from, f.to)
	}
	return out
}
