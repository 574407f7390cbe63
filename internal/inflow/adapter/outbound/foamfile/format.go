package foamfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
)

// Header is the FoamFile dictionary written at the top of a list file.
type Header struct {
	Class  string
	Object string
	// Average is written before the list for vectorAverageField files.
	Average *domain.Vector
}

// WriteVectors writes vecs as a foamFile list with the given header.
func WriteVectors(w io.Writer, h Header, vecs []domain.Vector) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "FoamFile")
	fmt.Fprintln(bw, "{")
	fmt.Fprintln(bw, "    version     2.0;")
	fmt.Fprintln(bw, "    format      ascii;")
	fmt.Fprintf(bw, "    class       %s;\n", h.Class)
	fmt.Fprintf(bw, "    object      %s;\n", h.Object)
	fmt.Fprintln(bw, "}")
	fmt.Fprintln(bw)

	if h.Average != nil {
		fmt.Fprintln(bw, "// Average")
		fmt.Fprintln(bw, formatVector(*h.Average))
		fmt.Fprintln(bw)
	}

	fmt.Fprintln(bw, len(vecs))
	fmt.Fprintln(bw, "(")
	for _, v := range vecs {
		fmt.Fprintln(bw, formatVector(v))
	}
	fmt.Fprintln(bw, ")")

	return bw.Flush()
}

// Average returns the component-wise mean of vecs.
func Average(vecs []domain.Vector) domain.Vector {
	var sum domain.Vector
	if len(vecs) == 0 {
		return sum
	}
	for _, v := range vecs {
		for k := range v {
			sum[k] += v[k]
		}
	}
	n := float64(len(vecs))
	return domain.Vector{sum[0] / n, sum[1] / n, sum[2] / n}
}

func formatVector(v domain.Vector) string {
	return "(" + strconv.FormatFloat(v[0], 'g', -1, 64) + " " +
		strconv.FormatFloat(v[1], 'g', -1, 64) + " " +
		strconv.FormatFloat(v[2], 'g', -1, 64) + ")"
}
