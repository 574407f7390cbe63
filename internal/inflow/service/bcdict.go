package service

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
)

var ErrNoBoundaryCondition = errors.New("writer has no matching boundary condition")

// Boundary condition types read by the solver.
const (
	MappedFixedValue     = "timeVaryingMappedFixedValue"
	MappedHDF5FixedValue = "timeVaryingMappedHDF5FixedValue"
)

// BoundaryDict describes the patch entry to render.
type BoundaryDict struct {
	Patch     string
	Writer    string
	Condition domain.BoundaryCondition

	// HDF5 settings, used by the hdf5 writer only.
	HDF5FileName      string
	PointsDataset     string
	SampleTimeDataset string
	ValuesDataset     string
}

// WriteBoundaryDict renders the entry for the patch in the boundaryField of
// the velocity file.
func WriteBoundaryDict(w io.Writer, d BoundaryDict) error {
	if err := d.Condition.Validate(); err != nil {
		return err
	}

	var entries [][2]string
	switch d.Writer {
	case "ofnative":
		entries = append(entries, [2]string{"type", MappedFixedValue})
	case "hdf5":
		entries = append(entries,
			[2]string{"type", MappedHDF5FixedValue},
			[2]string{"hdf5FileName", strconv.Quote(d.HDF5FileName)},
			[2]string{"hdf5PointsDatasetName", strconv.Quote(d.PointsDataset)},
			[2]string{"hdf5SampleTimesDatasetName", strconv.Quote(d.SampleTimeDataset)},
			[2]string{"hdf5FieldValuesDatasetName", strconv.Quote(d.ValuesDataset)},
		)
	default:
		return fmt.Errorf("%w: %q", ErrNoBoundaryCondition, d.Writer)
	}

	setAverage := "off"
	if d.Condition.SetAverage {
		setAverage = "on"
	}
	o := d.Condition.Offset
	entries = append(entries,
		[2]string{"offset", fmt.Sprintf("(%s %s %s)", formatFloat(o[0]), formatFloat(o[1]), formatFloat(o[2]))},
		[2]string{"setAverage", setAverage},
		[2]string{"perturb", "0"},
	)

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, d.Patch)
	fmt.Fprintln(bw, "{")
	for _, e := range entries {
		fmt.Fprintf(bw, "    %-28s%s;\n", e[0], e[1])
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
