package hdf5store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	h5 "github.com/scigolib/hdf5"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrCorrupt         = errors.New("inconsistent hdf5 database")
	ErrNotPrepared     = errors.New("write before prepare")
)

// dataset is one float64 array to be stored under name with the given shape.
type dataset struct {
	name string
	dims []uint64
	data []float64
}

// File access goes through these so buffering and layout can be tested
// without touching the HDF5 library.
var (
	readDatasets  = readHDF5
	writeDatasets = writeHDF5
)

func readHDF5(path string, names ...string) (map[string][]float64, error) {
	f, err := h5.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	found := make(map[string]*h5.Dataset)
	f.Walk(func(p string, obj h5.Object) {
		if ds, ok := obj.(*h5.Dataset); ok {
			found[strings.Trim(p, "/")] = ds
		}
	})

	out := make(map[string][]float64, len(names))
	for _, name := range names {
		ds, ok := found[strings.Trim(name, "/")]
		if !ok {
			return nil, fmt.Errorf("%w: %s in %s", ErrDatasetNotFound, name, path)
		}
		data, err := ds.Read()
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset %s: %w", name, err)
		}
		out[name] = data
	}
	return out, nil
}

// writeHDF5 writes sets into path+".tmp" and renames it over path, so a
// failed write never replaces an existing file.
func writeHDF5(path string, sets []dataset) error {
	tmp := path + ".tmp"
	if err := writeHDF5File(tmp, sets); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename %s: %w", tmp, err)
	}
	return nil
}

func writeHDF5File(path string, sets []dataset) error {
	fw, err := h5.CreateForWrite(path, h5.CreateTruncate)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	for _, s := range sets {
		dw, err := fw.CreateDataset("/"+strings.Trim(s.name, "/"), h5.Float64, s.dims)
		if err != nil {
			_ = fw.Close()
			return fmt.Errorf("failed to create dataset %s: %w", s.name, err)
		}
		if err := dw.Write(s.data); err != nil {
			_ = fw.Close()
			return fmt.Errorf("failed to write dataset %s: %w", s.name, err)
		}
	}
	return fw.Close()
}
