package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"go.uber.org/mock/gomock"
	"gopkg.in/yaml.v3"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/domain"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
	"github.com/anthanhphan/go-inflow-generator/internal/inflow/service/mocks"
)

// recordingWriter keeps every written sample in memory.
type recordingWriter struct {
	mu        sync.Mutex
	resumable bool
	prepared  int
	closed    int
	samples   map[int]port.Sample
}

func newRecordingWriter(resumable bool) *recordingWriter {
	return &recordingWriter{resumable: resumable, samples: map[int]port.Sample{}}
}

func (w *recordingWriter) Kind() string { return "memory" }
func (w *recordingWriter) Path() string { return "/tmp/inflow" }

func (w *recordingWriter) Prepare(_ context.Context, _ *domain.StructuredPoints, steps int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prepared = steps
	return nil
}

func (w *recordingWriter) Write(_ context.Context, s port.Sample) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.samples[s.Position] = s
	return nil
}

func (w *recordingWriter) Resumable() bool { return w.resumable }

func (w *recordingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed++
	return nil
}

func (w *recordingWriter) positions() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]int, 0, len(w.samples))
	for p := range w.samples {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// meanOnlyReader returns n samples that all equal the mean profile, so the
// fluctuations vanish and the output is the rescaled mean.
func meanOnlyReader(t *testing.T, n int) *memReader {
	t.Helper()
	prec := grid(precYs, spanZs)
	row := map[float64]int{}
	for i, y := range precYs {
		row[y] = i
	}
	field := fieldOf(t, prec, func(y, _ float64) domain.Vector {
		return domain.Vector{meanUX[row[y]], meanUY[row[y]], 0}
	})
	fields := make([]*domain.VectorField, n)
	for i := range fields {
		fields[i] = field
	}
	return newMemReader(prec, fields...)
}

func threeSteps() domain.TimeRange {
	return domain.TimeRange{T0: 0, TEnd: 0.02, Dt: 0.01, Precision: 2}
}

func newTestGenerator(cfg GenerateConfig, reader port.SampleReader, writer port.FieldWriter, opts ...GeneratorOption) *GeneratorService {
	cfg.Setup = identitySetup()
	return NewGeneratorService(cfg, staticGeometry{points: grid(inflYs, spanZs)}, reader, writer, opts...)
}

func TestGeneratorService_Generate(t *testing.T) {
	dir := t.TempDir()
	writer := newRecordingWriter(false)
	svc := newTestGenerator(GenerateConfig{Times: threeSteps(), Workers: 2, ManifestDir: dir}, meanOnlyReader(t, 3), writer)

	summary, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if summary.Steps != 3 || summary.Skipped != 0 {
		t.Errorf("expected 3 steps and none skipped, got %d/%d", summary.Steps, summary.Skipped)
	}
	if summary.RowsInside != 5 || summary.Gamma != 1 {
		t.Errorf("expected 5 rows inside and gamma 1, got %d/%v", summary.RowsInside, summary.Gamma)
	}
	if summary.Points != len(inflYs)*len(spanZs) {
		t.Errorf("expected %d points, got %d", len(inflYs)*len(spanZs), summary.Points)
	}
	if summary.Generator != MethodLund || summary.RunID == "" || summary.RunKey == "" {
		t.Errorf("summary is missing identifiers: %+v", summary)
	}
	if writer.prepared != 3 || writer.closed != 1 {
		t.Errorf("expected prepare(3) and one close, got %d/%d", writer.prepared, writer.closed)
	}

	wantLabels := []string{"0", "0.01", "0.02"}
	if got := writer.positions(); len(got) != 3 {
		t.Fatalf("expected 3 written positions, got %v", got)
	}
	for pos, label := range wantLabels {
		s := writer.samples[pos]
		if s.Label != label {
			t.Errorf("position %d: expected label %q, got %q", pos, label, s.Label)
		}
		for i := range inflYs {
			want := meanUX[min(i, len(meanUX)-1)]
			for j := range spanZs {
				u := s.Field.At(i, j)
				assertClose(t, fmt.Sprintf("pos %d ux(%d,%d)", pos, i, j), want, u[0])
				assertClose(t, fmt.Sprintf("pos %d uz(%d,%d)", pos, i, j), 0, u[2])
			}
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	var manifest domain.RunSummary
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("manifest is not valid yaml: %v", err)
	}
	if manifest.RunID != summary.RunID || manifest.Steps != 3 {
		t.Errorf("manifest does not match summary: %+v", manifest)
	}
}

func TestGeneratorService_Interpolation(t *testing.T) {
	writer := newRecordingWriter(false)
	cfg := GenerateConfig{Method: MethodInterpolation, Times: threeSteps(), Workers: 2}
	cfg.Setup = identitySetup()
	cfg.Setup.Inflow.U0 = 2
	svc := NewGeneratorService(cfg, staticGeometry{points: grid(inflYs, spanZs)}, meanOnlyReader(t, 3), writer)

	summary, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if summary.Generator != MethodInterpolation || summary.Steps != 3 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.RowsInside != 0 || summary.Gamma != 0 {
		t.Errorf("expected no Lund parameters, got %d/%v", summary.RowsInside, summary.Gamma)
	}

	// Velocities double with U0; rows above the precursor take its top row.
	for pos := 0; pos < 3; pos++ {
		s := writer.samples[pos]
		for i := range inflYs {
			k := min(i, len(meanUX)-1)
			for j := range spanZs {
				u := s.Field.At(i, j)
				assertClose(t, fmt.Sprintf("pos %d ux(%d,%d)", pos, i, j), 2*meanUX[k], u[0])
				assertClose(t, fmt.Sprintf("pos %d uy(%d,%d)", pos, i, j), 2*meanUY[k], u[1])
			}
		}
	}
}

func TestGeneratorService_MeanProfileFile(t *testing.T) {
	writer := newRecordingWriter(false)
	svc := newTestGenerator(GenerateConfig{Times: threeSteps(), MeanProfilePath: writeProfileFile(t)}, meanOnlyReader(t, 3), writer)
	if _, err := svc.Generate(context.Background()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	assertClose(t, "edge ux", meanUX[4], writer.samples[2].Field.UX.At(4, 0))
}

func TestGeneratorService_Checkpoint(t *testing.T) {
	type mockSetup func(store *mocks.MockCheckpointStore)

	tests := []struct {
		name      string
		resumable bool
		setup     mockSetup
		written   []int
		skipped   int
	}{
		{
			name:      "SkipsCompleted",
			resumable: true,
			setup: func(store *mocks.MockCheckpointStore) {
				// 7 belongs to a longer earlier run and is ignored.
				store.EXPECT().Completed(gomock.Any(), gomock.Any()).Return([]int{0, 2, 7}, nil)
				store.EXPECT().MarkCompleted(gomock.Any(), gomock.Any(), 1).Return(nil)
			},
			written: []int{1},
			skipped: 2,
		},
		{
			name:      "RecordFailureIsNotFatal",
			resumable: true,
			setup: func(store *mocks.MockCheckpointStore) {
				store.EXPECT().Completed(gomock.Any(), gomock.Any()).Return(nil, nil)
				store.EXPECT().MarkCompleted(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("journal full")).Times(3)
			},
			written: []int{0, 1, 2},
		},
		{
			name:      "NotResumableIgnoresStore",
			resumable: false,
			setup:     func(*mocks.MockCheckpointStore) {},
			written:   []int{0, 1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mocks.NewMockCheckpointStore(ctrl)
			tt.setup(store)

			writer := newRecordingWriter(tt.resumable)
			svc := newTestGenerator(GenerateConfig{Times: threeSteps(), Workers: 3}, meanOnlyReader(t, 3), writer, WithCheckpoint(store))

			summary, err := svc.Generate(context.Background())
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if summary.Skipped != tt.skipped {
				t.Errorf("expected %d skipped, got %d", tt.skipped, summary.Skipped)
			}
			got := writer.positions()
			if fmt.Sprint(got) != fmt.Sprint(tt.written) {
				t.Errorf("expected positions %v, got %v", tt.written, got)
			}
		})
	}
}

func TestGeneratorService_CheckpointKeyIsStable(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCheckpointStore(ctrl)

	var keys []string
	store.EXPECT().Completed(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, key string) ([]int, error) {
		keys = append(keys, key)
		return []int{0, 1, 2}, nil
	}).Times(2)

	for i := 0; i < 2; i++ {
		svc := newTestGenerator(GenerateConfig{Times: threeSteps()}, meanOnlyReader(t, 3), newRecordingWriter(true), WithCheckpoint(store))
		if _, err := svc.Generate(context.Background()); err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
	}
	if keys[0] != keys[1] {
		t.Errorf("expected identical run keys, got %s and %s", keys[0], keys[1])
	}
}

func TestGeneratorService_Errors(t *testing.T) {
	type mockSetup func(writer *mocks.MockFieldWriter)

	diskFull := errors.New("disk full")
	tests := []struct {
		name        string
		method      string
		times       domain.TimeRange
		readerErr   map[int]error
		setup       mockSetup
		wantErr     error
		errContains string
	}{
		{
			name:    "InvalidTimeRange",
			times:   domain.TimeRange{T0: 1, TEnd: 0, Dt: 0.01},
			setup:   func(*mocks.MockFieldWriter) {},
			wantErr: domain.ErrInvalidTimeRange,
		},
		{
			name:    "NotEnoughSamples",
			times:   domain.TimeRange{T0: 0, TEnd: 0.04, Dt: 0.01, Precision: 2},
			setup:   func(*mocks.MockFieldWriter) {},
			wantErr: ErrNotEnoughSamples,
		},
		{
			name:    "UnknownMethod",
			method:  "spectral",
			times:   threeSteps(),
			setup:   func(*mocks.MockFieldWriter) {},
			wantErr: ErrUnknownMethod,
		},
		{
			name:  "PrepareFailure",
			times: threeSteps(),
			setup: func(writer *mocks.MockFieldWriter) {
				writer.EXPECT().Prepare(gomock.Any(), gomock.Any(), 3).Return(diskFull)
				writer.EXPECT().Close().Return(nil)
			},
			wantErr:     diskFull,
			errContains: "failed to prepare writer",
		},
		{
			name:  "WriteFailure",
			times: threeSteps(),
			setup: func(writer *mocks.MockFieldWriter) {
				writer.EXPECT().Prepare(gomock.Any(), gomock.Any(), 3).Return(nil)
				writer.EXPECT().Write(gomock.Any(), gomock.Any()).Return(diskFull).MinTimes(1).MaxTimes(3)
				writer.EXPECT().Close().Return(nil)
			},
			wantErr:     diskFull,
			errContains: "failed to write time",
		},
		{
			name:      "ReadFailure",
			times:     threeSteps(),
			readerErr: map[int]error{1: port.ErrFieldNotSampled},
			setup: func(writer *mocks.MockFieldWriter) {
				writer.EXPECT().Prepare(gomock.Any(), gomock.Any(), 3).Return(nil)
				writer.EXPECT().Write(gomock.Any(), gomock.Any()).Return(nil).MaxTimes(2)
				writer.EXPECT().Close().Return(nil)
			},
			wantErr:     port.ErrFieldNotSampled,
			errContains: "position 1",
		},
		{
			name:  "CloseFailure",
			times: threeSteps(),
			setup: func(writer *mocks.MockFieldWriter) {
				writer.EXPECT().Prepare(gomock.Any(), gomock.Any(), 3).Return(nil)
				writer.EXPECT().Write(gomock.Any(), gomock.Any()).Return(nil).Times(3)
				writer.EXPECT().Close().Return(diskFull)
			},
			wantErr:     diskFull,
			errContains: "failed to close writer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			writer := mocks.NewMockFieldWriter(ctrl)
			writer.EXPECT().Kind().Return("mock").AnyTimes()
			writer.EXPECT().Path().Return("/tmp/mock").AnyTimes()
			writer.EXPECT().Resumable().Return(false).AnyTimes()
			tt.setup(writer)

			reader := meanOnlyReader(t, 3)
			for pos, err := range tt.readerErr {
				reader.err[pos] = err
			}
			// The mean comes from a file so read failures only hit generation.
			path := writeProfileFile(t)

			svc := newTestGenerator(GenerateConfig{Method: tt.method, Times: tt.times, MeanProfilePath: path}, reader, writer)
			_, err := svc.Generate(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("expected error containing %q, got %q", tt.errContains, err.Error())
			}
		})
	}
}

func writeProfileFile(t *testing.T) string {
	t.Helper()
	profile := domain.NewMeanProfile(len(precYs))
	copy(profile.Y, precYs)
	copy(profile.UX, meanUX)
	copy(profile.UY, meanUY)

	path := filepath.Join(t.TempDir(), "profile.dat")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if err := NewStatsService(1).WriteProfile(f, profile); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunKey(t *testing.T) {
	points := grid(inflYs, spanZs)
	base := RunKey(MethodLund, threeSteps(), "/case", points)

	if base != RunKey(MethodLund, threeSteps(), "/case", grid(inflYs, spanZs)) {
		t.Error("expected equal keys for equal inputs")
	}
	if len(base) != 32 {
		t.Errorf("expected a 128-bit hex key, got %q", base)
	}

	longer := threeSteps()
	longer.TEnd = 0.05
	moved := grid([]float64{0, 0.25, 0.5, 0.75, 1.0, 1.6}, spanZs)
	for name, key := range map[string]string{
		"method":     RunKey(MethodInterpolation, threeSteps(), "/case", points),
		"time range": RunKey(MethodLund, longer, "/case", points),
		"output":     RunKey(MethodLund, threeSteps(), "/other", points),
		"geometry":   RunKey(MethodLund, threeSteps(), "/case", moved),
	} {
		if key == base {
			t.Errorf("expected a different key when the %s changes", name)
		}
	}
}
