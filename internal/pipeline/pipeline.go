// Package pipeline runs the full regularization pass over a drawing:
// classify and regularize every polyline, test it for symmetry, then detect
// and close gaps.
//
// Polylines are independent of each other, so the work is spread over a
// bounded pool of goroutines. Each job writes only to its own slot of the
// result, which keeps the output in input traversal order regardless of the
// order in which jobs finish.
package pipeline

import (
	"context"
	"io"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/shape-tools-mcp/internal/detection"
	"github.com/ironsheep/shape-tools-mcp/internal/geometry"
	"github.com/ironsheep/shape-tools-mcp/internal/regularize"
)

// Source locates a flattened polyline in the input collection.
type Source struct {
	PathIndex     int     `json:"path_index"`
	PolylineIndex int     `json:"polyline_index"`
	PathID        float64 `json:"path_id"`
}

// Report describes what happened to one polyline.
type Report struct {
	// Index is the position of the polyline in the flattened output.
	Index int `json:"index"`

	Source Source `json:"source"`

	Classification detection.Classification `json:"classification"`

	// Symmetry is informational only; it never changes the output geometry.
	Symmetry detection.Symmetry `json:"symmetry"`

	// Gaps are the edge indices, in the regularized polyline, that were
	// found to be discontinuities.
	Gaps []int `json:"gaps,omitempty"`

	// Inserted is the number of vertices added by curve completion.
	Inserted int `json:"inserted"`

	InputVertices  int `json:"input_vertices"`
	OutputVertices int `json:"output_vertices"`

	// Err records a per-polyline failure, such as too few points for curve
	// completion. The polyline is still present in the output.
	Err string `json:"error,omitempty"`
}

// Result is the output of Process.
type Result struct {
	// Output holds one single-polyline path per input polyline, in
	// flattened input order.
	Output geometry.PathCollection `json:"output"`

	// Reports is parallel to Output.
	Reports []Report `json:"reports"`
}

// Pipeline holds the processing configuration. It carries no per-run state
// and is safe for concurrent use.
type Pipeline struct {
	workers    int
	classifier *detection.Classifier
	logger     *log.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers bounds the number of polylines processed at once. Values
// below 1 select runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n < 1 {
			n = runtime.NumCPU()
		}
		p.workers = n
	}
}

// WithClassifier replaces the default classification chain.
func WithClassifier(c *detection.Classifier) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.classifier = c
		}
	}
}

// WithLogger sets the logger used for per-polyline diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a pipeline. By default it classifies with DefaultRules on
// one worker per CPU and discards log output.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		workers:    runtime.NumCPU(),
		classifier: detection.NewClassifier(),
		logger:     log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process regularizes every polyline of coll. The input is not modified.
//
// Per-polyline failures are recorded in the matching Report and never abort
// the run. The only error returned is the context's, if it is cancelled
// before all polylines are done.
func (p *Pipeline) Process(ctx context.Context, coll geometry.PathCollection) (*Result, error) {
	sources := Sources(coll)
	polylines := coll.Flatten()

	out := make([]geometry.Polyline, len(polylines))
	reports := make([]Report, len(polylines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range polylines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i], reports[i] = p.processOne(polylines[i])
			reports[i].Index = i
			reports[i].Source = sources[i]
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		Output:  geometry.Singletons(out),
		Reports: reports,
	}, nil
}

// processOne runs every stage on a single polyline.
func (p *Pipeline) processOne(in geometry.Polyline) (geometry.Polyline, Report) {
	rep := Report{InputVertices: len(in)}

	rep.Classification = p.classifier.Classify(in)
	regular := regularize.Regularize(in, rep.Classification)

	rep.Symmetry = detection.DetectSymmetry(regular)

	final := regular
	if gaps := detection.FindGaps(regular); len(gaps) > 0 {
		rep.Gaps = gaps
		completed, err := regularize.Complete(regular, gaps)
		if err != nil {
			p.logger.Printf("curve completion skipped (%d vertices, %d gaps): %v", len(regular), len(gaps), err)
			rep.Err = err.Error()
		} else {
			final = completed
			rep.Inserted = len(completed) - len(regular)
		}
	}

	rep.OutputVertices = len(final)
	return final, rep
}

// Sources locates every polyline of coll, in the order of coll.Flatten().
func Sources(coll geometry.PathCollection) []Source {
	var sources []Source
	for pi, path := range coll {
		for li := range path.Polylines {
			sources = append(sources, Source{PathIndex: pi, PolylineIndex: li, PathID: path.ID})
		}
	}
	return sources
}
