package pathgen

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/roadmap-agent/internal/logger"
	"github.com/yungbote/roadmap-agent/internal/services"
	"github.com/yungbote/roadmap-agent/internal/types"
)

var tracer = otel.Tracer("github.com/yungbote/roadmap-agent/internal/pathgen")

// Options tunes one generator. EnrichConcurrency 1 enriches modules one at
// a time in order; higher values fan modules out with a bounded worker
// group.
type Options struct {
	EnrichConcurrency int
}

// Generator runs the four-stage pipeline for a single request. It is built
// per request because the progress reporter is bound to one trace id.
type Generator struct {
	log      *logger.Logger
	ai       services.AIClient
	reporter *services.ProgressReporter

	enrichConcurrency int
}

func NewGenerator(log *logger.Logger, ai services.AIClient, reporter *services.ProgressReporter, opts Options) *Generator {
	if opts.EnrichConcurrency < 1 {
		opts.EnrichConcurrency = 1
	}
	return &Generator{
		log:               log.With("component", "LearningPathGenerator"),
		ai:                ai,
		reporter:          reporter,
		enrichConcurrency: opts.EnrichConcurrency,
	}
}

type stage struct {
	name string
	run  func(ctx context.Context, state *State) error
}

// Run executes analyze -> generate -> enrich -> finalize, strictly in order.
// The first stage error aborts the run; the partial state is discarded by
// the caller.
func (g *Generator) Run(ctx context.Context, state *State) (path *types.LearningPath, err error) {
	ctx, span := tracer.Start(ctx, "learningpath.generate")
	span.SetAttributes(
		attribute.String("learningpath.topic", state.Topic),
		attribute.String("learningpath.trace_id", state.TraceID),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	stages := []stage{
		{"analyze_background", g.analyzeBackground},
		{"generate_curriculum", g.generateCurriculum},
		{"enrich_resources", g.enrichResources},
		{"finalize_path", g.finalizePath},
	}
	for _, st := range stages {
		if err := g.runStage(ctx, st, state); err != nil {
			return nil, err
		}
	}
	if state.FinalPath == nil {
		return nil, fmt.Errorf("pipeline finished without a final path")
	}
	return state.FinalPath, nil
}

func (g *Generator) runStage(ctx context.Context, st stage, state *State) error {
	ctx, span := tracer.Start(ctx, "learningpath.stage."+st.name)
	defer span.End()
	if err := st.run(ctx, state); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%s: %w", st.name, err)
	}
	return nil
}
