package enrich

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/oyster-ai/oyster-backend/internal/domain/course"
)

// goSafe runs fn on g, turning a panic into an ErrInternal failure of the group.
func goSafe(g *errgroup.Group, fn func() error) {
	g.Go(func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("%w: %v\n%s", ErrInternal, rec, debug.Stack())
			}
		}()
		return fn()
	})
}

// enrichOutline fans out over every section, subsection and topic. Each child
// writes only its own index so no locking is needed.
func (o *Orchestrator) enrichOutline(ctx context.Context, run *runInput, outline course.Outline) (course.EnrichedOutline, error) {
	out := course.EnrichedOutline{Sections: make([]course.EnrichedSection, len(outline.Sections))}
	var g errgroup.Group
	for i := range outline.Sections {
		i := i
		goSafe(&g, func() error {
			sec, err := o.enrichSection(ctx, run, outline.Sections[i])
			if err != nil {
				return err
			}
			out.Sections[i] = sec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return course.EnrichedOutline{}, err
	}
	return out, nil
}

func (o *Orchestrator) enrichSection(ctx context.Context, run *runInput, section course.Section) (course.EnrichedSection, error) {
	out := course.EnrichedSection{
		Title:       section.Title,
		Description: section.Description,
		Subsections: make([]course.EnrichedSubsection, len(section.Subsections)),
	}
	var g errgroup.Group
	for i := range section.Subsections {
		i := i
		goSafe(&g, func() error {
			sub, err := o.enrichSubsection(ctx, run, section.Subsections[i])
			if err != nil {
				return err
			}
			out.Subsections[i] = sub
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return course.EnrichedSection{}, err
	}
	return out, nil
}

func (o *Orchestrator) enrichSubsection(ctx context.Context, run *runInput, sub course.Subsection) (course.EnrichedSubsection, error) {
	out := course.EnrichedSubsection{
		Title:       sub.Title,
		Description: sub.Description,
		Topics:      make([]course.EnrichedTopic, len(sub.Topics)),
	}
	var g errgroup.Group
	for i := range sub.Topics {
		i := i
		goSafe(&g, func() error {
			out.Topics[i] = o.enrichTopic(ctx, run, sub.Topics[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return course.EnrichedSubsection{}, err
	}
	return out, nil
}
