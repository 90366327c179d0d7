// Package pipeline composes request stages into a single fiber handler.
//
// Stages run in the order they are given. Each stage receives the rest of the
// chain as next; it may call next and inspect the response afterwards, or
// respond on its own without calling next, in which case no later stage runs
// while earlier stages still see the response on the way out.
package pipeline

import "github.com/gofiber/fiber/v2"

// Stage is one link in the request chain.
type Stage interface {
	Name() string
	Process(c *fiber.Ctx, next fiber.Handler) error
}

// StageFunc adapts a function to Stage.
type StageFunc struct {
	StageName string
	Fn        func(c *fiber.Ctx, next fiber.Handler) error
}

func (s StageFunc) Name() string { return s.StageName }

func (s StageFunc) Process(c *fiber.Ctx, next fiber.Handler) error {
	return s.Fn(c, next)
}

// Pipeline is an ordered, fixed list of stages.
type Pipeline struct {
	stages []Stage
}

// New builds a pipeline; nil stages are skipped.
func New(stages ...Stage) *Pipeline {
	p := &Pipeline{stages: make([]Stage, 0, len(stages))}
	for _, s := range stages {
		if s != nil {
			p.stages = append(p.stages, s)
		}
	}
	return p
}

// Names returns the stage names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Handler composes the stages so the first stage wraps all the others.
func (p *Pipeline) Handler() fiber.Handler {
	return Compose(p.stages...)
}

// Compose folds stages right-to-left. The innermost next is a no-op, so the
// last stage is expected to be terminal.
func Compose(stages ...Stage) fiber.Handler {
	next := func(*fiber.Ctx) error { return nil }
	for i := len(stages) - 1; i >= 0; i-- {
		stage, rest := stages[i], next
		next = func(c *fiber.Ctx) error {
			return stage.Process(c, rest)
		}
	}
	return next
}
