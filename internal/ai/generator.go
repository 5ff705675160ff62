// Package ai generates quiz questions with hosted language models.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"studyquiz/internal/quizparse"
)

// ErrGenerationUnavailable means no backend produced a response.
var ErrGenerationUnavailable = errors.New("question generation unavailable")

// DefaultAttemptTimeout bounds a single backend call.
const DefaultAttemptTimeout = 30 * time.Second

// Backend is one text-generation model.
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generator tries its backends in order and parses the first non-empty answer.
type Generator struct {
	Backends       []Backend
	AttemptTimeout time.Duration
}

// NewGenerator returns a Generator over backends, tried in the given order.
func NewGenerator(timeout time.Duration, backends ...Backend) *Generator {
	return &Generator{Backends: backends, AttemptTimeout: timeout}
}

// GenerateQuestions asks for count questions about text. The reply goes through
// quizparse.Parse, so it is held to the same rules as uploaded past papers. A single pass
// over the backends is made.
func (g *Generator) GenerateQuestions(ctx context.Context, text string, count int) ([]quizparse.Candidate, error) {
	if g == nil || len(g.Backends) == 0 {
		return nil, fmt.Errorf("no ai backend configured: %w", ErrGenerationUnavailable)
	}
	if count <= 0 {
		count = 10
	}
	prompt := BuildPrompt(text, count)

	reply, err := g.firstResponse(ctx, prompt)
	if err != nil {
		return nil, err
	}
	cands := quizparse.Parse(reply)
	log.Printf("INFO: AI reply parsed into %d of %d requested questions", len(cands), count)
	return cands, nil
}

func (g *Generator) firstResponse(ctx context.Context, prompt string) (string, error) {
	timeout := g.AttemptTimeout
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}

	var errs []error
	for _, b := range g.Backends {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		actx, cancel := context.WithTimeout(ctx, timeout)
		reply, err := b.Generate(actx, prompt)
		cancel()
		if err != nil {
			log.Printf("WARN: AI backend %s failed: %v", b.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
			continue
		}
		if strings.TrimSpace(reply) == "" {
			log.Printf("WARN: AI backend %s returned an empty response", b.Name())
			errs = append(errs, fmt.Errorf("%s: empty response", b.Name()))
			continue
		}
		log.Printf("INFO: AI backend %s answered (%d bytes)", b.Name(), len(reply))
		return reply, nil
	}
	return "", fmt.Errorf("%w: %w", ErrGenerationUnavailable, errors.Join(errs...))
}
