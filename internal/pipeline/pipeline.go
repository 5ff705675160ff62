// Package pipeline turns a stored document into quiz questions: text extraction, the
// structured parser, and the AI generator when the document has no parseable questions.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"studyquiz/internal/models"
	"studyquiz/internal/quizparse"
)

// ErrNoQuestionsExtracted means neither the parser nor the AI generator produced questions.
var ErrNoQuestionsExtracted = errors.New("no questions could be generated, try a file with clearer structure or notes")

const (
	MethodStructured = "structured"
	MethodAI         = "ai"
)

// TextExtractor turns document bytes into text.
type TextExtractor interface {
	ExtractText(ctx context.Context, buf []byte, mimeType string) (string, error)
}

// QuestionGenerator writes questions about free text.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, text string, count int) ([]quizparse.Candidate, error)
}

// Result is the outcome of one generation run.
type Result struct {
	Questions []models.Question
	Method    string
	// LowConfidence counts questions whose answer defaulted to the first option.
	LowConfidence int
}

// Pipeline wires extraction to question generation. AI may be nil to disable the
// generator tier.
type Pipeline struct {
	Extractor TextExtractor
	AI        QuestionGenerator
}

// New returns a Pipeline.
func New(ex TextExtractor, gen QuestionGenerator) *Pipeline {
	return &Pipeline{Extractor: ex, AI: gen}
}

// Generate produces questions for doc. numQuestions is only a hint for the AI tier; a
// document that already contains structured questions yields all of them.
func (p *Pipeline) Generate(ctx context.Context, doc models.RawDocument, numQuestions int) (*Result, error) {
	text, err := p.Extractor.ExtractText(ctx, doc.Data, doc.MimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", doc.Name, err)
	}
	log.Printf("INFO: Extracted %d bytes of text from %s", len(text), doc.Name)

	if cands := quizparse.Parse(text); len(cands) > 0 {
		return result(cands, MethodStructured), nil
	}
	log.Printf("INFO: No structured questions in %s", doc.Name)

	if p.AI == nil {
		return nil, ErrNoQuestionsExtracted
	}
	cands, err := p.AI.GenerateQuestions(ctx, text, numQuestions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoQuestionsExtracted, err)
	}
	if len(cands) == 0 {
		return nil, ErrNoQuestionsExtracted
	}
	return result(cands, MethodAI), nil
}

func result(cands []quizparse.Candidate, method string) *Result {
	qs, low := quizparse.ToQuestions(cands)
	return &Result{Questions: qs, Method: method, LowConfidence: low}
}
