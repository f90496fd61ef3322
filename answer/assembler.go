package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/groundwork/ai"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
	"github.com/tmc/langchaingo/prompts"
)

// Preamble heads every context string.
const Preamble = "Here are some relevant context information, use where applicable:"

// DefaultPersona opens the prompt.
const DefaultPersona = "You are a versatile AI companion and assistant."

const promptTemplate = `{{.persona}}

Here is the conversation history: {{.chatlog}}

Here is some context: {{.context}}

Answer the question below.
Question: {{.question}}

Answer:
`

// Retriever returns the corpus items nearest to a query.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]core.RetrievalResult, error)
}

// Answer is the outcome of one question.
type Answer struct {
	Question string
	Text     string
	Context  string
	Results  []core.RetrievalResult
}

// Assembler builds prompts from retrieved context and transcript history.
type Assembler struct {
	retriever    Retriever
	transcript   storage.TranscriptRepository
	answerer     ai.Generator
	template     prompts.PromptTemplate
	persona      string
	k            int
	historyTurns int
	logger       *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler) error

// WithK sets how many corpus items are retrieved. Default 1.
func WithK(k int) Option {
	return func(a *Assembler) error {
		if k < 1 {
			return fmt.Errorf("k must be at least 1: %d", k)
		}
		a.k = k
		return nil
	}
}

// WithHistoryTurns bounds how many transcript turns are included in the
// prompt. Zero includes the entire transcript. Default 200.
func WithHistoryTurns(n int) Option {
	return func(a *Assembler) error {
		if n < 0 {
			return fmt.Errorf("history turns must not be negative: %d", n)
		}
		a.historyTurns = n
		return nil
	}
}

// WithPersona replaces the opening line of the prompt.
func WithPersona(persona string) Option {
	return func(a *Assembler) error {
		a.persona = persona
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAssembler creates an Assembler.
func NewAssembler(retriever Retriever, transcript storage.TranscriptRepository, answerer ai.Generator, opts ...Option) (*Assembler, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if transcript == nil {
		return nil, ErrTranscriptRepositoryRequired
	}
	if answerer == nil {
		return nil, ErrAnswererRequired
	}
	a := &Assembler{
		retriever:    retriever,
		transcript:   transcript,
		answerer:     answerer,
		template:     prompts.NewPromptTemplate(promptTemplate, []string{"persona", "chatlog", "context", "question"}),
		persona:      DefaultPersona,
		k:            1,
		historyTurns: 200,
		logger:       slog.Default().With("component", "answer"),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// BuildContext retrieves the nearest items for question and joins their
// non-empty payloads under Preamble. A retrieval failure yields just the
// preamble.
func (a *Assembler) BuildContext(ctx context.Context, question string) (string, []core.RetrievalResult) {
	results, err := a.retriever.Search(ctx, question, a.k)
	if err != nil {
		a.logger.Warn("retrieval failed, answering without context", "err", err)
		return Preamble, nil
	}
	return FormatContext(results), results
}

// FormatContext joins the non-empty payloads of results under Preamble.
func FormatContext(results []core.RetrievalResult) string {
	var b strings.Builder
	b.WriteString(Preamble)
	for _, r := range results {
		if r.Document == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(r.Document)
	}
	return b.String()
}

// History returns the transcript window joined by newlines.
func (a *Assembler) History(ctx context.Context) (string, error) {
	turns, err := a.transcript.GetRecentTurns(ctx, a.historyTurns)
	if err != nil {
		return "", err
	}
	texts := make([]string, len(turns))
	for i, t := range turns {
		texts[i] = t.Text
	}
	return strings.Join(texts, "\n"), nil
}

// Prompt renders the full prompt for question.
func (a *Assembler) Prompt(ctx context.Context, question string) (string, string, []core.RetrievalResult, error) {
	history, err := a.History(ctx)
	if err != nil {
		return "", "", nil, err
	}
	grounding, results := a.BuildContext(ctx, question)
	prompt, err := a.template.Format(map[string]any{
		"persona":  a.persona,
		"chatlog":  history,
		"context":  grounding,
		"question": question,
	})
	if err != nil {
		return "", "", nil, err
	}
	return prompt, grounding, results, nil
}

// Ask answers question and appends the question and answer to the
// transcript. onChunk, if non-nil, receives the answer as it streams.
func (a *Assembler) Ask(ctx context.Context, question string, onChunk func(string)) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	asked := time.Now().UTC()

	prompt, grounding, results, err := a.Prompt(ctx, question)
	if err != nil {
		return nil, err
	}

	text, err := a.answerer.Generate(ctx, prompt, onChunk)
	if err != nil {
		a.logger.Error("error generating answer", "err", err)
		return nil, err
	}

	_, err = a.transcript.AppendTurns(ctx,
		&core.ChatTurn{Speaker: core.SpeakerTypeHuman, Text: question, Timestamp: asked},
		&core.ChatTurn{Speaker: core.SpeakerTypeAI, Text: text, Timestamp: time.Now().UTC()},
	)
	if err != nil {
		a.logger.Warn("error recording transcript", "err", err)
	}

	return &Answer{Question: question, Text: text, Context: grounding, Results: results}, nil
}
