package service

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/Harshitk-cp/storybible/internal/domain"
	"github.com/Harshitk-cp/storybible/internal/llm"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultMaxPanels        = 6
	DefaultPanelConcurrency = 3
	sentenceSplitMinRunes   = 200
	allPanelsFailedMessage  = "All panels failed to generate"
	noPanelTextMessage      = "No text provided"
)

// PanelService turns a text selection into illustrated comic panels, one
// image request per scene chunk.
type PanelService struct {
	llmClient   domain.LLMClient
	maxPanels   int
	concurrency int64
	logger      *zap.Logger
}

func NewPanelService(llmClient domain.LLMClient, maxPanels, concurrency int, logger *zap.Logger) *PanelService {
	if maxPanels <= 0 {
		maxPanels = DefaultMaxPanels
	}
	if concurrency <= 0 {
		concurrency = DefaultPanelConcurrency
	}
	return &PanelService{
		llmClient:   llmClient,
		maxPanels:   maxPanels,
		concurrency: int64(concurrency),
		logger:      logger,
	}
}

// Generate illustrates up to requested panels. requested <= 0 uses the
// service default and larger values are clamped to it. Individual panel
// failures and blank input are reported inside the batch, not as an error.
func (s *PanelService) Generate(ctx context.Context, text string, requested int) (*domain.PanelBatch, error) {
	if strings.TrimSpace(text) == "" {
		return &domain.PanelBatch{
			Status:  domain.PanelStatusError,
			Panels:  []domain.Panel{},
			Message: noPanelTextMessage,
		}, nil
	}
	if s.llmClient == nil {
		return nil, ErrLLMUnavailable
	}
	if requested <= 0 || requested > s.maxPanels {
		requested = s.maxPanels
	}

	scenes := SplitScenes(text, requested)
	panels := make([]domain.Panel, len(scenes))
	sem := semaphore.NewWeighted(s.concurrency)

	var wg sync.WaitGroup
	for i, scene := range scenes {
		wg.Add(1)
		go func(i int, scene string) {
			defer wg.Done()
			panels[i] = s.generatePanel(ctx, sem, i+1, scene)
		}(i, scene)
	}
	wg.Wait()

	failed := 0
	for _, p := range panels {
		if p.Status == domain.PanelStatusError {
			failed++
		}
	}

	s.logger.Info("panels generated",
		zap.Int("requested", requested),
		zap.Int("scenes", len(scenes)),
		zap.Int("failed", failed))

	if failed == len(panels) {
		return &domain.PanelBatch{
			Status:       domain.PanelStatusError,
			Panels:       []domain.Panel{},
			FailedPanels: failed,
			Message:      allPanelsFailedMessage,
		}, nil
	}

	status := domain.PanelStatusSuccess
	if failed > 0 {
		status = domain.PanelStatusPartial
	}
	return &domain.PanelBatch{
		Status:       status,
		Panels:       panels,
		PanelCount:   len(panels) - failed,
		FailedPanels: failed,
	}, nil
}

func (s *PanelService) generatePanel(ctx context.Context, sem *semaphore.Weighted, number int, scene string) domain.Panel {
	panel := domain.Panel{Number: number, SourceText: scene}

	if err := sem.Acquire(ctx, 1); err != nil {
		panel.Status = domain.PanelStatusError
		panel.Message = err.Error()
		return panel
	}
	defer sem.Release(1)

	panel.PromptUsed = llm.ComicPrompt(scene)
	img, err := s.llmClient.GenerateImage(ctx, panel.PromptUsed)
	if err != nil {
		s.logger.Warn("panel generation failed", zap.Int("panel", number), zap.Error(err))
		panel.Status = domain.PanelStatusError
		panel.Message = err.Error()
		return panel
	}
	panel.ImageBase64 = img
	panel.Status = domain.PanelStatusSuccess
	return panel
}

// SplitScenes breaks a selection into at most maxScenes chunks. It splits on
// blank lines, then single newlines, then sentence groups for long unbroken
// text. Chunks past maxScenes are dropped.
func SplitScenes(text string, maxScenes int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxScenes < 1 {
		maxScenes = 1
	}

	chunks := splitNonEmpty(text, "\n\n")
	if len(chunks) <= 1 {
		chunks = splitNonEmpty(text, "\n")
	}
	if len(chunks) <= 1 && len([]rune(text)) > sentenceSplitMinRunes {
		chunks = groupSentences(splitSentences(text), maxScenes)
	}
	if len(chunks) == 0 {
		return []string{text}
	}
	if len(chunks) > maxScenes {
		chunks = chunks[:maxScenes]
	}
	return chunks
}

// groupSentences joins adjacent sentences so a long paragraph yields a few
// panels of two or three sentences each.
func groupSentences(sentences []string, maxScenes int) []string {
	if len(sentences) == 0 {
		return nil
	}
	groupSize := max(1, len(sentences)/min(maxScenes, max(2, len(sentences)/2)))
	var out []string
	for i := 0; i < len(sentences); i += groupSize {
		end := min(i+groupSize, len(sentences))
		out = append(out, strings.Join(sentences[i:end], " "))
	}
	return out
}

func splitNonEmpty(text, sep string) []string {
	var out []string
	for _, p := range strings.Split(text, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences cuts after '.', '!' or '?' when whitespace follows.
func splitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '!', '?':
			if unicode.IsSpace(runes[i+1]) {
				if p := strings.TrimSpace(string(runes[start : i+1])); p != "" {
					out = append(out, p)
				}
				start = i + 1
			}
		}
	}
	if p := strings.TrimSpace(string(runes[start:])); p != "" {
		out = append(out, p)
	}
	return out
}
