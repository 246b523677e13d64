package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
)

// LLMGenerator asks an OpenAI-compatible chat endpoint to assemble outfits.
// GLM is tried first, then DeepSeek; when both fail the random generator
// answers instead.
type LLMGenerator struct {
	cfg      config.GenerationConfig
	client   *http.Client
	fallback ProposalGenerator
	now      func() time.Time
}

func NewLLMGenerator(cfg config.GenerationConfig) *LLMGenerator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LLMGenerator{
		cfg:      cfg,
		client:   &http.Client{Timeout: timeout},
		fallback: NewRandomGenerator(),
		now:      time.Now,
	}
}

type llmProvider struct {
	name, url, key, model string
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type outfitReply struct {
	Outfits []struct {
		Name    string   `json:"name"`
		ItemIDs []string `json:"item_ids"`
	} `json:"outfits"`
}

type promptItem struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Brand *string   `json:"brand,omitempty"`
}

func (g *LLMGenerator) ProposeCreations(ctx context.Context, userID uuid.UUID, style models.Style, items []models.WardrobeItem) ([]Proposal, error) {
	providers := []llmProvider{
		{"glm", g.cfg.GLMAPIURL, g.cfg.GLMAPIKey, g.cfg.GLMModel},
		{"deepseek", g.cfg.DeepSeekAPIURL, g.cfg.DeepSeekAPIKey, g.cfg.DeepSeekModel},
	}
	for _, p := range providers {
		if p.key == "" {
			continue
		}
		proposals, err := g.ask(ctx, p, style, items)
		if err == nil && len(proposals) > 0 {
			return proposals, nil
		}
		slog.Warn("outfit provider failed", "provider", p.name, "error", err)
	}
	return g.fallback.ProposeCreations(ctx, userID, style, items)
}

func (g *LLMGenerator) ask(ctx context.Context, p llmProvider, style models.Style, items []models.WardrobeItem) ([]Proposal, error) {
	catalog := make([]promptItem, len(items))
	known := make(map[uuid.UUID]bool, len(items))
	for i, it := range items {
		catalog[i] = promptItem{ID: it.ID, Name: it.Name, Color: it.Color, Brand: it.Brand}
		known[it.ID] = true
	}
	itemsJSON, err := json.Marshal(catalog)
	if err != nil {
		return nil, err
	}

	system := fmt.Sprintf(`You are a personal stylist. Build exactly %d outfits in the "%s" style from the user's wardrobe.
Each outfit uses 1 to %d items, referenced by id. Give every outfit a short, distinct name.
Return ONLY valid JSON: {"outfits": [{"name": "...", "item_ids": ["..."]}]}`,
		proposalSlots, style.DisplayName, maxItemsPerProposal)

	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: "Wardrobe: " + string(itemsJSON)},
		},
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.key)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned %d: %s", resp.StatusCode, string(raw))
	}

	var chat chatResponse
	if err := json.Unmarshal(raw, &chat); err != nil {
		return nil, err
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	var reply outfitReply
	if err := json.Unmarshal([]byte(stripFence(chat.Choices[0].Message.Content)), &reply); err != nil {
		return nil, fmt.Errorf("failed to parse outfit reply: %w", err)
	}
	return g.proposalsFrom(reply, known), nil
}

// proposalsFrom keeps at most proposalSlots outfits and drops ids that are
// not in the user's wardrobe.
func (g *LLMGenerator) proposalsFrom(reply outfitReply, known map[uuid.UUID]bool) []Proposal {
	stamp := g.now().UnixMilli()
	var out []Proposal
	for _, o := range reply.Outfits {
		if len(out) == proposalSlots {
			break
		}
		var ids []uuid.UUID
		seen := map[uuid.UUID]bool{}
		for _, raw := range o.ItemIDs {
			id, err := uuid.Parse(raw)
			if err != nil || !known[id] || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			if len(ids) == maxItemsPerProposal {
				break
			}
		}
		n := len(out) + 1
		name := strings.TrimSpace(o.Name)
		if name == "" {
			name = placeholderName(n)
		} else {
			name = fmt.Sprintf("%s (%s)", truncateRunes(name, 100), uuid.NewString()[:8])
		}
		out = append(out, Proposal{
			Name:      name,
			ImagePath: fmt.Sprintf("/mock/creation-%d-%d.png", stamp, n),
			ItemIDs:   ids,
		})
	}
	return out
}

func stripFence(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
