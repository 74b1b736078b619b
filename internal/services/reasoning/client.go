package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"fec-audit-backend/internal/models"
	"fec-audit-backend/internal/services/audit"
	"fec-audit-backend/internal/services/ledger"
)

const systemPrompt = `You are a senior financial auditor reviewing a sample of French general-ledger (FEC) entries for qualitative anomalies: unusual labels, round amounts, miscellaneous-operations bookings, entries inconsistent with the account used.

Respond ONLY with a JSON array (possibly empty). Each element must be an object with exactly these fields:
- "cycle": one of "general", "treasury", "sales", "purchases", "misc_operations"
- "type": short classification of the issue
- "criticality": one of "moderate", "high", "critical"
- "score": confidence between 50 and 100
- "amount": financial impact in the ledger currency, 0 if not monetary
- "account_num": account number of the entry concerned, or ""
- "label": entry label concerned, or ""
- "description": one factual sentence describing the anomaly
- "recommendation": one sentence of audit follow-up

Do not invent entries that are not in the sample. No text outside the JSON array.`

// Client calls the Anthropic messages API to obtain a qualitative review of
// a ledger sample. It implements audit.Reviewer.
type Client struct {
	api      anthropic.Client
	model    string
	timeout  time.Duration
	validate *validator.Validate
	log      *logrus.Logger
}

func NewClient(apiKey, model string, timeout time.Duration, log *logrus.Logger) *Client {
	return &Client{
		api:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:    model,
		timeout:  timeout,
		validate: validator.New(),
		log:      log,
	}
}

func (c *Client) Review(ctx context.Context, sample []ledger.Entry) ([]audit.Draft, error) {
	if len(sample) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(sample)
	if err != nil {
		return nil, fmt.Errorf("encoding ledger sample: %w", err)
	}
	userPrompt := fmt.Sprintf("Here are %d sampled ledger entries:\n%s", len(sample), payload)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	message, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic call: %w", err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, errors.New("no text content in model response")
	}
	c.log.WithFields(logrus.Fields{
		"model":        c.model,
		"sample_size":  len(sample),
		"response_len": len(text),
	}).Info("qualitative review response received")

	return parseDrafts(text, c.validate)
}

// draftRecord is the schema the model is instructed to emit. Every field is
// validated before the record is trusted; the model is a collaborator, not
// an oracle.
type draftRecord struct {
	Cycle          string  `json:"cycle" validate:"required,oneof=general treasury sales purchases misc_operations"`
	Type           string  `json:"type" validate:"required"`
	Criticality    string  `json:"criticality" validate:"required,oneof=moderate high critical"`
	Score          float64 `json:"score" validate:"gte=50,lte=100"`
	Amount         float64 `json:"amount" validate:"gte=0"`
	AccountNum     string  `json:"account_num"`
	Label          string  `json:"label"`
	Description    string  `json:"description" validate:"required"`
	Recommendation string  `json:"recommendation"`
}

// parseDrafts extracts the JSON array from the raw model reply (first '[' to
// last ']'), decodes it and validates every record.
func parseDrafts(text string, validate *validator.Validate) ([]audit.Draft, error) {
	body, ok := extractJSONArray(text)
	if !ok {
		return nil, fmt.Errorf("no JSON array in model response: %.120s", text)
	}

	var records []draftRecord
	if err := json.Unmarshal([]byte(body), &records); err != nil {
		return nil, fmt.Errorf("decoding model response: %w", err)
	}

	drafts := make([]audit.Draft, 0, len(records))
	for i, rec := range records {
		if err := validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("invalid record %d in model response: %w", i, err)
		}
		drafts = append(drafts, audit.Draft{
			Cycle:          rec.Cycle,
			Type:           rec.Type,
			Criticality:    rec.Criticality,
			Score:          rec.Score,
			Amount:         rec.Amount,
			AccountNum:     rec.AccountNum,
			Label:          rec.Label,
			Description:    rec.Description,
			Recommendation: rec.Recommendation,
			Source:         models.SourceLLM,
		})
	}
	return drafts, nil
}

func extractJSONArray(s string) (string, bool) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
