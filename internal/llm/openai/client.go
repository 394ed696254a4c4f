package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/joseph-ayodele/contract-analyzer/internal/common"
	"github.com/joseph-ayodele/contract-analyzer/internal/llm"
)

var _ llm.Analyzer = (*Client)(nil)

// Analyze implements llm.Analyzer with a single chat/completions call. Failures are
// returned to the caller as is; there is no retry.
func (c *Client) Analyze(ctx context.Context, req llm.AnalyzeRequest) (llm.ContractAnalysis, []byte, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	if !c.configured() {
		c.logger.Error("llm.analyze.not_configured", "req_id", rid, "provider", c.cfg.Provider)
		msg := "Azure OpenAI credentials not configured. Please set AZURE_OPENAI_API_KEY and AZURE_OPENAI_ENDPOINT environment variables"
		if c.cfg.Provider == ProviderOpenAI {
			msg = "OPENAI_API_KEY is not set"
		}
		return llm.ContractAnalysis{}, nil, common.NewAppError("LLM_NOT_CONFIGURED", msg, common.ErrNotConfigured)
	}

	c.logger.Info("llm.analyze.start",
		"req_id", rid,
		"provider", c.cfg.Provider,
		"deployment", c.cfg.Deployment,
		"temp", c.cfg.Temperature,
		"text_len", len([]rune(req.Text)),
		"file", req.FileName,
	)

	schema := llm.BuildContractJSONSchema()
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: llm.BuildSystemPrompt()},
			{Role: goopenai.ChatMessageRoleUser, Content: llm.BuildUserPrompt(req)},
		},
	})
	if err != nil {
		c.logger.Error("llm.analyze.http_error",
			"req_id", rid, "error", err,
			"status", statusCode(err),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ContractAnalysis{}, nil, fmt.Errorf("%w: %s", common.ErrLLM, describe(err))
	}
	if len(resp.Choices) == 0 {
		c.logger.Error("llm.analyze.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ContractAnalysis{}, nil, fmt.Errorf("%w: no choices in response", common.ErrLLM)
	}

	content := llm.StripCodeFences(resp.Choices[0].Message.Content)
	rawContent := []byte(content)

	// Validate strictly first.
	if err := llm.ValidateJSONAgainstSchema(schema, rawContent); err != nil {
		if !c.cfg.Lenient {
			c.logger.Error("llm.analyze.schema_validation_failed",
				"req_id", rid, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return llm.ContractAnalysis{}, rawContent, fmt.Errorf("%w: schema validation failed: %v", common.ErrLLM, err)
		}
		cleaned, dropped, sErr := llm.NormalizeAnalysisJSON(rawContent, c.logger)
		if sErr != nil {
			c.logger.Error("llm.analyze.sanitize_failed",
				"req_id", rid, "error", sErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return llm.ContractAnalysis{}, rawContent, fmt.Errorf("%w: response is not valid JSON: %v", common.ErrLLM, sErr)
		}
		if vErr := llm.ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			c.logger.Error("llm.analyze.schema_validation_failed",
				"req_id", rid, "error", vErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return llm.ContractAnalysis{}, rawContent, fmt.Errorf("%w: schema validation failed: %v", common.ErrLLM, vErr)
		}
		c.logger.Warn("llm.analyze.lenient_sanitize_applied",
			"req_id", rid, "dropped", dropped,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		rawContent = cleaned
	}

	var out llm.ContractAnalysis
	if err := json.Unmarshal(rawContent, &out); err != nil {
		c.logger.Error("llm.analyze.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ContractAnalysis{}, rawContent, fmt.Errorf("%w: unmarshal analysis: %v", common.ErrLLM, err)
	}

	c.logger.Info("llm.analyze.ok",
		"req_id", rid,
		"client", out.ClientName,
		"contract_type", out.ContractType,
		"clauses", len(out.KeyClauses),
		"risks", len(out.RiskAreas),
		"products", len(out.ProductsServices),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, rawContent, nil
}

func statusCode(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// describe renders an endpoint error for display to the user.
func describe(err error) string {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.Message)
		if apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403 {
			return fmt.Sprintf("authentication failed (status %d): %s", apiErr.HTTPStatusCode, msg)
		}
		return fmt.Sprintf("endpoint returned status %d: %s", apiErr.HTTPStatusCode, msg)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Sprintf("endpoint returned status %d: %v", reqErr.HTTPStatusCode, reqErr.Err)
	}
	return err.Error()
}
