package ai

import (
	"context"
	"fmt"
	"strings"

	"go-pos-ledger/internal/apperrors"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// maxToolRounds bounds how many times one question may bounce between the
// model and the tools.
const maxToolRounds = 5

const systemPrompt = `You are the assistant of a small shop's point-of-sale and bookkeeping system. Today is %s.

RULES:
1. READ: If the user asks for the PRICE, STOCK or DETAILS of a product, call 'check_inventory' and read the list. Do NOT say you cannot get the price.
2. REPORTS: For sales, expenses, profit, tax, customer purchases or inventory value over a period, call 'build_report' with dates in YYYY-MM-DD. Work out relative periods ("last week") from today's date.
3. OVERVIEW: For all-time totals, low stock or best sellers, call 'dashboard_summary'.
4. You cannot change data. If asked to, explain that changes are made in the app.
5. Quote amounts exactly as the tools format them.`

// Agent answers admin questions with Gemini, letting the model call the
// read-only tools in Toolbox.
type Agent struct {
	client *genai.Client
	model  string
	tools  *Toolbox
}

func NewAgent(ctx context.Context, apiKey, model string, tools *Toolbox) (*Agent, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}
	return &Agent{client: client, model: model, tools: tools}, nil
}

func (a *Agent) Close() error {
	return a.client.Close()
}

// Ask runs one question to completion and returns the model's text reply.
func (a *Agent) Ask(ctx context.Context, message string) (string, error) {
	model := a.client.GenerativeModel(a.model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(fmt.Sprintf(systemPrompt, a.tools.now().In(a.tools.loc).Format("2006-01-02"))))
	model.Tools = []*genai.Tool{{FunctionDeclarations: a.tools.Declarations()}}

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", errors.Wrapf(apperrors.ErrUpstream, "gemini: %v", err)
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return replyText(resp), nil
		}

		parts := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			log.WithFields(log.Fields{"tool": call.Name, "round": round}).Debug("assistant tool call")
			out, err := a.tools.Call(ctx, call.Name, call.Args)
			if err != nil {
				return "", errors.WithMessagef(err, "tool %s", call.Name)
			}
			parts = append(parts, genai.FunctionResponse{Name: call.Name, Response: out})
		}

		resp, err = session.SendMessage(ctx, parts...)
		if err != nil {
			return "", errors.Wrapf(apperrors.ErrUpstream, "gemini: %v", err)
		}
	}
	return "", errors.Wrapf(apperrors.ErrUpstream, "assistant still calling tools after %d rounds", maxToolRounds)
}

func parts(resp *genai.GenerateContentResponse) []genai.Part {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	for _, part := range parts(resp) {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func replyText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, part := range parts(resp) {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "I completed the action."
	}
	return b.String()
}

// Unavailable is the assistant used when no API key is configured.
type Unavailable struct{}

func (Unavailable) Ask(context.Context, string) (string, error) {
	return "", errors.Wrap(apperrors.ErrUpstream, "assistant is not configured (GEMINI_API_KEY is empty)")
}
