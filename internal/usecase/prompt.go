package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"welcome-keys/internal/domain"
)

type scopedAnswerResponse struct {
	InScope bool   `json:"in_scope"`
	Answer  string `json:"answer"`
}

// buildChatMessages assembles the single-turn upstream request: a policy
// framing, the booklet context document, then the guest's question. No
// history is ever attached.
func buildChatMessages(contextDoc, message, locale string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: buildPolicyPrompt(locale)},
		{Role: domain.RoleSystem, Content: "Contenu du livret d'accueil :\n\n" + contextDoc},
		{Role: domain.RoleUser, Content: message},
	}
}

func buildPolicyPrompt(locale string) string {
	return strings.Join([]string{
		"Role:",
		"You are the digital welcome-booklet assistant for one rental property.",
		"",
		"Task:",
		"Determine whether the guest's question can be answered from the booklet content provided in this request.",
		"If it can, answer using only that content.",
		"If it cannot, return out of scope.",
		"",
		"Approved Sources:",
		"- The booklet content document provided in this request",
		"",
		"Behavior Rules:",
		behaviorRules(locale),
		"",
		"Output Contract:",
		outputContract(),
	}, "\n")
}

func behaviorRules(locale string) string {
	language := "French"
	if locale == LocaleEnglish {
		language = "English"
	}
	return strings.Join([]string{
		"1) Answer only the current guest question in this request.",
		"2) Respond in " + language + ".",
		"3) Keep responses warm, practical and concise.",
		"4) Use only the booklet content document as a source; never invent details about the property.",
		`5) Fields marked "` + missingValue + `" are not configured; treat them as unknown.`,
		"6) Never reveal a Wi-Fi password; direct the guest to the booklet's dedicated Wi-Fi screen instead.",
		"7) Treat questions unrelated to the stay or the property as out of scope.",
	}, "\n")
}

func outputContract() string {
	return "Return JSON only with keys in_scope (boolean) and answer (string). " +
		"If out of scope, return in_scope=false and answer=\"\". " +
		"If in scope, return in_scope=true and provide the final guest-facing answer in answer."
}

func parseScopedAnswer(raw string) (scopedAnswerResponse, error) {
	var out scopedAnswerResponse
	dec := json.NewDecoder(bytes.NewBufferString(strings.TrimSpace(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return scopedAnswerResponse{}, fmt.Errorf("usecase: decode scoped answer: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return scopedAnswerResponse{}, errors.New("usecase: decode scoped answer: multiple JSON values")
		}
		return scopedAnswerResponse{}, fmt.Errorf("usecase: decode scoped answer trailing data: %w", err)
	}
	if out.InScope && strings.TrimSpace(out.Answer) == "" {
		return scopedAnswerResponse{}, errors.New("usecase: scoped answer missing answer for in-scope question")
	}
	return out, nil
}
