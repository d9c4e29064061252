package feedback

import (
	"fmt"
	"strings"

	"coursehub/backend/internal/model"
)

// Task describes the writing task a draft answers.
type Task struct {
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
}

const promptTemplate = `You are a concise academic writing tutor. Provide brief feedback (3-4 sentences max) on this student's outline.

FOCUS ONLY ON: Does the student accurately cover all the key points from the source text? Are the main ideas identified correctly?

Do NOT evaluate: writing style, grammar, sentence structure, or how ideas are organized/progressed.

Task: %s
Instructions: %s

Student's response:
%s

Provide constructive, specific feedback on key point coverage and accuracy only.`

// BuildPrompt returns the messages for a first feedback round on content.
func BuildPrompt(task Task, content string) []model.ChatMessage {
	return []model.ChatMessage{{
		Role:    model.RoleUser,
		Content: fmt.Sprintf(promptTemplate, task.Title, task.Instructions, strings.TrimSpace(content)),
	}}
}
