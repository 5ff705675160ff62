package ai

import (
	"fmt"
	"strings"
)

// MaxInputChars bounds the study text embedded in a prompt.
const MaxInputChars = 15000

// QuestionPrompt asks for questions in the layout the structured parser reads.
const QuestionPrompt = `You are writing a multiple-choice practice quiz from a student's study material.

Write exactly %d questions based only on the material below. Follow this layout exactly and write nothing else:

Question 1: <question text>
a. <option>
b. <option>
c. <option>
d. <option>
e. <option>
Answer: <letter>

Rules:
1. Number the questions from 1 and start every question with "Question N:".
2. Give four or five options labelled "a." to "e.", one per line. Every option must be between 3 and 200 characters.
3. Exactly one option is correct. Put its letter on the "Answer:" line.
4. Each question text must be at least 20 characters long.
5. Do not use markdown, bullet points, numbering other than "Question N:", or explanations.

Material:
"""
%s
"""`

// BuildPrompt embeds text, truncated to MaxInputChars runes, in QuestionPrompt.
func BuildPrompt(text string, count int) string {
	return fmt.Sprintf(QuestionPrompt, count, truncate(strings.TrimSpace(text), MaxInputChars))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
