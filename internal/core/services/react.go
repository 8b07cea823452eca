package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/prism-labs/memogen/internal/core/domain"
	"github.com/prism-labs/memogen/internal/core/ports/driven"
	"github.com/prism-labs/memogen/internal/logger"
)

// loopState is the orchestrator's position in the reasoning loop.
type loopState int

const (
	statePlanning loopState = iota
	stateActing
	stateObserving
	stateFinalizing
	stateDone
)

// actionFinal is the pseudo-action that ends the loop.
const actionFinal = "final_answer"

// observationLimit truncates tool output fed back into the prompt.
const observationLimit = 1000

// reasoningStep is one Thought/Action/Observation triple, or the
// closing Thought/Final Answer pair.
type reasoningStep struct {
	thought     string
	action      string
	input       map[string]any
	observation string
}

// reactLoop drives the bounded reasoning loop: the model plans an
// action, the orchestrator executes it, and the observation feeds the
// next plan. The loop ends when the model answers or the step budget
// runs out; exhaustion forces a final answer from what was gathered.
type reactLoop struct {
	llm         driven.LLMService
	tools       map[string]driven.Tool
	maxSteps    int
	toolTimeout time.Duration
}

// run executes the loop for one question. It returns the final answer,
// the number of steps taken, and whether the budget forced the answer.
func (l *reactLoop) run(ctx context.Context, question string) (string, int, bool, error) {
	var steps []reasoningStep
	state := statePlanning

	for state != stateDone {
		select {
		case <-ctx.Done():
			return "", len(steps), false, ctx.Err()
		default:
		}

		switch state {
		case statePlanning:
			if len(steps) >= l.maxSteps {
				state = stateFinalizing
				continue
			}

			response, err := l.llm.Complete(ctx, l.prompt(question, steps, false), driven.CompleteOptions{
				Temperature: 0,
				StopWords:   []string{"Observation:"},
			})
			if err != nil {
				return "", len(steps), false, fmt.Errorf("planning step %d: %w", len(steps)+1, err)
			}

			step := parseReactResponse(response)
			steps = append(steps, step)
			if step.action == actionFinal {
				logger.Info("Reasoning complete in %d steps", len(steps))
				return step.observation, len(steps), false, nil
			}
			state = stateActing

		case stateActing:
			current := &steps[len(steps)-1]
			observation, err := l.invokeTool(ctx, current.action, current.input)
			if err != nil {
				// Failures feed back to the model as observations so
				// it can replan; they never abort the loop.
				logger.Warn("Step %d: %v", len(steps), err)
				observation = "Error: " + err.Error()
			}
			current.observation = observation
			state = stateObserving

		case stateObserving:
			logger.Debug("Step %d: %s -> %s", len(steps),
				steps[len(steps)-1].action, truncate(steps[len(steps)-1].observation, 100))
			state = statePlanning

		case stateFinalizing:
			// Budget exhausted: force an answer from the evidence so
			// far and tag the result low-confidence.
			logger.Warn("Step budget exhausted after %d steps, forcing final answer", len(steps))

			response, err := l.llm.Complete(ctx, l.prompt(question, steps, true), driven.CompleteOptions{
				Temperature: 0,
			})
			if err != nil {
				return "", len(steps), true, fmt.Errorf("forced finalisation: %w", err)
			}

			step := parseReactResponse(response)
			return step.observation, len(steps), true, nil
		}
	}

	return "", len(steps), false, nil
}

// invokeTool dispatches one action through the registry. Failures of
// any kind are reported as domain.ErrToolFailure for the caller to
// fold into an observation.
func (l *reactLoop) invokeTool(ctx context.Context, name string, input map[string]any) (string, error) {
	tool, ok := l.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown tool %q", domain.ErrToolFailure, name)
	}

	toolCtx, cancel := context.WithTimeout(ctx, l.toolTimeout)
	defer cancel()

	result, err := tool.Invoke(toolCtx, input)
	if err != nil {
		return "", fmt.Errorf("executing %s: %w: %v", name, domain.ErrToolFailure, err)
	}
	return truncate(result, observationLimit), nil
}

// prompt builds the reasoning prompt with the step history appended.
func (l *reactLoop) prompt(question string, steps []reasoningStep, force bool) string {
	var sb strings.Builder

	sb.WriteString("You are a financial analyst assistant. Answer the question by thinking step-by-step and using tools when needed.\n\n")
	sb.WriteString("Available Tools:\n")
	sb.WriteString(l.toolDescriptions())
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\n\nInstructions:\n")
	sb.WriteString("1. Think about what information you need\n")
	sb.WriteString("2. Use tools to gather information\n")
	sb.WriteString("3. When you have enough information, provide the final answer\n\n")
	sb.WriteString("Format your response EXACTLY like this:\n")
	sb.WriteString("Thought: [your reasoning about what to do next]\n")
	sb.WriteString("Action: [tool_name]\n")
	sb.WriteString("Action Input: {\"param\": \"value\"}\n\n")
	sb.WriteString("OR when you have the final answer:\n")
	sb.WriteString("Thought: [your final reasoning]\n")
	sb.WriteString("Final Answer: [your complete answer]\n")

	for _, step := range steps {
		sb.WriteString("\nThought: ")
		sb.WriteString(step.thought)
		sb.WriteString("\n")
		if step.action != "" && step.action != actionFinal {
			sb.WriteString("Action: ")
			sb.WriteString(step.action)
			sb.WriteString("\n")
			input, _ := json.Marshal(step.input)
			sb.WriteString("Action Input: ")
			sb.Write(input)
			sb.WriteString("\nObservation: ")
			sb.WriteString(step.observation)
			sb.WriteString("\n")
		}
	}

	if force {
		sb.WriteString("\nYou must now provide a Final Answer based on what you've learned.")
	}

	return sb.String()
}

// toolDescriptions lists the registry for the prompt, sorted by name
// so prompts are stable.
func (l *reactLoop) toolDescriptions() string {
	names := make([]string, 0, len(l.tools))
	for name := range l.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("  - %s: %s", name, l.tools[name].Description())
	}
	return strings.Join(lines, "\n")
}

var (
	thoughtRe = regexp.MustCompile(`(?s)Thought:\s*(.+?)(?:\n(?:Action|Final Answer)|$)`)
	finalRe   = regexp.MustCompile(`(?s)Final Answer:\s*(.+)`)
	actionRe  = regexp.MustCompile(`Action:\s*(\w+)`)
	inputRe   = regexp.MustCompile(`(?s)Action Input:\s*(\{.+?\})`)
)

// parseReactResponse extracts a reasoning step from model output.
// Output that matches neither an action nor a final answer is treated
// as the final answer, never discarded.
func parseReactResponse(response string) reasoningStep {
	step := reasoningStep{}

	if m := thoughtRe.FindStringSubmatch(response); m != nil {
		step.thought = strings.TrimSpace(m[1])
	}

	if m := finalRe.FindStringSubmatch(response); m != nil {
		step.action = actionFinal
		step.observation = strings.TrimSpace(m[1])
		return step
	}

	if m := actionRe.FindStringSubmatch(response); m != nil {
		step.action = strings.ToLower(m[1])
		step.input = map[string]any{}
		if im := inputRe.FindStringSubmatch(response); im != nil {
			if err := json.Unmarshal([]byte(im[1]), &step.input); err != nil {
				logger.Debug("Malformed action input, invoking with no arguments: %v", err)
			}
		}
		return step
	}

	step.action = actionFinal
	step.observation = strings.TrimSpace(response)
	return step
}

// truncate shortens s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
