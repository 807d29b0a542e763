// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package llmflow

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strings"
	"unicode"

	"github.com/vana-ai/vana/types"
)

// templateVariableRe matches {var} style placeholders in instruction templates.
var templateVariableRe = regexp.MustCompile(`{+[^{}]*}+`)

// InstructionsLLMRequestProcessor handles instructions and global instructions
// for the LLM flow.
//
// Instruction templates may reference session state with {key} placeholders,
// optional values with {key?}, and artifact content with {artifact.name}.
type InstructionsLLMRequestProcessor struct{}

var _ types.LLMRequestProcessor = (*InstructionsLLMRequestProcessor)(nil)

// Run implements [types.LLMRequestProcessor].
func (p *InstructionsLLMRequestProcessor) Run(ctx context.Context, ictx *types.InvocationContext, request *types.LLMRequest) iter.Seq2[*types.Event, error] {
	return func(yield func(*types.Event, error) bool) {
		llmAgent, ok := ictx.Agent.AsLLMAgent()
		if !ok {
			return
		}

		// The global instruction of the root agent applies to the whole tree.
		if rootAgent, ok := llmAgent.RootAgent().AsLLMAgent(); ok {
			if globalInstruction, found := rootAgent.CanonicalGlobalInstruction(types.NewReadOnlyContext(ictx)); found {
				request.AppendInstructions(p.populateValues(ctx, globalInstruction, ictx))
			}
		}

		if instruction := llmAgent.CanonicalInstructions(types.NewReadOnlyContext(ictx)); instruction != "" {
			request.AppendInstructions(p.populateValues(ctx, instruction, ictx))
		}
	}
}

// populateValues substitutes state and artifact values into the instruction
// template. Placeholders that cannot be resolved are left as-is, except
// optional ones which are replaced with the empty string.
func (p *InstructionsLLMRequestProcessor) populateValues(ctx context.Context, instructionTemplate string, ictx *types.InvocationContext) string {
	var sb strings.Builder
	lastEnd := 0
	for _, loc := range templateVariableRe.FindAllStringIndex(instructionTemplate, -1) {
		sb.WriteString(instructionTemplate[lastEnd:loc[0]])

		match := instructionTemplate[loc[0]:loc[1]]
		replacement, err := p.resolveVariable(ctx, match, ictx)
		if err != nil {
			sb.WriteString(match)
		} else {
			sb.WriteString(replacement)
		}
		lastEnd = loc[1]
	}
	sb.WriteString(instructionTemplate[lastEnd:])

	return sb.String()
}

func (p *InstructionsLLMRequestProcessor) resolveVariable(ctx context.Context, match string, ictx *types.InvocationContext) (string, error) {
	varName := strings.TrimSpace(strings.Trim(match, "{}"))

	optional := false
	if strings.HasSuffix(varName, "?") {
		optional = true
		varName = strings.TrimSuffix(varName, "?")
	}

	if filename, ok := strings.CutPrefix(varName, "artifact."); ok {
		if ictx.ArtifactService == nil {
			return "", errors.New("artifact service is not initialized")
		}
		artifact, err := ictx.ArtifactService.LoadArtifact(ctx, ictx.Session.AppName(), ictx.Session.UserID(), ictx.Session.ID(), filename, -1)
		if err != nil {
			return "", err
		}
		if artifact == nil {
			return "", fmt.Errorf("artifact %s not found", filename)
		}
		if artifact.Text != "" {
			return artifact.Text, nil
		}
		return fmt.Sprintf("%v", artifact), nil
	}

	if !p.isValidStateName(varName) {
		// Not a state reference; keep the braces verbatim.
		return match, nil
	}

	if val, ok := ictx.Session.State()[varName]; ok {
		return fmt.Sprintf("%v", val), nil
	}
	if optional {
		return "", nil
	}

	return "", fmt.Errorf("context variable not found: %s", varName)
}

// isValidStateName checks if the variable name is a valid state name.
//
// Valid state is either:
//   - a valid identifier
//   - <valid prefix>:<valid identifier>
func (p *InstructionsLLMRequestProcessor) isValidStateName(varName string) bool {
	parts := strings.SplitN(varName, ":", 2)
	switch len(parts) {
	case 1:
		return isIdentifier(varName)
	case 2:
		switch parts[0] + ":" {
		case types.AppPrefix, types.UserPrefix, types.TempPrefix:
			return isIdentifier(parts[1])
		}
	}
	return false
}

func isIdentifier(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
