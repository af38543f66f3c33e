// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
)

// =============================================================================
// Knowledge Base (Weaviate + LLM Synthesis)
// =============================================================================

const (
	defaultKnowledgeClass = "AdvisorDocument"
	retrievalLimit        = 5
)

const synthesisPrompt = `You are a helpful wealth management assistant who answers questions based on provided context.
You must only use the provided context, and cannot use your own knowledge.

### Question
%s

### Context
%s

Please provide a comprehensive and accurate response based on the context provided.`

// WeaviateKnowledgeBase implements KnowledgeBase over a Weaviate document
// store, synthesizing retrieved chunks into an answer with an OpenAI model.
//
// Description:
//
//	Query retrieves up to retrievalLimit chunks by semantic similarity,
//	then asks the model to answer from that context only. When nothing
//	relevant is stored the answer carries Informative=false so callers
//	can exclude it from fusion without inspecting the text.
//
// Thread Safety: WeaviateKnowledgeBase is safe for concurrent use.
type WeaviateKnowledgeBase struct {
	client    *weaviate.Client
	llm       llms.Model
	className string
	logger    *slog.Logger
}

// NewWeaviateKnowledgeBase connects to Weaviate at host (e.g.
// "localhost:8080") and builds the synthesis model from OPENAI_API_KEY.
func NewWeaviateKnowledgeBase(host, scheme, model string, logger *slog.Logger) (*WeaviateKnowledgeBase, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := weaviate.NewClient(weaviate.Config{Host: host, Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}
	llm, err := openai.New(openai.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("create synthesis model: %w", err)
	}
	return &WeaviateKnowledgeBase{
		client:    client,
		llm:       llm,
		className: defaultKnowledgeClass,
		logger:    logger,
	}, nil
}

// Query answers a question from stored documents.
func (kb *WeaviateKnowledgeBase) Query(ctx context.Context, question string) (KnowledgeAnswer, error) {
	chunks, sources, err := kb.retrieve(ctx, question)
	if err != nil {
		return KnowledgeAnswer{}, fmt.Errorf("knowledge retrieval: %w", err)
	}
	if len(chunks) == 0 {
		kb.logger.Info("no knowledge base matches", slog.String("question", question))
		return KnowledgeAnswer{
			Answer: fmt.Sprintf("I don't have specific information about '%s' in my knowledge base yet. "+
				"However, I can help you with general wealth management advice. Would you like me to "+
				"search for current information on this topic or provide general guidance?", question),
			Sources:        nil,
			RetrievalScore: 0.0,
			Informative:    false,
		}, nil
	}

	prompt := fmt.Sprintf(synthesisPrompt, question, strings.Join(chunks, "\n\n"))
	answer, err := llms.GenerateFromSinglePrompt(ctx, kb.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		return KnowledgeAnswer{}, fmt.Errorf("knowledge synthesis: %w", err)
	}

	kb.logger.Info("knowledge base answered",
		slog.String("question", question),
		slog.Int("chunks", len(chunks)),
	)
	return KnowledgeAnswer{
		Answer:         answer,
		Sources:        sources,
		RetrievalScore: retrievalScore(len(chunks)),
		Informative:    true,
	}, nil
}

// retrieve runs a nearText search and unpacks content/source pairs.
func (kb *WeaviateKnowledgeBase) retrieve(ctx context.Context, question string) ([]string, []string, error) {
	nearText := kb.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{question})

	result, err := kb.client.GraphQL().Get().
		WithClassName(kb.className).
		WithFields(
			graphql.Field{Name: "content"},
			graphql.Field{Name: "source"},
			graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
		).
		WithNearText(nearText).
		WithLimit(retrievalLimit).
		Do(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(result.Errors) > 0 {
		return nil, nil, fmt.Errorf("graphql query failed: %s", result.Errors[0].Message)
	}

	get, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil, nil
	}
	objects, ok := get[kb.className].([]interface{})
	if !ok {
		return nil, nil, nil
	}

	var chunks, sources []string
	for _, obj := range objects {
		m, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}
		content, _ := m["content"].(string)
		if content == "" {
			continue
		}
		chunks = append(chunks, content)
		if source, ok := m["source"].(string); ok && source != "" {
			sources = append(sources, source)
		} else {
			sources = append(sources, "Unknown")
		}
	}
	return chunks, sources, nil
}

// retrievalScore maps retrieved chunk counts onto [0,1].
func retrievalScore(n int) float64 {
	score := float64(n) / float64(retrievalLimit)
	if score > 1.0 {
		score = 1.0
	}
	return score
}
