package ai

import (
	"fmt"
	"time"
)

const (
	// systemInstruction アイデア分析用のシステムプロンプト
	systemInstruction = `You are an expert startup advisor and lean startup coach. Your task is to analyze a startup idea and identify potential red flags across four key categories: Market, Financial, Technical, and Execution. For each red flag, you must assign a title, description, severity, category, and a concrete, actionable suggestion for how to mitigate the risk. The suggestion should be lean, focusing on low-cost validation methods, 'no-code' solutions, or customer discovery, rather than expensive development. Be critical but constructive. Provide a final validation score and a rationale for it based on the provided JSON schema. Your feedback should be insightful and actionable for an aspiring entrepreneur.`

	// schemaInstruction スキーマ指定を持たないプロバイダー向けの出力形式
	schemaInstruction = `

Respond with a single JSON object and nothing else:
{
  "validationScore": 1-100 integer,
  "scoreRationale": "one sentence explaining the score",
  "redFlags": [
    {
      "title": "short title, e.g. 'Market Saturation'",
      "description": "why this is a concern",
      "severity": "High" | "Medium" | "Low",
      "category": "Market" | "Financial" | "Technical" | "Execution",
      "suggestion": "lean, low-cost mitigation"
    }
  ],
  "summary": "overall constructive feedback and next steps"
}`

	// providerTimeout プロバイダー呼び出しのタイムアウト
	providerTimeout = 60 * time.Second
)

// userPrompt アイデアを埋め込んだユーザープロンプト
func userPrompt(idea string) string {
	return fmt.Sprintf("Analyze the following startup idea and provide feedback. Be thorough and critical. Startup Idea: %q", idea)
}

// jsonSchema Gemini の responseSchema 形式
type jsonSchema struct {
	Type        string                `json:"type"`
	Description string                `json:"description,omitempty"`
	Properties  map[string]jsonSchema `json:"properties,omitempty"`
	Items       *jsonSchema           `json:"items,omitempty"`
	Enum        []string              `json:"enum,omitempty"`
	Required    []string              `json:"required,omitempty"`
}

// analysisResponseSchema 分析結果のレスポンススキーマ
var analysisResponseSchema = jsonSchema{
	Type: "OBJECT",
	Properties: map[string]jsonSchema{
		"validationScore": {
			Type:        "INTEGER",
			Description: "A validation score from 1 to 100 for the startup idea, considering market, financial, technical, and execution risks.",
		},
		"scoreRationale": {
			Type:        "STRING",
			Description: "A brief, one-sentence explanation for why the score was given, summarizing the key strengths and weaknesses.",
		},
		"redFlags": {
			Type:        "ARRAY",
			Description: "A list of potential red flags for the startup idea.",
			Items: &jsonSchema{
				Type: "OBJECT",
				Properties: map[string]jsonSchema{
					"title": {
						Type:        "STRING",
						Description: "A short, catchy title for the red flag (e.g., 'Market Saturation').",
					},
					"description": {
						Type:        "STRING",
						Description: "A detailed explanation of the red flag and why it's a concern.",
					},
					"severity": {
						Type:        "STRING",
						Description: "The severity of the red flag.",
						Enum:        []string{"High", "Medium", "Low"},
					},
					"category": {
						Type:        "STRING",
						Description: "The category of the red flag.",
						Enum:        []string{"Market", "Financial", "Technical", "Execution"},
					},
					"suggestion": {
						Type:        "STRING",
						Description: "A concrete, actionable suggestion for how to mitigate this risk, focusing on low-cost validation methods, 'no-code' solutions, or customer discovery.",
					},
				},
				Required: []string{"title", "description", "severity", "category", "suggestion"},
			},
		},
		"summary": {
			Type:        "STRING",
			Description: "An overall summary providing constructive feedback and actionable next steps for the entrepreneur.",
		},
	},
	Required: []string{"validationScore", "scoreRationale", "redFlags", "summary"},
}
