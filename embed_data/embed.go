package embed_data

import _ "embed"

// ImportQueries maps language names to tree-sitter queries that capture
// import/reference targets. Consumed by the dependency graph.
//
//go:embed queries/import_queries.json
var ImportQueries []byte

// CodeAssistantPrompt is the system prompt template sent alongside the
// bounded project context.
//
//go:embed prompts/code_assistant_prompt.tmpl
var CodeAssistantPrompt []byte

// ModelDetails carries per-model token limits and pricing for cost display.
//
//go:embed models_details/model_details.json
var ModelDetails []byte
