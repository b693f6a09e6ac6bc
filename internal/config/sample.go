package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# vidsynth configuration
version: "1.0"

# Chat model used for answers, notes and translation
ai:
  provider: ollama            # ollama | openai | anthropic
  model: llama3.2
  endpoint: http://localhost:11434
  api_key: ""                 # literal key or ${OPENAI_API_KEY}
  temperature: 0.2
  max_tokens: 1024
  timeout: 120s
  max_retries: 2

# Embeddings for transcript segments and questions
embedding:
  provider: ollama            # ollama | openai | tfidf (offline)
  model: nomic-embed-text
  endpoint: http://localhost:11434
  api_key: ""
  dimensions: 512             # tfidf vocabulary size
  concurrency: 4              # parallel embedding requests
  normalize: false

# Transcript windowing, in characters
chunking:
  max_size: 10000
  overlap: 1000               # must be smaller than max_size

retrieval:
  top_k: 4
  strict_grounding: false     # replace answers not supported by the context
  min_overlap: 0.5

transcript:
  dir: ./transcripts          # <video-id>.<lang>.srt|vtt|txt
  language: en
  cache_path: ~/.cache/vidsynth/transcripts.db   # empty disables the cache

server:
  addr: ":8080"
  read_timeout: 30s
  write_timeout: 5m

output:
  format: text                # text | json | markdown
  color_mode: auto            # auto | always | never
  verbose: false
  show_context: false

timeouts:
  build: 10m
  query: 2m
`
}

// MinimalSampleConfig returns a configuration with only the essential settings
func MinimalSampleConfig() string {
	return `version: "1.0"
ai:
  provider: ollama
  model: llama3.2
embedding:
  provider: ollama
  model: nomic-embed-text
transcript:
  dir: ./transcripts
`
}
