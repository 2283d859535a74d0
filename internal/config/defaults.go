package config

// DefaultConfigYAML contains the default configuration YAML content written
// by `gradepilot init`.
const DefaultConfigYAML = `# GradePilot Configuration
#
# Values not specified here use sensible defaults. Environment variables with
# the GRADEPILOT_ prefix override these (GRADEPILOT_GEMINI_API_KEY, ...).

server:
  host: 0.0.0.0
  port: 8000
  cors_origins:
    - http://localhost:5173

grading:
  # Maximum difference in grade points at which the similarity grade and the
  # Gemini grade still average into the final grade.
  agreement_threshold: 15
  hybrid_enabled: true
  batch_concurrency: 4

similarity:
  model_path: models/all-MiniLM-L6-v2/model.onnx
  # When this file exists it is preferred over model_path, and swapped in
  # live when it appears.
  fine_tuned_path: models/minilm-finetuned/model.onnx
  tokenizer_path: models/all-MiniLM-L6-v2/tokenizer.json
  max_seq_len: 256
  prefer_gpu: true
  watch_fine_tuned: true

gemini:
  # Set the API key via GRADEPILOT_GEMINI_API_KEY or a .env file instead of
  # committing it here.
  model: gemini-2.0-flash
  timeout: 60s
  max_retries: 2
  temperature: 0.2

store:
  # sqlite | memory | auto (sqlite with fallback to memory)
  backend: auto
  path: .gradepilot/grades.db
  snapshot_path: .gradepilot/grades.json
`
