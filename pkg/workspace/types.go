package workspace

import "path/filepath"

// Config locates the pipeline's directories.
type Config struct {
	DataDir    string // raw transcripts live in DataDir/raw
	PromptsDir string // prompt sets and golden answers
	OutputsDir string // model outputs and score tables
}

// DefaultConfig returns the layout relative to the working directory.
func DefaultConfig() Config {
	return Config{
		DataDir:    "data",
		PromptsDir: "prompts",
		OutputsDir: "models_outputs",
	}
}

func (c Config) TranscriptPath(id string) string {
	return filepath.Join(c.DataDir, "raw", id+".json")
}

func (c Config) PromptsPath(id string) string {
	return filepath.Join(c.PromptsDir, id+".json")
}

func (c Config) GoldenPath(id string) string {
	return filepath.Join(c.PromptsDir, id+"_gold.jsonl")
}

// RawOutputPath keeps the historical "_gemini" suffix whatever the provider,
// since downstream packaging looks for that name.
func (c Config) RawOutputPath(id string) string {
	return filepath.Join(c.OutputsDir, id+"_gemini.jsonl")
}

func (c Config) ResultsPath(id string) string {
	return filepath.Join(c.OutputsDir, id+"_results.csv")
}

func (c Config) ResultsXLSXPath(id string) string {
	return filepath.Join(c.OutputsDir, id+"_results.xlsx")
}
