package workspace

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bytedance/sonic"

	"reasoning-eval/pkg/dataset"
	"reasoning-eval/pkg/score"
)

// maxLine bounds a single JSONL record.
const maxLine = 16 << 20

type Workspace struct {
	Config Config
}

func New(config Config) *Workspace {
	return &Workspace{Config: config}
}

// ListUnits returns the ids of all prompt sets, sorted.
func (w *Workspace) ListUnits() ([]string, error) {
	entries, err := os.ReadDir(w.Config.PromptsDir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// LoadPromptSet reads prompts/[id].json.
func (w *Workspace) LoadPromptSet(id string) (*dataset.PromptSet, error) {
	path := w.Config.PromptsPath(id)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prompts file not found at %s: %w", path, err)
	}
	var set dataset.PromptSet
	if err := sonic.ConfigDefault.Unmarshal(content, &set); err != nil {
		return nil, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	if set.VideoID == "" {
		set.VideoID = id
	}
	return &set, nil
}

// LoadSegments returns the transcript segments for a unit: those embedded in
// the prompt set if any, else data/raw/[id].json. A missing transcript is not
// an error.
func (w *Workspace) LoadSegments(id string, set *dataset.PromptSet) ([]dataset.Segment, error) {
	if set != nil && len(set.Transcript) > 0 {
		return set.Transcript, nil
	}
	path := w.Config.TranscriptPath(id)
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("no transcript for unit", "unit", id, "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var t dataset.Transcript
	if err := sonic.ConfigDefault.Unmarshal(content, &t); err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", path, err)
	}
	return t.Segments, nil
}

// HasGolden reports whether a golden answer file exists for id.
func (w *Workspace) HasGolden(id string) bool {
	_, err := os.Stat(w.Config.GoldenPath(id))
	return err == nil
}

// ReadGolden reads prompts/[id]_gold.jsonl. A missing file yields no records;
// malformed lines are skipped.
func (w *Workspace) ReadGolden(id string) ([]dataset.GoldenRecord, error) {
	var records []dataset.GoldenRecord
	err := readJSONL(w.Config.GoldenPath(id), func(line []byte) error {
		var r dataset.GoldenRecord
		if err := sonic.ConfigDefault.Unmarshal(line, &r); err != nil {
			slog.Debug("skipping malformed golden line", "unit", id, "error", err)
			return nil
		}
		records = append(records, r)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return records, err
}

// LoadGolden indexes the golden answers for id by prompt id.
func (w *Workspace) LoadGolden(id string) (map[string]string, error) {
	records, err := w.ReadGolden(id)
	if err != nil {
		return nil, err
	}
	return dataset.GoldenIndex(records), nil
}

func (w *Workspace) SaveGolden(id string, records []dataset.GoldenRecord) error {
	return writeJSONL(w.Config.GoldenPath(id), records)
}

// SaveRawRecords replaces models_outputs/[id]_gemini.jsonl with records.
func (w *Workspace) SaveRawRecords(id string, records []dataset.RawRecord) error {
	return writeJSONL(w.Config.RawOutputPath(id), records)
}

func (w *Workspace) ReadRawRecords(id string) ([]dataset.RawRecord, error) {
	var records []dataset.RawRecord
	err := readJSONL(w.Config.RawOutputPath(id), func(line []byte) error {
		var r dataset.RawRecord
		if err := sonic.ConfigDefault.Unmarshal(line, &r); err != nil {
			return err
		}
		records = append(records, r)
		return nil
	})
	return records, err
}

// SaveScores replaces models_outputs/[id]_results.csv with rows.
func (w *Workspace) SaveScores(id string, rows []score.Row) error {
	return replaceFile(w.Config.ResultsPath(id), func(f io.Writer) error {
		return score.WriteCSV(f, rows)
	})
}

func (w *Workspace) SaveScoresXLSX(id string, rows []score.Row) error {
	return replaceFile(w.Config.ResultsXLSXPath(id), func(f io.Writer) error {
		return score.WriteXLSX(f, rows)
	})
}

func (w *Workspace) LoadScores(id string) ([]score.Row, error) {
	f, err := os.Open(w.Config.ResultsPath(id))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return score.ReadCSV(f)
}

func readJSONL(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return sc.Err()
}

func writeJSONL[T any](path string, records []T) error {
	return replaceFile(path, func(f io.Writer) error {
		for _, r := range records {
			b, err := sonic.ConfigDefault.Marshal(r)
			if err != nil {
				return err
			}
			b = append(b, '\n')
			if _, err := f.Write(b); err != nil {
				return err
			}
		}
		return nil
	})
}

// replaceFile writes path through a temp file in the same directory and
// renames it into place, so readers never see a partial file.
func replaceFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
