package questionbank

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"mockinterview/internal/model"
)

//go:embed questions.yaml
var defaultCatalog []byte

type catalogFile struct {
	Questions []model.QuestionRecord `yaml:"questions"`
}

// Default returns the embedded catalog
func Default() (*Bank, error) {
	records, err := ParseYAML(bytes.NewReader(defaultCatalog))
	if err != nil {
		return nil, err
	}
	return New(records)
}

// ParseYAML reads a `questions:` list
func ParseYAML(r io.Reader) ([]model.QuestionRecord, error) {
	var f catalogFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse question yaml: %w", err)
	}
	return f.Questions, nil
}

// ParseCSV reads a catalog with a header row containing at least
// type, question and follow_up_trigger columns.
func ParseCSV(r io.Reader) ([]model.QuestionRecord, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse question csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyBank
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	records := make([]model.QuestionRecord, 0, len(rows)-1)
	for line, row := range rows[1:] {
		fields := make(map[string]interface{}, len(header))
		for i, name := range header {
			if i < len(row) {
				fields[name] = strings.TrimSpace(row[i])
			}
		}
		var rec model.QuestionRecord
		if err := mapstructure.Decode(fields, &rec); err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadFile parses a YAML or CSV catalog from fs, chosen by extension
func LoadFile(fs afero.Fs, path string) (*Bank, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open question bank %s: %w", path, err)
	}
	defer f.Close()

	var records []model.QuestionRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = ParseCSV(f)
	case ".yaml", ".yml":
		records, err = ParseYAML(f)
	default:
		return nil, fmt.Errorf("unsupported question bank format: %s", path)
	}
	if err != nil {
		return nil, err
	}
	return New(records)
}

// Source yields question records from an external store
type Source func() ([]model.QuestionRecord, error)

// Load tries each source in order and degrades to the embedded catalog,
// then to the single fallback question. It never fails.
func Load(logger *zap.Logger, sources ...Source) *Bank {
	for i, src := range sources {
		if src == nil {
			continue
		}
		records, err := src()
		if err != nil {
			logger.Warn("question source failed", zap.Int("source", i), zap.Error(err))
			continue
		}
		bank, err := New(records)
		if err != nil {
			logger.Warn("question source rejected", zap.Int("source", i), zap.Error(err))
			continue
		}
		logger.Info("question bank loaded", zap.Int("source", i), zap.Int("questions", bank.Len()))
		return bank
	}

	bank, err := Default()
	if err != nil {
		logger.Error("embedded question bank invalid, using fallback question", zap.Error(err))
		return Fallback()
	}
	logger.Info("using embedded question bank", zap.Int("questions", bank.Len()))
	return bank
}

// FileSource adapts LoadFile to a Source
func FileSource(fs afero.Fs, path string) Source {
	if path == "" {
		return nil
	}
	return func() ([]model.QuestionRecord, error) {
		bank, err := LoadFile(fs, path)
		if err != nil {
			return nil, err
		}
		return bank.All(), nil
	}
}
