package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"esports-scoreboard/internal/domain"

	"gopkg.in/yaml.v3"
)

// ResultSheet is the file accepted by "scoreboardctl submit". JSON sheets
// parse too since JSON is valid YAML.
//
//	results:
//	  - teamName: Alpha
//	    kills: 7
//	    placement: 1
type ResultSheet struct {
	Results []domain.ResultEntry `yaml:"results"`
}

// LoadResultSheet reads a result sheet from path, or stdin when path is "-".
func LoadResultSheet(path string, stdin io.Reader) ([]domain.ResultEntry, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read result sheet: %w", err)
	}
	return ParseResultSheet(data)
}

func ParseResultSheet(data []byte) ([]domain.ResultEntry, error) {
	var sheet ResultSheet
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sheet); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("result sheet is empty")
		}
		return nil, fmt.Errorf("parse result sheet: %w", err)
	}
	if len(sheet.Results) == 0 {
		return nil, errors.New("result sheet has no results")
	}
	return sheet.Results, nil
}
