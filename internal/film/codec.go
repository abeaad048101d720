package film

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

const indent = "    "

// EncodeJSON writes v as indented UTF-8 JSON without escaping non-ASCII or
// HTML characters. Map keys are sorted by encoding/json, keeping diffs stable.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeDataset reads a dataset previously written with EncodeJSON.
func DecodeDataset(r io.Reader) (MovieDataset, error) {
	var dataset MovieDataset
	if err := json.NewDecoder(r).Decode(&dataset); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if dataset == nil {
		dataset = MovieDataset{}
	}
	for year, films := range dataset {
		for i := range films {
			if films[i].Actors == nil {
				films[i].Actors = []string{}
			}
		}
		dataset[year] = films
	}
	return dataset, nil
}
