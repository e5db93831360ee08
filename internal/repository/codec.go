package repository

import (
	"github.com/goccy/go-json"

	"github.com/axellelanca/urlregistry/internal/models"
)

// encodeSnapshot serializes the collection as a JSON array of records.
func encodeSnapshot(records []models.ShortURL) ([]byte, error) {
	if records == nil {
		records = []models.ShortURL{}
	}
	return json.Marshal(records)
}

// decodeSnapshot parses a JSON array of records. Empty input is an empty collection.
func decodeSnapshot(data []byte) ([]models.ShortURL, error) {
	if len(data) == 0 {
		return []models.ShortURL{}, nil
	}
	var records []models.ShortURL
	if err := json.Unmarshal(data, &records); err != nil {
		return []models.ShortURL{}, err
	}
	if records == nil {
		records = []models.ShortURL{}
	}
	return records, nil
}
