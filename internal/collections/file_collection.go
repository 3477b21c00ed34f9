package collections

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"kv-transactions/internal/models"
	"kv-transactions/internal/shared/filestorages"
)

const fileCollectionsDir = "collections"

type fileCollection struct {
	fileStorage filestorages.FileStorage
	name        string
}

type fileProvider struct {
	fileStorage filestorages.FileStorage
	names       map[string]struct{}
}

// NewFileProvider serves the declared collections from file storage, one JSON document per record
// under collections/<name>/. Any other name is ErrCollectionNotFound.
func NewFileProvider(fileStorage filestorages.FileStorage, names []string) Provider {
	declared := make(map[string]struct{}, len(names))
	for _, n := range names {
		declared[n] = struct{}{}
	}
	return &fileProvider{fileStorage: fileStorage, names: declared}
}

func (p *fileProvider) Collection(name string) (Collection, error) {
	if _, ok := p.names[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return &fileCollection{fileStorage: p.fileStorage, name: name}, nil
}

func (c *fileCollection) Name() string {
	return c.name
}

func (c *fileCollection) Query(ctx context.Context, filter Filter) ([]*models.TransactionRecord, error) {
	keys, err := c.fileStorage.List(ctx, c.dir())
	if err != nil {
		return nil, fmt.Errorf("failed to list collection %s: %w", c.name, err)
	}

	records := make([]*models.TransactionRecord, 0)
	for _, key := range keys {
		record, err := c.read(ctx, key)
		if err != nil {
			if errors.Is(err, filestorages.ErrFileNotFound) {
				// deleted between List and Get
				continue
			}
			return nil, err
		}
		if filter.Match(record.Document()) {
			records = append(records, record)
		}
	}
	return records, nil
}

func (c *fileCollection) BatchSave(ctx context.Context, records []*models.TransactionRecord) error {
	for _, record := range records {
		jsonData, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction %s: %w", record.Key, err)
		}
		_, err = c.fileStorage.Put(ctx, c.recordKey(record.Key), bytes.NewReader(jsonData), filestorages.PutOptions{AllowOverwrite: true})
		if err != nil {
			return fmt.Errorf("failed to put transaction %s: %w", record.Key, err)
		}
	}
	return nil
}

func (c *fileCollection) Delete(ctx context.Context, filter Filter) error {
	records, err := c.Query(ctx, filter)
	if err != nil {
		return err
	}
	for _, record := range records {
		err := c.fileStorage.Delete(ctx, c.recordKey(record.Key))
		if err != nil && !errors.Is(err, filestorages.ErrFileNotFound) {
			return fmt.Errorf("failed to delete transaction %s: %w", record.Key, err)
		}
	}
	return nil
}

func (c *fileCollection) read(ctx context.Context, key string) (*models.TransactionRecord, error) {
	readCloser, err := c.fileStorage.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer readCloser.Close()

	data, err := io.ReadAll(readCloser)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	var record models.TransactionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidResponse, key, err)
	}
	return &record, nil
}

func (c *fileCollection) dir() string {
	return fmt.Sprintf("%s/%s", fileCollectionsDir, c.name)
}

// recordKey encodes the transaction key so that any id maps to a single safe file name.
func (c *fileCollection) recordKey(key string) string {
	return fmt.Sprintf("%s/%s.json", c.dir(), base64.RawURLEncoding.EncodeToString([]byte(key)))
}
