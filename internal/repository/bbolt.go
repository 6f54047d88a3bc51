package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const (
	tasksBucket    = "tasks"
	metadataBucket = "metadata"
	schemaVersion  = 1
)

var (
	// ErrTaskNotFound is returned when a record cannot be found
	ErrTaskNotFound = errors.New("task record not found")
	ErrEmptyID      = errors.New("task ID cannot be empty")
)

// BboltRepository stores task records in a single bbolt file.
type BboltRepository struct {
	db *bbolt.DB
}

var _ Repository = (*BboltRepository)(nil)

// NewBboltRepository creates a new bbolt repository, creating parent
// directories of dbPath as needed.
func NewBboltRepository(dbPath string) (*BboltRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := &bbolt.Options{
		Timeout: 1 * time.Second,
	}

	db, err := bbolt.Open(dbPath, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &BboltRepository{
		db: db,
	}

	if err := repo.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// initialize sets up buckets and schema
func (r *BboltRepository) initialize() error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(tasksBucket))
		if err != nil {
			return fmt.Errorf("failed to create tasks bucket: %w", err)
		}

		metadataBucket, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
		if err != nil {
			return fmt.Errorf("failed to create metadata bucket: %w", err)
		}

		versionBytes := []byte(fmt.Sprintf("%d", schemaVersion))

		err = metadataBucket.Put([]byte("schema_version"), versionBytes)
		if err != nil {
			return fmt.Errorf("failed to store schema version: %w", err)
		}

		return nil
	})
}

// Save persists a record, replacing any record with the same ID.
func (r *BboltRepository) Save(record *TaskRecord) error {
	if record == nil {
		return errors.New("cannot save nil record")
	}

	if record.ID == "" {
		return ErrEmptyID
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(tasksBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", tasksBucket)
		}

		if err := bucket.Put([]byte(record.ID), data); err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}

		return nil
	})
}

// Find retrieves a record by ID
func (r *BboltRepository) Find(id string) (*TaskRecord, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	record := &TaskRecord{}

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(tasksBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", tasksBucket)
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return ErrTaskNotFound
		}

		if err := json.Unmarshal(data, record); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// FindAll retrieves all records, oldest first.
func (r *BboltRepository) FindAll() ([]*TaskRecord, error) {
	var records []*TaskRecord

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(tasksBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", tasksBucket)
		}

		return bucket.ForEach(func(k, v []byte) error {
			record := &TaskRecord{}

			if err := json.Unmarshal(v, record); err != nil {
				return fmt.Errorf("failed to unmarshal record %s: %w", k, err)
			}

			records = append(records, record)

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	return records, nil
}

// Delete removes a record
func (r *BboltRepository) Delete(id string) error {
	if id == "" {
		return ErrEmptyID
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(tasksBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", tasksBucket)
		}

		if bucket.Get([]byte(id)) == nil {
			return ErrTaskNotFound
		}

		return bucket.Delete([]byte(id))
	})
}

// Close closes the database
func (r *BboltRepository) Close() error {
	return r.db.Close()
}
