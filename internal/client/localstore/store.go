// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package localstore keeps per-device data in a single bbolt file.

Buckets:

	credentials     remembered login and the current session
	search_history  recent catalogue queries, most recent first
	gallery         images the reader saved from the app

The store also implements gateway.TokenStore, so a session survives between
CLI invocations.
*/
package localstore

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/genra-app/genra/internal/client/gateway"
)

var (
	bucketCredentials   = []byte("credentials")
	bucketSearchHistory = []byte("search_history")
	bucketGallery       = []byte("gallery")

	keyLogin   = []byte("login")
	keySession = []byte("session")
)

// MaxSearchHistory is the number of queries kept.
const MaxSearchHistory = 10

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("localstore: not found")

// Store is a bbolt-backed device store.
type Store struct {
	db     *bolt.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens or creates the store at path, creating parent directories.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("localstore_mkdir_failed: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("localstore_open_failed: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCredentials, bucketSearchHistory, bucketGallery} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("localstore_bucket_%s_failed: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Close releases the file lock.
func (store *Store) Close() error {
	return store.db.Close()
}

// # Credentials

// RememberedLogin is what "remember me" keeps between launches.
type RememberedLogin struct {
	Login        string    `json:"login"`
	RefreshToken string    `json:"refresh_token"`
	SavedAt      time.Time `json:"saved_at"`
}

// RememberLogin stores the login identifier and refresh token.
func (store *Store) RememberLogin(login, refreshToken string) error {
	return store.putJSON(bucketCredentials, keyLogin, RememberedLogin{
		Login:        login,
		RefreshToken: refreshToken,
		SavedAt:      store.now().UTC(),
	})
}

// RememberedLogin returns the stored login, or [ErrNotFound].
func (store *Store) RememberedLogin() (*RememberedLogin, error) {
	var remembered RememberedLogin
	if err := store.getJSON(bucketCredentials, keyLogin, &remembered); err != nil {
		return nil, err
	}
	return &remembered, nil
}

// ForgetLogin removes the remembered login.
func (store *Store) ForgetLogin() error {
	return store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCredentials).Delete(keyLogin)
	})
}

// Session implements gateway.TokenStore.
func (store *Store) Session() *gateway.Session {
	var session gateway.Session
	if err := store.getJSON(bucketCredentials, keySession, &session); err != nil {
		if !errors.Is(err, ErrNotFound) {
			store.logger.Warn("localstore_session_read_failed", slog.Any("error", err))
		}
		return nil
	}
	return &session
}

// SetSession implements gateway.TokenStore; nil removes the session.
func (store *Store) SetSession(session *gateway.Session) {
	var err error
	if session == nil {
		err = store.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketCredentials).Delete(keySession)
		})
	} else {
		err = store.putJSON(bucketCredentials, keySession, session)
	}
	if err != nil {
		store.logger.Warn("localstore_session_write_failed", slog.Any("error", err))
	}
}

// # Search History

// AddSearch records a query. Blank queries are ignored; a repeated query
// moves to the front instead of appearing twice.
func (store *Store) AddSearch(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	return store.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketSearchHistory)
		for _, entry := range readHistory(bucket) {
			if strings.EqualFold(entry.query, query) {
				if err := bucket.Delete(entry.key); err != nil {
					return err
				}
			}
		}
		sequence, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		if err := bucket.Put(historyKey(sequence), []byte(query)); err != nil {
			return err
		}

		entries := readHistory(bucket)
		for _, stale := range entries[min(len(entries), MaxSearchHistory):] {
			if err := bucket.Delete(stale.key); err != nil {
				return err
			}
		}
		return nil
	})
}

// SearchHistory returns stored queries, most recent first.
func (store *Store) SearchHistory() ([]string, error) {
	queries := []string{}
	err := store.db.View(func(tx *bolt.Tx) error {
		for _, entry := range readHistory(tx.Bucket(bucketSearchHistory)) {
			queries = append(queries, entry.query)
		}
		return nil
	})
	return queries, err
}

// ClearSearchHistory removes every stored query.
func (store *Store) ClearSearchHistory() error {
	return store.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketSearchHistory); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketSearchHistory)
		return err
	})
}

type historyEntry struct {
	key   []byte
	query string
}

// historyKey sorts in insertion order as bytes.
func historyKey(sequence uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, sequence)
	return key
}

// readHistory returns entries newest first.
func readHistory(bucket *bolt.Bucket) []historyEntry {
	var entries []historyEntry
	cursor := bucket.Cursor()
	for key, value := cursor.Last(); key != nil; key, value = cursor.Prev() {
		entries = append(entries, historyEntry{key: append([]byte(nil), key...), query: string(value)})
	}
	return entries
}

// # Gallery

// Image is a saved picture.
type Image struct {
	Name    string    `json:"name"`
	Data    []byte    `json:"data"`
	SavedAt time.Time `json:"saved_at"`
}

// SaveImage stores data under name, replacing any previous image.
func (store *Store) SaveImage(name string, data []byte) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("localstore: image name is required")
	}
	return store.putJSON(bucketGallery, []byte(name), Image{Name: name, Data: data, SavedAt: store.now().UTC()})
}

// Image returns the image saved under name, or [ErrNotFound].
func (store *Store) Image(name string) (*Image, error) {
	var image Image
	if err := store.getJSON(bucketGallery, []byte(name), &image); err != nil {
		return nil, err
	}
	return &image, nil
}

// Images lists saved images, newest first, without their data.
func (store *Store) Images() ([]Image, error) {
	images := []Image{}
	err := store.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketGallery).ForEach(func(_, value []byte) error {
			var image Image
			if err := json.Unmarshal(value, &image); err != nil {
				return err
			}
			image.Data = nil
			images = append(images, image)
			return nil
		})
	})
	sort.SliceStable(images, func(i, j int) bool { return images[i].SavedAt.After(images[j].SavedAt) })
	return images, err
}

// # Helpers

func (store *Store) putJSON(bucket, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("localstore_encode_failed: %w", err)
	}
	return store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put(key, data)
	})
}

func (store *Store) getJSON(bucket, key []byte, out any) error {
	return store.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucket).Get(key)
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, out)
	})
}
