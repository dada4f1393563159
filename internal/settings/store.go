package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/alphavoice/alphavoice/internal/transcribe"
)

// Keys are stable across releases; renaming one orphans the stored value.
const (
	keyAPIKey        = "apiKey"
	keyProvider      = "provider"
	keyHotkey        = "shortcut"
	keyShowIndicator = "showIndicator"
	keyTotalWords    = "stats.totalWords"
)

// Store is the durable settings and statistics contract.
type Store interface {
	Load(context.Context) (Settings, error)
	Save(context.Context, Patch) (Settings, error)
	TotalWords(context.Context) (int64, error)
	AddWords(context.Context, int64) (int64, error)
	Close() error
}

// BadgerStore keeps settings in an embedded badger database.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadger opens (or creates) the store at dir. An empty dir opens an
// in-memory store that is discarded on Close.
func OpenBadger(dir string, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if strings.TrimSpace(dir) == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	if logger != nil {
		opts = opts.WithLogger(badgerLogger{logger: logger.With("component", "badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open settings store %q: %w", dir, err)
	}
	return &BadgerStore{db: db, logger: logger}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Load returns stored settings with defaults for missing keys.
func (s *BadgerStore) Load(_ context.Context) (Settings, error) {
	out := Default()
	err := s.db.View(func(txn *badger.Txn) error {
		return readSettings(txn, &out)
	})
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return out, nil
}

// Save writes only the fields present in patch and returns the merged result.
func (s *BadgerStore) Save(_ context.Context, patch Patch) (Settings, error) {
	out := Default()
	err := s.db.Update(func(txn *badger.Txn) error {
		if patch.APIKey != nil {
			if err := txn.Set([]byte(keyAPIKey), []byte(strings.TrimSpace(*patch.APIKey))); err != nil {
				return err
			}
		}
		if patch.Provider != nil {
			if err := txn.Set([]byte(keyProvider), []byte(patch.Provider.Name())); err != nil {
				return err
			}
		}
		if patch.Hotkey != nil {
			if err := txn.Set([]byte(keyHotkey), []byte(strings.TrimSpace(*patch.Hotkey))); err != nil {
				return err
			}
		}
		if patch.ShowIndicator != nil {
			if err := txn.Set([]byte(keyShowIndicator), []byte(strconv.FormatBool(*patch.ShowIndicator))); err != nil {
				return err
			}
		}
		return readSettings(txn, &out)
	})
	if err != nil {
		return Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return out, nil
}

// TotalWords returns the persisted running word count.
func (s *BadgerStore) TotalWords(_ context.Context) (int64, error) {
	var total int64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		total, err = readInt(txn, keyTotalWords)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("read word total: %w", err)
	}
	return total, nil
}

// AddWords increments the running total and returns the new value.
func (s *BadgerStore) AddWords(_ context.Context, n int64) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("word count increment must be >= 0, got %d", n)
	}

	var total int64
	err := s.db.Update(func(txn *badger.Txn) error {
		current, err := readInt(txn, keyTotalWords)
		if err != nil {
			return err
		}
		total = current + n
		return txn.Set([]byte(keyTotalWords), []byte(strconv.FormatInt(total, 10)))
	})
	if err != nil {
		return 0, fmt.Errorf("update word total: %w", err)
	}
	return total, nil
}

func readSettings(txn *badger.Txn, out *Settings) error {
	if v, ok, err := readString(txn, keyAPIKey); err != nil {
		return err
	} else if ok {
		out.APIKey = v
	}

	if v, ok, err := readString(txn, keyProvider); err != nil {
		return err
	} else if ok {
		provider, perr := transcribe.ParseProvider(v)
		if perr != nil {
			return perr
		}
		out.Provider = provider
	}

	if v, ok, err := readString(txn, keyHotkey); err != nil {
		return err
	} else if ok && v != "" {
		out.Hotkey = v
	}

	if v, ok, err := readString(txn, keyShowIndicator); err != nil {
		return err
	} else if ok {
		show, perr := strconv.ParseBool(v)
		if perr != nil {
			return fmt.Errorf("decode %s: %w", keyShowIndicator, perr)
		}
		out.ShowIndicator = show
	}
	return nil
}

func readString(txn *badger.Txn, key string) (string, bool, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return "", false, err
	}
	return string(value), true, nil
}

func readInt(txn *badger.Txn, key string) (int64, error) {
	raw, ok, err := readString(txn, key)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", key, err)
	}
	return n, nil
}

// badgerLogger routes badger's printf-style logging into slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
