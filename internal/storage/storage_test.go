package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type backendFactory func(t *testing.T) KV

func backends() map[string]backendFactory {
	return map[string]backendFactory{
		"memory": func(t *testing.T) KV {
			return NewMemory()
		},
		"sqlite": func(t *testing.T) KV {
			kv, err := NewSQLite(filepath.Join(t.TempDir(), "shelf.db"))
			require.NoError(t, err)
			return kv
		},
		"gorm": func(t *testing.T) KV {
			kv, err := NewGorm(filepath.Join(t.TempDir(), "shelf.db"))
			require.NoError(t, err)
			return kv
		},
	}
}

func Test_Backends(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			kv := factory(t)
			defer kv.Close()

			_, ok, err := kv.Get("cards")
			require.NoError(err)
			require.False(ok)

			require.NoError(kv.Set("cards", []byte(`[1]`)))
			require.NoError(kv.Set("cards", []byte(`[1,2]`)))
			v, ok, err := kv.Get("cards")
			require.NoError(err)
			require.True(ok)
			require.Equal(`[1,2]`, string(v))

			require.NoError(kv.Set("rating-2", []byte("7")))
			require.NoError(kv.Set("rating-10", []byte("3")))
			require.NoError(kv.Set("rating_x", []byte("1")))
			keys, err := kv.Keys("rating-")
			require.NoError(err)
			require.Equal([]string{"rating-10", "rating-2"}, keys)

			require.NoError(kv.Remove("rating-2"))
			require.NoError(kv.Remove("never-existed"))
			keys, err = kv.Keys("rating-")
			require.NoError(err)
			require.Equal([]string{"rating-10"}, keys)
		})
	}
}

func Test_RedisBackend(t *testing.T) {
	addr := os.Getenv("GAMESHELF_TEST_REDIS")
	if addr == "" {
		t.Skip("GAMESHELF_TEST_REDIS not set")
	}
	require := require.New(t)

	kv, err := NewRedis(addr, "", 0, "gameshelf-test-"+strconv.Itoa(os.Getpid()))
	require.NoError(err)
	defer kv.Close()

	require.NoError(kv.Set("rating-1", []byte("4")))
	v, ok, err := kv.Get("rating-1")
	require.NoError(err)
	require.True(ok)
	require.Equal("4", string(v))

	keys, err := kv.Keys("rating-")
	require.NoError(err)
	require.Equal([]string{"rating-1"}, keys)
	require.NoError(kv.Remove("rating-1"))
}

type card struct {
	ID    int64  `json:"id"`
	Title string `json:"text"`
}

func Test_SaveList_RoundTrip(t *testing.T) {
	require := require.New(t)
	kv := NewMemory()
	s := New(kv, nil)

	in := []card{{ID: 1, Title: "Celeste"}, {ID: 2, Title: "Hades"}}
	SaveList(s, CardsKey, in)

	// a fresh adapter over the same backend sees the same state
	out := LoadList[card](New(kv, nil), CardsKey)
	require.Equal(in, out)

	SaveList(s, CardsKey, []card{})
	_, ok, _ := kv.Get(CardsKey)
	require.False(ok, "empty list must be stored as an absent key")
	require.Empty(LoadList[card](s, CardsKey))
}

func Test_CorruptValue_Discarded(t *testing.T) {
	require := require.New(t)
	core, logs := observer.New(zapcore.WarnLevel)
	kv := NewMemory()
	require.NoError(kv.Set(CardsKey, []byte("{not json")))
	require.NoError(kv.Set(NextGamesKey, []byte(`{"id": 1}`)))

	s := New(kv, zap.New(core))
	require.NotPanics(func() {
		require.Empty(LoadList[card](s, CardsKey))
		require.Empty(LoadList[card](s, NextGamesKey))
	})

	_, ok, _ := kv.Get(CardsKey)
	require.False(ok)
	_, ok, _ = kv.Get(NextGamesKey)
	require.False(ok)
	require.Equal(2, logs.FilterMessage("discarding corrupt value").Len())
}

type failingKV struct {
	*Memory
	fail bool
}

var errQuota = errors.New("quota exceeded")

func (f *failingKV) Set(key string, value []byte) error {
	if f.fail {
		return errQuota
	}
	return f.Memory.Set(key, value)
}

func Test_WriteFailure_Logged(t *testing.T) {
	require := require.New(t)
	core, logs := observer.New(zapcore.ErrorLevel)
	kv := &failingKV{Memory: NewMemory(), fail: true}
	s := New(kv, zap.New(core))

	require.NotPanics(func() {
		s.Save(CardsKey, []card{{ID: 1}})
	})
	require.Equal(1, logs.FilterMessage("write failed").Len())

	kv.fail = false
	s.Save(CardsKey, []card{{ID: 1}})
	require.Len(LoadList[card](s, CardsKey), 1)
}

func Test_CardRecordKeys(t *testing.T) {
	require := require.New(t)
	keys := CardRecordKeys(42)
	require.Contains(keys, "rating-42")
	require.Contains(keys, "franchise_data_42")
	require.Equal("rating-42", RatingKey(42))
	require.Equal("franchise-gameCards-Zelda", FranchiseGameCardsKey("Zelda"))
}

func Test_Open(t *testing.T) {
	require := require.New(t)

	kv, err := Open(Options{Driver: "memory"})
	require.NoError(err)
	require.IsType(&Memory{}, kv)

	kv, err = Open(Options{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(err)
	require.NoError(kv.Close())

	_, err = Open(Options{Driver: "floppy"})
	require.Error(err)
}
