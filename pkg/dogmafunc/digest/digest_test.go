package digest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/seedwing-io/dogma-engine/internal/dogma/corefunc"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
)

func TestDigest_MatchesBlake2b256(t *testing.T) {
	reg := corefunc.NewRegistry()
	require.NoError(t, Register(reg))
	entry, _ := reg.Lookup(FuncID)

	v, out, _ := entry.Impl(context.Background(), value.Str("hello"), nil, nil)
	assert.True(t, v.IsOk())

	want := blake2b.Sum256([]byte("hello"))
	got, ok := out.AsOctets()
	require.True(t, ok)
	assert.Equal(t, want[:], got)
}
