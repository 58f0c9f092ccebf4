package services

import (
	"context"
	"math/rand"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywords(t *testing.T) {
	cases := map[string]string{
		"Wake up early and drink water":      "wake,early",
		"Don't skip BREAKFAST, it's vital!":  "dont,skip",
		"a b c to do":                        "abstract",
		"":                                   "abstract",
		"Focus":                              "focus",
		"¡Café olé! seriously good":          "caf,ol",
		"   multiple   spaces    between  ":  "multiple,spaces",
	}
	for in, want := range cases {
		assert.Equal(t, want, Keywords(in), in)
	}
}

func TestKeywordImageSourceURL(t *testing.T) {
	src := NewKeywordImageSource("", rand.New(rand.NewSource(1)))

	url, err := src.ImageFor(context.Background(), "Morning coffee rituals matter")
	require.NoError(t, err)

	re := regexp.MustCompile(`^https://source\.unsplash\.com/800x600/\?morning,coffee&sig=(\d+)$`)
	m := re.FindStringSubmatch(url)
	require.NotNil(t, m, url)
	seed, err := strconv.Atoi(m[1])
	require.NoError(t, err)
	assert.GreaterOrEqual(t, seed, 0)
	assert.Less(t, seed, 100000)
}

func TestKeywordImageSourceDeterministicWithSeed(t *testing.T) {
	a := NewKeywordImageSource("http://img.local/", rand.New(rand.NewSource(42)))
	b := NewKeywordImageSource("http://img.local", rand.New(rand.NewSource(42)))

	u1, _ := a.ImageFor(context.Background(), "same scene text")
	u2, _ := b.ImageFor(context.Background(), "same scene text")
	assert.Equal(t, u1, u2)
	assert.Regexp(t, `^http://img\.local/800x600/\?same,scene&sig=\d+$`, u1)
}

func TestKeywordImageSourceCanceled(t *testing.T) {
	src := NewKeywordImageSource("", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := src.ImageFor(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}
