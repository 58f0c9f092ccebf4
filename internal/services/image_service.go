// internal/services/image_service.go
package services

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"
)

// DefaultImageBaseURL is the stock photo service used for placeholders
const DefaultImageBaseURL = "https://source.unsplash.com"

// ImageSource picks an image URL for a scene
type ImageSource interface {
	ImageFor(ctx context.Context, sceneText string) (string, error)
}

var nonKeywordChars = regexp.MustCompile(`[^a-zA-Z0-9,]`)

// Keywords derives the search terms: the first two words longer than three
// characters, lower-cased, joined by commas, non-alphanumerics dropped.
// Falls back to "abstract".
func Keywords(text string) string {
	picked := make([]string, 0, 2)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len([]rune(word)) > 3 {
			picked = append(picked, word)
			if len(picked) == 2 {
				break
			}
		}
	}

	keywords := nonKeywordChars.ReplaceAllString(strings.Join(picked, ","), "")
	if keywords == "" {
		return "abstract"
	}
	return keywords
}

// KeywordImageSource builds keyword-search URLs with a random cache-busting seed
type KeywordImageSource struct {
	baseURL string

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewKeywordImageSource creates the source. A nil rnd seeds from the clock.
func NewKeywordImageSource(baseURL string, rnd *rand.Rand) *KeywordImageSource {
	if baseURL == "" {
		baseURL = DefaultImageBaseURL
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &KeywordImageSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		rnd:     rnd,
	}
}

// ImageFor returns {base}/800x600/?{keywords}&sig={seed}, seed in [0, 100000)
func (s *KeywordImageSource) ImageFor(ctx context.Context, sceneText string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	seed := s.rnd.Intn(100000)
	s.mu.Unlock()

	return fmt.Sprintf("%s/800x600/?%s&sig=%d", s.baseURL, Keywords(sceneText), seed), nil
}
