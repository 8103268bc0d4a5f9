package lookup

import (
	"context"
	"errors"
)

// Service combines a translator and a phonetic client. Either may be nil,
// in which case the corresponding lookup fails with ErrUnavailable.
type Service struct {
	translator *Translator
	phonetic   *PhoneticClient
}

// ErrUnavailable is returned by lookups whose backing service is not configured
var ErrUnavailable = errors.New("lookup service not configured")

// NewService creates the combined lookup service
func NewService(translator *Translator, phonetic *PhoneticClient) *Service {
	return &Service{translator: translator, phonetic: phonetic}
}

// Translate delegates to the translator
func (s *Service) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if s.translator == nil {
		return "", ErrUnavailable
	}
	return s.translator.Translate(ctx, text, targetLanguage)
}

// Transcribe delegates to the phonetic client
func (s *Service) Transcribe(ctx context.Context, word string) (string, error) {
	if s.phonetic == nil {
		return "", ErrUnavailable
	}
	return s.phonetic.Transcribe(ctx, word)
}
