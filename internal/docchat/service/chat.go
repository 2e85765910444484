package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/docchat/internal/docchat/docsvc"
	"github.com/aussiebroadwan/docchat/pkg/slogx"
)

const MaxQuestionLength = 4000

// ChatService forwards questions to the document service on behalf of a user.
type ChatService struct {
	Index DocumentIndex
}

func (s *ChatService) Ask(ctx context.Context, userID, question string) (docsvc.Answer, error) {
	question = strings.TrimSpace(question)
	switch {
	case userID == "":
		return docsvc.Answer{}, ErrUnauthorized
	case question == "":
		return docsvc.Answer{}, invalid("Question is required")
	case utf8.RuneCountInString(question) > MaxQuestionLength:
		return docsvc.Answer{}, invalid(fmt.Sprintf("Question must be at most %d characters", MaxQuestionLength))
	}

	if s.Index == nil {
		return docsvc.Answer{}, ErrDocumentServiceUnavailable
	}

	ans, err := s.Index.Query(ctx, userID, question)
	if err != nil {
		slogx.FromContext(ctx).Error("chat: document service query failed", "error", err)
		return docsvc.Answer{}, fmt.Errorf("%w: %v", ErrDocumentService, err)
	}
	if ans.Source == "" {
		ans.Source = "documents"
	}
	return ans, nil
}
