package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"callguard/internal/callfilter/ports/mocks"
	id "callguard/pkg/domain"
	"callguard/pkg/platform/audit"
	"callguard/pkg/requestcontext"
)

func TestLogAudit(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockAuditPublisher(ctrl)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	profileID := id.ProfileID(uuid.New())
	ctx := requestcontext.WithRequestID(context.Background(), "req-42")
	ctx = requestcontext.WithServiceSubject(ctx, "call-state")

	var got audit.Event
	publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		got = e
		return nil
	})

	LogAudit(ctx, logger, publisher, audit.EventBlockStatusRecorded,
		"profile_id", profileID.String(),
		"subject_hash", "abc123",
		"reason", "blocked_number",
	)

	require.Equal(t, string(audit.EventBlockStatusRecorded), got.Action)
	assert.Equal(t, audit.CategoryOperations, got.Category)
	assert.Equal(t, profileID, got.ProfileID)
	assert.Equal(t, "abc123", got.Subject)
	assert.Equal(t, "blocked_number", got.Reason)
	assert.Equal(t, "req-42", got.RequestID)
	assert.Equal(t, "call-state", got.ActorID)

	assert.Contains(t, buf.String(), "log_type=audit")
	assert.Contains(t, buf.String(), "request_id=req-42")
}

func TestLogAudit_NilPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogAudit(context.Background(), logger, nil, audit.EventFilteringDecided, "reason", "none")

	assert.Contains(t, buf.String(), "filtering_decided")
}
