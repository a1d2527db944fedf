package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnhub/internal/apperr"
	"github.com/abhisek/learnhub/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewService(st.QuizResultRepo(), st.ActivityRepo()), st
}

func TestSubmitAndHistory(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	r := validResult()
	id, err := svc.Submit(ctx, r)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err, "stored id should be a uuid")

	got, err := svc.Get(ctx, r.UserIdentity, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r.Score, got.Score)
	assert.Equal(t, r.Responses, got.Responses)
	assert.False(t, got.CreatedAt.IsZero())

	hist, err := svc.History(ctx, r.UserIdentity, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, id, hist[0].ID)

	acts, err := st.ActivityRepo().RecentActivity(ctx, r.UserIdentity, 5)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, store.ActivityQuiz, acts[0].Type)
	assert.Equal(t, "mixed", acts[0].Title)
}

func TestSubmitRejectsTamperedScore(t *testing.T) {
	svc, _ := newTestService(t)

	r := validResult()
	r.Score = r.Total
	_, err := svc.Submit(context.Background(), r)
	assert.True(t, errors.Is(err, apperr.ErrInvalidShape), "got %v", err)

	blank := validResult()
	for i := range blank.Responses {
		blank.Responses[i].Selected = ""
		blank.Responses[i].Correct = ""
		blank.Responses[i].IsCorrect = true
	}
	blank.Score = blank.Total
	_, err = svc.Submit(context.Background(), blank)
	assert.True(t, errors.Is(err, apperr.ErrInvalidShape), "got %v", err)

	hist, err := svc.History(context.Background(), r.UserIdentity, 0)
	require.NoError(t, err)
	assert.Empty(t, hist, "rejected results must not be stored")
}

func TestSubmitRequiresIdentity(t *testing.T) {
	svc, _ := newTestService(t)

	r := validResult()
	r.UserIdentity = ""
	_, err := svc.Submit(context.Background(), r)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestGetMissing(t *testing.T) {
	svc, _ := newTestService(t)
	got, err := svc.Get(context.Background(), "ana@example.com", uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetScopedToOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.Submit(ctx, validResult())
	require.NoError(t, err)

	got, err := svc.Get(ctx, "mallory@example.com", id)
	require.NoError(t, err)
	assert.Nil(t, got, "another user's result must not be returned")

	_, err = svc.Get(ctx, "", id)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}
