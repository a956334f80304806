package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/speedrun/backend/internal/config"
	"github.com/speedrun/backend/internal/logger"
	"github.com/speedrun/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clipAsset() models.Asset {
	return models.Asset{
		ID:       "v1",
		Type:     models.AssetTypeVideo,
		FilePath: "media/assets/v1/clip.mp4",
		FileName: "clip.mp4",
	}
}

func newTestService(meta MetadataStore, blobs ObjectStore) *AssetService {
	return NewAssetService(meta, blobs, &config.Config{CommentAppendMaxAttempts: 3}, logger.Nop(), nil)
}

func TestDeleteAssetRemovesBlobThenRecord(t *testing.T) {
	meta := newMemoryMetadataStore(clipAsset())
	blobs := newFakeObjectStore("assets/v1/clip.mp4")
	svc := newTestService(meta, blobs)

	asset, err := svc.DeleteAsset(context.Background(), "v1")

	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", asset.FileName)
	assert.Equal(t, []string{"assets/v1/clip.mp4"}, blobs.deleted)
	_, err = meta.GetByID(context.Background(), "v1", models.AssetTypeVideo)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAssetTwice(t *testing.T) {
	meta := newMemoryMetadataStore(clipAsset())
	blobs := newFakeObjectStore("assets/v1/clip.mp4")
	svc := newTestService(meta, blobs)

	_, err := svc.DeleteAsset(context.Background(), "v1")
	require.NoError(t, err)

	_, err = svc.DeleteAsset(context.Background(), "v1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, blobs.deleted, 1)
}

func TestDeleteAssetUnknownIDMutatesNothing(t *testing.T) {
	meta := newMemoryMetadataStore(clipAsset())
	blobs := newFakeObjectStore("assets/v1/clip.mp4")
	svc := newTestService(meta, blobs)

	_, err := svc.DeleteAsset(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, blobs.deleted)
	assert.Zero(t, meta.mutations)
}

func TestDeleteAssetBlobFailureKeepsRecord(t *testing.T) {
	meta := newMemoryMetadataStore(clipAsset())
	blobs := newFakeObjectStore("assets/v1/clip.mp4")
	blobs.err = &StoreError{Op: "delete blob", Err: errors.New("access denied")}
	svc := newTestService(meta, blobs)

	_, err := svc.DeleteAsset(context.Background(), "v1")

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "delete blob", storeErr.Op)
	assert.True(t, meta.exists("v1"))
}

func TestDeleteAssetMalformedPathKeepsRecord(t *testing.T) {
	a := clipAsset()
	a.FilePath = "clip.mp4"
	meta := newMemoryMetadataStore(a)
	blobs := newFakeObjectStore()
	svc := newTestService(meta, blobs)

	_, err := svc.DeleteAsset(context.Background(), "v1")

	var malformed *MalformedPathError
	require.ErrorAs(t, err, &malformed)
	assert.True(t, meta.exists("v1"))
	assert.Empty(t, blobs.deleted)
}

func TestDeleteAssetMissingBlobStillDeletesRecord(t *testing.T) {
	meta := newMemoryMetadataStore(clipAsset())
	svc := newTestService(meta, newFakeObjectStore())

	_, err := svc.DeleteAsset(context.Background(), "v1")

	require.NoError(t, err)
	assert.False(t, meta.exists("v1"))
}

func TestDeleteAssetMetadataFailureIsPartial(t *testing.T) {
	meta := newMemoryMetadataStore(clipAsset())
	meta.deleteErr = &StoreError{Op: "delete metadata", Err: errors.New("throttled")}
	blobs := newFakeObjectStore("assets/v1/clip.mp4")
	svc := newTestService(meta, blobs)

	_, err := svc.DeleteAsset(context.Background(), "v1")

	var partial *PartialDeleteError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "assets", partial.Container)
	assert.Equal(t, "v1/clip.mp4", partial.Key)
	assert.Contains(t, err.Error(), "still present")
	assert.Equal(t, []string{"assets/v1/clip.mp4"}, blobs.deleted)
}

func TestAppendCommentSequential(t *testing.T) {
	meta := newMemoryMetadataStore(clipAsset())
	svc := newTestService(meta, newFakeObjectStore())

	texts := []string{"first", "second", "third", "fourth"}
	for _, text := range texts {
		_, err := svc.AppendComment(context.Background(), "v1", CommentInput{Comment: text, UserID: "u1", UserName: "Runner"})
		require.NoError(t, err)
	}

	stored := meta.get("v1")
	require.Len(t, stored.Comments, len(texts))
	for i, text := range texts {
		assert.Equal(t, text, stored.Comments[i].Comment)
		assert.False(t, stored.Comments[i].CreatedAt.IsZero())
	}
	assert.Equal(t, "media/assets/v1/clip.mp4", stored.FilePath)
	assert.Equal(t, "clip.mp4", stored.FileName)
	assert.Equal(t, int64(len(texts)+1), stored.Version)
}

func TestAppendCommentInvalidInput(t *testing.T) {
	for name, in := range map[string]CommentInput{
		"empty comment":  {UserID: "u1", UserName: "Runner"},
		"blank comment":  {Comment: "  ", UserID: "u1", UserName: "Runner"},
		"empty userId":   {Comment: "nice", UserName: "Runner"},
		"empty userName": {Comment: "nice", UserID: "u1"},
	} {
		t.Run(name, func(t *testing.T) {
			meta := newMemoryMetadataStore(clipAsset())
			svc := newTestService(meta, newFakeObjectStore())

			_, err := svc.AppendComment(context.Background(), "v1", in)

			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Zero(t, meta.reads)
			assert.Zero(t, meta.mutations)
		})
	}
}

func TestAppendCommentUnknownID(t *testing.T) {
	meta := newMemoryMetadataStore()
	svc := newTestService(meta, newFakeObjectStore())

	_, err := svc.AppendComment(context.Background(), "nope", CommentInput{Comment: "x", UserID: "u", UserName: "n"})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendCommentRetriesOnConflict(t *testing.T) {
	meta := newMemoryMetadataStore(clipAsset())
	svc := newTestService(meta, newFakeObjectStore())
	other := newTestService(meta, newFakeObjectStore())
	meta.beforeReplace = func() {
		_, err := other.AppendComment(context.Background(), "v1", CommentInput{Comment: "concurrent", UserID: "u2", UserName: "Other"})
		require.NoError(t, err)
	}

	_, err := svc.AppendComment(context.Background(), "v1", CommentInput{Comment: "mine", UserID: "u1", UserName: "Runner"})

	require.NoError(t, err)
	stored := meta.get("v1")
	require.Len(t, stored.Comments, 2)
	assert.Equal(t, "concurrent", stored.Comments[0].Comment)
	assert.Equal(t, "mine", stored.Comments[1].Comment)
}

func TestAppendCommentGivesUpAfterMaxAttempts(t *testing.T) {
	meta := newMemoryMetadataStore(clipAsset())
	meta.replaceErr = ErrVersionConflict
	reg := prometheus.NewRegistry()
	observer, err := NewPrometheusObserver("test", reg)
	require.NoError(t, err)
	svc := NewAssetService(meta, newFakeObjectStore(), &config.Config{CommentAppendMaxAttempts: 2}, logger.Nop(), observer)

	_, err = svc.AppendComment(context.Background(), "v1", CommentInput{Comment: "x", UserID: "u", UserName: "n"})

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, 2, meta.reads)
	assert.Equal(t, float64(2), testutil.ToFloat64(observer.conflicts.WithLabelValues("comment")))
	assert.Equal(t, float64(1), testutil.ToFloat64(observer.outcomes.WithLabelValues("comment", OutcomeFailed)))
}

func TestObserverRecordsDeleteOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	observer, err := NewPrometheusObserver("test", reg)
	require.NoError(t, err)
	meta := newMemoryMetadataStore(clipAsset())
	svc := NewAssetService(meta, newFakeObjectStore("assets/v1/clip.mp4"), &config.Config{CommentAppendMaxAttempts: 3}, logger.Nop(), observer)

	_, _ = svc.DeleteAsset(context.Background(), "v1")
	_, _ = svc.DeleteAsset(context.Background(), "v1")

	assert.Equal(t, float64(1), testutil.ToFloat64(observer.outcomes.WithLabelValues("delete", OutcomeDeleted)))
	assert.Equal(t, float64(1), testutil.ToFloat64(observer.outcomes.WithLabelValues("delete", OutcomeNotFound)))
}

func TestAppendCommentSanitizesInput(t *testing.T) {
	meta := newMemoryMetadataStore(clipAsset())
	svc := newTestService(meta, newFakeObjectStore())

	_, err := svc.AppendComment(context.Background(), "v1", CommentInput{Comment: "  sub 10\x00 ", UserID: " u1 ", UserName: "Runner\n"})

	require.NoError(t, err)
	stored := meta.get("v1")
	require.Len(t, stored.Comments, 1)
	assert.Equal(t, models.Comment{
		Comment:   "sub 10",
		UserID:    "u1",
		UserName:  "Runner",
		CreatedAt: stored.Comments[0].CreatedAt,
	}, stored.Comments[0])
}
