package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/speedrun/backend/internal/config"
	"github.com/speedrun/backend/internal/logger"
	"github.com/speedrun/backend/internal/models"
	"github.com/speedrun/backend/pkg/validation"
)

// CommentInput is the payload of a comment append request.
type CommentInput struct {
	Comment  string `json:"comment"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// normalize sanitizes the fields and rejects blank or oversized values.
func (in CommentInput) normalize() (CommentInput, error) {
	out := CommentInput{
		Comment:  validation.SanitizeString(in.Comment),
		UserID:   validation.SanitizeString(in.UserID),
		UserName: validation.SanitizeString(in.UserName),
	}
	switch {
	case !validation.ValidateComment(out.Comment):
		return out, &ValidationError{Field: "comment", Message: "Invalid comment data."}
	case out.UserID == "":
		return out, &ValidationError{Field: "userId", Message: "Invalid comment data."}
	case out.UserName == "":
		return out, &ValidationError{Field: "userName", Message: "Invalid comment data."}
	}
	return out, nil
}

// AssetService runs the delete and comment workflows across the metadata
// store and the object store.
type AssetService struct {
	metadata    MetadataStore
	blobs       ObjectStore
	log         *logger.Logger
	observer    Observer
	maxAttempts int
	now         func() time.Time
}

func NewAssetService(metadata MetadataStore, blobs ObjectStore, cfg *config.Config, log *logger.Logger, observer Observer) *AssetService {
	if observer == nil {
		observer = nopObserver{}
	}
	attempts := cfg.CommentAppendMaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &AssetService{
		metadata:    metadata,
		blobs:       blobs,
		log:         log,
		observer:    observer,
		maxAttempts: attempts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// DeleteAsset removes the blob of an asset and then its metadata record.
// The blob goes first: a record must never outlive its blob silently, while
// a blob without a record is only dead storage.
func (s *AssetService) DeleteAsset(ctx context.Context, id string) (asset *models.Asset, err error) {
	start := time.Now()
	defer func() { s.observer.RecordOutcome("delete", outcomeOf(err, OutcomeDeleted), time.Since(start)) }()

	if id == "" {
		return nil, &ValidationError{Field: "id", Message: "Video ID is required."}
	}
	log := s.log.With("video_id", id)

	asset, err = s.metadata.GetByID(ctx, id, models.AssetTypeVideo)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Info("Video not found in metadata store")
		}
		return nil, err
	}
	log.Debug("Loaded video metadata", "file_path", asset.FilePath, "file_name", asset.FileName)

	container, key, err := ResolveLocation(asset.FilePath)
	if err != nil {
		log.Error("Cannot resolve blob location, metadata left intact", "error", err)
		return nil, err
	}

	if err = s.blobs.DeleteBlob(ctx, container, key); err != nil {
		if !errors.Is(err, ErrBlobNotFound) {
			log.Error("Blob delete failed, metadata left intact", "container", container, "key", key, "error", err)
			return nil, err
		}
		log.Warn("Blob already absent", "container", container, "key", key)
	} else {
		log.Info("Blob deleted", "container", container, "key", key)
	}

	if err = s.metadata.DeleteByID(ctx, id, models.AssetTypeVideo); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("Metadata record removed concurrently")
			return nil, err
		}
		log.Error("Metadata delete failed after blob delete", "container", container, "key", key, "error", err)
		return nil, &PartialDeleteError{ID: id, Container: container, Key: key, Err: err}
	}

	log.Info("Video deleted")
	return asset, nil
}

// AppendComment appends a comment to the asset's comment list. The replace is
// conditioned on the version read, and the read-append-write cycle restarts on
// conflict up to maxAttempts times.
func (s *AssetService) AppendComment(ctx context.Context, id string, in CommentInput) (asset *models.Asset, err error) {
	start := time.Now()
	defer func() { s.observer.RecordOutcome("comment", outcomeOf(err, OutcomeAppended), time.Since(start)) }()

	if id == "" {
		return nil, &ValidationError{Field: "id", Message: "Video ID is required."}
	}
	if in, err = in.normalize(); err != nil {
		return nil, err
	}
	log := s.log.With("video_id", id, "user_id", in.UserID)

	comment := models.Comment{
		Comment:   in.Comment,
		UserID:    in.UserID,
		UserName:  in.UserName,
		CreatedAt: s.now(),
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		asset, err = s.metadata.QueryByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if asset.Comments == nil {
			asset.Comments = []models.Comment{}
		}
		asset.Comments = append(asset.Comments, comment)

		err = s.metadata.Replace(ctx, asset.ID, models.AssetTypeVideo, asset, asset.Version)
		if err == nil {
			log.Info("Comment added", "comments", len(asset.Comments), "attempt", attempt)
			return asset, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			log.Error("Comment replace failed", "error", err)
			return nil, err
		}
		s.observer.RecordConflict("comment")
		log.Warn("Version conflict on comment append, retrying", "attempt", attempt)
	}

	err = &StoreError{Op: "replace metadata", Err: fmt.Errorf("%w after %d attempts", ErrVersionConflict, s.maxAttempts)}
	log.Error("Comment append gave up", "error", err)
	return nil, err
}

func outcomeOf(err error, success string) string {
	var invalid *ValidationError
	switch {
	case err == nil:
		return success
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.As(err, &invalid):
		return OutcomeInvalid
	default:
		return OutcomeFailed
	}
}
