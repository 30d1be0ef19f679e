// Package archive implements the optional verify-then-delete handoff of
// downloaded assets to a remote archive.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/khushveer007/courseget/internal/catalog"
	"github.com/khushveer007/courseget/internal/logger"
	"github.com/khushveer007/courseget/internal/repository"
	"github.com/khushveer007/courseget/internal/status"
)

// ErrUploadUnverified is returned when an upload completed but the archive
// did not confirm it. The local file is kept and the entry stays Downloaded.
var ErrUploadUnverified = errors.New("upload not verified by archive")

// VerificationResult is the archive collaborator's answer for one upload.
type VerificationResult struct {
	Confirmed bool
	RemoteID  string
}

// Uploader is the narrow interface to the remote archive. The remote
// logical path mirrors the local course/lesson hierarchy and always uses
// forward slashes.
type Uploader interface {
	Upload(ctx context.Context, localPath, remotePath string) (VerificationResult, error)
}

// Coordinator sequences upload, verification and the conditional local
// delete for downloaded assets. Upload failures are non-fatal and carry no
// retry counters of their own: an asset left at Downloaded is picked up
// again on the next run exactly like a fresh pending upload.
type Coordinator struct {
	uploader  Uploader
	store     repository.ProgressStore
	keepLocal bool
}

func NewCoordinator(uploader Uploader, store repository.ProgressStore, keepLocal bool) *Coordinator {
	return &Coordinator{
		uploader:  uploader,
		store:     store,
		keepLocal: keepLocal,
	}
}

// Process archives one downloaded asset. The entry transitions to Uploaded
// and the local file is deleted only on a positive verification; with
// keep-local set the file is retained but the entry still advances.
func (c *Coordinator) Process(ctx context.Context, asset catalog.Asset, entry repository.Entry) error {
	result, err := c.uploader.Upload(ctx, asset.DestinationPath, asset.RemotePath)
	if err != nil {
		logger.Warn("Upload failed for %s: %v", asset.RemotePath, err)
		return fmt.Errorf("upload %s: %w", asset.RemotePath, err)
	}

	if !result.Confirmed {
		logger.Warn("Upload of %s not confirmed, keeping local copy", asset.RemotePath)
		return fmt.Errorf("%w: %s", ErrUploadUnverified, asset.RemotePath)
	}

	if err := c.store.Record(asset.ID, status.Uploaded, entry.Attempts, nil); err != nil {
		return fmt.Errorf("failed to record upload of %s: %w", asset.ID, err)
	}

	if !c.keepLocal {
		if err := os.Remove(asset.DestinationPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove local copy %s: %v", asset.DestinationPath, err)
		}
	}

	logger.Infof("Archived %s (remote id %s)", asset.RemotePath, result.RemoteID)

	return nil
}
