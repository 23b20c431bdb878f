package syncer

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/scrapsync/internal/common"
)

// Describe turns the result of a run into the one line shown to the user.
func Describe(res Result, err error) string {
	if err != nil {
		switch {
		case errors.Is(err, common.ErrSyncInProgress):
			return "Sync already in progress"
		case errors.Is(err, common.ErrConfiguration):
			return fmt.Sprintf("Sync is not configured: %v", err)
		case errors.Is(err, common.ErrUnauthorized):
			return "Sync failed: the remote rejected the credentials"
		case errors.Is(err, common.ErrFormat):
			return fmt.Sprintf("Sync failed: remote data is not a valid snapshot (%v)", err)
		default:
			return fmt.Sprintf("Sync failed: %v", err)
		}
	}

	switch res.Outcome {
	case OutcomeInitialUpload:
		return "First upload complete"
	case OutcomeUploaded:
		return "Upload complete"
	case OutcomeDownloaded:
		return fmt.Sprintf("Download complete, %d scraps updated", res.Items)
	case OutcomeUpToDate:
		return "Already up to date"
	case OutcomeRemoteEmpty:
		return "The remote has no data yet"
	default:
		return string(res.Outcome)
	}
}
