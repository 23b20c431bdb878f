package syncer

import "github.com/dmitrijs2005/scrapsync/internal/models"

// Outcome is what a sync run did.
type Outcome string

const (
	// OutcomeInitialUpload: the remote had no snapshot; the local one was uploaded.
	OutcomeInitialUpload Outcome = "initial_upload"
	// OutcomeUploaded: the local snapshot was newer and replaced the remote one.
	OutcomeUploaded Outcome = "uploaded"
	// OutcomeDownloaded: the remote snapshot was newer and was merged locally.
	OutcomeDownloaded Outcome = "downloaded"
	// OutcomeUpToDate: both sides carry the same timestamp; nothing was transferred.
	OutcomeUpToDate Outcome = "up_to_date"
	// OutcomeRemoteEmpty: a forced download found nothing on the remote.
	OutcomeRemoteEmpty Outcome = "remote_empty"
)

// Decide picks the sync outcome from the two snapshot timestamps alone. It
// does no I/O; the engine performs whatever transfer the outcome implies.
func Decide(local, remote int64, remoteExists bool) Outcome {
	switch {
	case !remoteExists:
		return OutcomeInitialUpload
	case local > remote:
		return OutcomeUploaded
	case local < remote:
		return OutcomeDownloaded
	default:
		return OutcomeUpToDate
	}
}

// adoptRemote reports whether a device with no index entries should take a
// populated remote snapshot instead of replacing it with its own empty one.
// A freshly set up device has a newer marker than any older remote.
func adoptRemote(localEntries int, remote *models.Document) bool {
	return localEntries == 0 && remote != nil && len(remote.Articles) > 0
}
