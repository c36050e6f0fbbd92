package sync

import "commentflow.app/engine/internal/model"

// Resolution is the outcome of the status transition policy for one observed
// comment.
type Resolution struct {
	Status model.CommentStatus
	// SetRepliedAt is true when the transition newly established the replied
	// timestamp. The store keeps any previously recorded timestamp.
	SetRepliedAt bool
	// Actionable is true when the comment is a candidate for auto-reply:
	// first observation, no platform replies, resolved to pending. The engine
	// still requires the upsert to report a fresh insert before acting, so
	// two concurrent passes cannot both draft for the same comment.
	Actionable bool
}

// Resolve applies the merge policy for a single comment observation. It is
// deliberately free of I/O. existing is nil when no record exists yet.
//
// A record already replied or failed is never reverted to pending; the only
// transition a routine pass can make on an existing record is
// pending -> replied when the platform reports a reply that arrived outside
// this system.
func Resolve(existing *model.CommentStatus, hasPlatformReplies bool) Resolution {
	if existing == nil {
		if hasPlatformReplies {
			return Resolution{Status: model.CommentStatusReplied, SetRepliedAt: true}
		}
		return Resolution{Status: model.CommentStatusPending, Actionable: true}
	}

	if *existing == model.CommentStatusPending && hasPlatformReplies {
		return Resolution{Status: model.CommentStatusReplied, SetRepliedAt: true}
	}

	return Resolution{Status: *existing}
}
