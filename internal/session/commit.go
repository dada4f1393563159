package session

import (
	"context"

	"github.com/alphavoice/alphavoice/internal/audio"
	"github.com/alphavoice/alphavoice/internal/stats"
	"github.com/alphavoice/alphavoice/internal/transcribe"
)

// Committer persists/dispatches a transcript when transcription succeeds.
type Committer interface {
	Commit(context.Context, string) error
}

// CommitFunc adapts a function to the Committer interface.
type CommitFunc func(context.Context, string) error

func (f CommitFunc) Commit(ctx context.Context, transcript string) error {
	return f(ctx, transcript)
}

// Transcriber turns one clip into text using the session's settings snapshot.
type Transcriber interface {
	Transcribe(context.Context, audio.Clip, transcribe.Request) (string, error)
}

// TranscribeFunc adapts a function to the Transcriber interface.
type TranscribeFunc func(context.Context, audio.Clip, transcribe.Request) (string, error)

func (f TranscribeFunc) Transcribe(ctx context.Context, clip audio.Clip, req transcribe.Request) (string, error) {
	return f(ctx, clip, req)
}

// Accountant records word counts for committed transcripts.
type Accountant interface {
	Record(context.Context, string) (stats.Entry, error)
	Total(context.Context) (int64, error)
}
