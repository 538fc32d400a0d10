package ports

import "context"

// Dialog is the user-facing side of save and load.
type Dialog interface {
	// SavePath asks where to save. ok is false when the user cancelled.
	SavePath(ctx context.Context, suggested string) (path string, ok bool)

	// OpenPath asks which document to open. ok is false when the user cancelled.
	OpenPath(ctx context.Context, suggested string) (path string, ok bool)

	// NotifyError shows a blocking failure notification.
	NotifyError(ctx context.Context, title, msg string)
}
