package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DirMirror archives assets into a second directory tree, typically a
// mounted network share or sync folder. Verification compares sizes after
// the copy; an upload of a file that already exists remotely with the same
// size is confirmed without copying again.
type DirMirror struct {
	root string
}

func NewDirMirror(root string) *DirMirror {
	return &DirMirror{root: root}
}

func (m *DirMirror) Upload(ctx context.Context, localPath, remotePath string) (VerificationResult, error) {
	if err := ctx.Err(); err != nil {
		return VerificationResult{}, err
	}

	src, err := os.Open(localPath)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer src.Close()

	srcInfo, err := src.Stat()
	if err != nil {
		return VerificationResult{}, fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	dest := filepath.Join(m.root, filepath.FromSlash(remotePath))

	if info, err := os.Stat(dest); err == nil && info.Size() == srcInfo.Size() {
		return VerificationResult{Confirmed: true, RemoteID: dest}, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return VerificationResult{}, fmt.Errorf("failed to create archive directory: %w", err)
	}

	tmp := dest + ".part"

	out, err := os.Create(tmp)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	written, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		os.Remove(tmp)
		return VerificationResult{}, fmt.Errorf("failed to copy to archive: %w", err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return VerificationResult{}, fmt.Errorf("failed to finalize archive copy: %w", err)
	}

	return VerificationResult{
		Confirmed: written == srcInfo.Size(),
		RemoteID:  dest,
	}, nil
}
