package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/robolink-protocol/robolink-go/pkg/wire"
)

// soundDir is where uploaded audio clips land on the robot.
const soundDir = "/data/audio/"

// ErrNoUploader is returned by Upload when the session was configured
// without an uploader.
var ErrNoUploader = errors.New("no uploader configured")

// Uploader transfers auxiliary files to the robot, such as audio clips
// for later playback. Transfers run outside the command channel.
type Uploader interface {
	Upload(ctx context.Context, localPath, remotePath string) error
}

// Upload transfers a local file to the given path on the robot using
// the configured uploader.
func (s *Session) Upload(ctx context.Context, localPath, remotePath string) error {
	if s.cfg.Uploader == nil {
		return ErrNoUploader
	}
	return s.cfg.Uploader.Upload(ctx, localPath, remotePath)
}

// PlaySound uploads a local audio clip to the robot and plays it.
func (s *Session) PlaySound(ctx context.Context, localPath string) error {
	remote := soundDir + filepath.Base(localPath)
	if err := s.Upload(ctx, localPath, remote); err != nil {
		return err
	}
	if err := s.doOK(ctx, wire.NewCommand(
		wire.Str("audio"), wire.Str("play"), wire.Str(remote))); err != nil {
		return fmt.Errorf("play %s: %w", remote, err)
	}
	return nil
}
