package nsnet

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// OverlayDirs are the four directories an OverlayFS mount needs, all rooted
// under a node's rootfs_dir.
type OverlayDirs struct {
	Lower  string
	Upper  string
	Work   string
	Merged string
}

// NewOverlayDirs lays out the standard upper/work/merged subdirectories under
// rootfsDir, reusing baseImage as the (read-only) lower layer.
func NewOverlayDirs(rootfsDir, baseImage string) OverlayDirs {
	return OverlayDirs{
		Lower:  baseImage,
		Upper:  filepath.Join(rootfsDir, "upper"),
		Work:   filepath.Join(rootfsDir, "work"),
		Merged: filepath.Join(rootfsDir, "merged"),
	}
}

// CreateOverlay creates the upper/work/merged directories and mounts an
// OverlayFS at Merged backed by Lower. Must run inside the container's own
// mount namespace so the mount does not leak to the host.
func CreateOverlay(d OverlayDirs) error {
	for _, dir := range []string{d.Upper, d.Work, d.Merged} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("nsnet: create overlay dir %s: %w", dir, err)
		}
	}

	opts := fmt.Sprintf("lowerdir=%s,upperdir=%s,workdir=%s", d.Lower, d.Upper, d.Work)
	if err := unix.Mount("overlay", d.Merged, "overlay", 0, opts); err != nil {
		return fmt.Errorf("nsnet: mount overlay at %s: %w", d.Merged, err)
	}
	return nil
}

// RemoveOverlay unmounts Merged and removes the upper/work/merged tree. The
// lower (base image) directory is left untouched — it is shared read-only
// across every node using this base.
func RemoveOverlay(d OverlayDirs) error {
	if err := unix.Unmount(d.Merged, unix.MNT_DETACH); err != nil && err != unix.EINVAL && err != unix.ENOENT {
		return fmt.Errorf("nsnet: unmount overlay at %s: %w", d.Merged, err)
	}
	if err := os.RemoveAll(d.Upper); err != nil {
		return fmt.Errorf("nsnet: remove overlay upper %s: %w", d.Upper, err)
	}
	if err := os.RemoveAll(d.Work); err != nil {
		return fmt.Errorf("nsnet: remove overlay work %s: %w", d.Work, err)
	}
	if err := os.RemoveAll(d.Merged); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("nsnet: remove overlay merged %s: %w", d.Merged, err)
	}
	return nil
}
