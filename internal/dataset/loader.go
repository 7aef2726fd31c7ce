package dataset

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/tiff" // Register TIFF format decoder

	grid "github.com/ironsheep/fundus-vessels/internal/imaging"
)

// Paths describes where the images of every case live.
//
// The zero value is not useful; start from DefaultPaths.
type Paths struct {
	// Root is prepended to the three directories when non-empty.
	Root string `yaml:"root"`

	PicturesDir string `yaml:"picturesDir"`
	MasksDir    string `yaml:"masksDir"`
	ExpertDir   string `yaml:"expertDir"`

	// PictureExt is the extension of photographs, including the dot.
	PictureExt string `yaml:"pictureExt"`

	// DetailsExt is the extension shared by masks and expert annotations.
	DetailsExt string `yaml:"detailsExt"`

	// MaskSuffix is appended to the case identifier for mask files.
	MaskSuffix string `yaml:"maskSuffix"`
}

// DefaultPaths returns the conventional dataset layout relative to the working
// directory.
func DefaultPaths() Paths {
	return Paths{
		PicturesDir: "Files/pictures",
		MasksDir:    "Files/masks",
		ExpertDir:   "Files/expert_results",
		PictureExt:  ".jpg",
		DetailsExt:  ".tif",
		MaskSuffix:  "_mask",
	}
}

// Loader resolves case identifiers to files and decodes them.
//
// A Loader holds no mutable state and is safe for concurrent use. It does not
// cache: every Load reads the file again.
type Loader struct {
	paths  Paths
	logger zerolog.Logger
}

// NewLoader creates a loader for the given layout.
func NewLoader(paths Paths, logger zerolog.Logger) *Loader {
	return &Loader{paths: paths, logger: logger.With().Str("component", "loader").Logger()}
}

// Paths returns the layout the loader was created with.
func (l *Loader) Paths() Paths {
	return l.paths
}

// ValidateCaseID rejects empty identifiers and identifiers that contain path
// separators or parent references.
func ValidateCaseID(caseID string) error {
	if caseID == "" {
		return ErrEmptyCaseID
	}
	if strings.ContainsAny(caseID, `/\`) || caseID == "." || caseID == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidCaseID, caseID)
	}
	return nil
}

// Path returns the file path of one role of a case.
func (l *Loader) Path(caseID string, role Role) (string, error) {
	if err := ValidateCaseID(caseID); err != nil {
		return "", err
	}

	var dir, name string
	switch role {
	case Photograph:
		dir, name = l.paths.PicturesDir, caseID+l.paths.PictureExt
	case FieldOfViewMask:
		dir, name = l.paths.MasksDir, caseID+l.paths.MaskSuffix+l.paths.DetailsExt
	case ExpertAnnotation:
		dir, name = l.paths.ExpertDir, caseID+l.paths.DetailsExt
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}

	return filepath.Join(l.paths.Root, dir, name), nil
}

// Load decodes one role of a case into a 3-channel BGR grid. A JPEG carrying
// an EXIF orientation tag is rotated or flipped upright first.
//
// Any failure to open or decode the file is returned as a *DecodeError.
func (l *Loader) Load(caseID string, role Role) (*grid.Grid, error) {
	path, err := l.Path(caseID, role)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{CaseID: caseID, Role: role, Path: path, Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &DecodeError{CaseID: caseID, Role: role, Path: path, Err: errors.New("image has no pixels")}
	}

	g := grid.FromImage(img)
	l.logger.Debug().
		Str("case", caseID).
		Stringer("role", role).
		Str("path", path).
		Int("width", g.Width).
		Int("height", g.Height).
		Dur("elapsed", time.Since(start)).
		Msg("image decoded")
	return g, nil
}

// ImageInfo contains metadata about one image of a case.
type ImageInfo struct {
	// Role is the role name: "photograph", "mask" or "expert".
	Role string `json:"role"`

	// Path is the resolved file path.
	Path string `json:"path"`

	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoded format name reported by the registered decoder,
	// e.g. "jpeg", "png" or "tiff".
	Format string `json:"format"`

	// Extension is the format implied by the file extension, e.g. "JPEG" or
	// "TIFF", or "unknown" when the extension is not recognized.
	Extension string `json:"extension"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Describe reads the header of one role of a case and reports its metadata
// without decoding the pixel data. Width and Height are as stored, before any
// EXIF orientation is applied.
func (l *Loader) Describe(caseID string, role Role) (*ImageInfo, error) {
	path, err := l.Path(caseID, role)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{CaseID: caseID, Role: role, Path: path, Err: err}
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, &DecodeError{CaseID: caseID, Role: role, Path: path, Err: err}
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, &DecodeError{CaseID: caseID, Role: role, Path: path, Err: err}
	}

	ext := "unknown"
	if byName, err := imaging.FormatFromFilename(path); err == nil {
		ext = byName.String()
	}

	return &ImageInfo{
		Role:          role.String(),
		Path:          path,
		Width:         cfg.Width,
		Height:        cfg.Height,
		Format:        format,
		Extension:     ext,
		FileSizeBytes: stat.Size(),
	}, nil
}

// LoadCase loads the photograph, the field-of-view mask and the expert
// annotation of a case, in that order. The first failure aborts the load.
//
// Images whose sizes disagree are still returned; the mismatch is logged as a
// warning and can be checked with Case.CheckDimensions.
func (l *Loader) LoadCase(ctx context.Context, caseID string) (*Case, error) {
	c := &Case{ID: caseID}
	targets := map[Role]**grid.Grid{
		Photograph:       &c.Photograph,
		FieldOfViewMask:  &c.Mask,
		ExpertAnnotation: &c.Expert,
	}

	for _, role := range Roles {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("loading case %q: %w", caseID, err)
		}
		g, err := l.Load(caseID, role)
		if err != nil {
			return nil, err
		}
		*targets[role] = g
	}

	if err := c.CheckDimensions(); err != nil {
		l.logger.Warn().Err(err).Str("case", caseID).Msg("case images have mismatched dimensions")
	}
	return c, nil
}
