package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartfarm/smartfarm-go/internal/errors"
	"github.com/smartfarm/smartfarm-go/internal/logger"
	"github.com/smartfarm/smartfarm-go/internal/myaudio"
	"github.com/smartfarm/smartfarm-go/internal/observability/metrics"
	"github.com/smartfarm/smartfarm-go/internal/store"
)

// UploadField is the multipart field carrying the sound file.
const UploadField = "file"

var whitespaceRun = regexp.MustCompile(`\s+`)

// ListSounds handles GET /sounds.
func (c *Controller) ListSounds(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"sounds":          c.Sounds.List(),
		"selectedSoundId": c.Settings.SelectedSoundID(),
	})
}

// SelectSound handles POST /sounds/select with body {"soundId": "..."}.
func (c *Controller) SelectSound(ctx echo.Context) error {
	start := time.Now()
	soundID, _ := store.ParsePatch(readBody(ctx)).String("soundId")

	if err := c.Settings.Select(soundID); err != nil {
		c.observe(metrics.OpSelect, metrics.StatusNotFound, start)
		return c.HandleError(ctx, err, MsgSoundNotFound, StatusForError(err))
	}

	c.observe(metrics.OpSelect, metrics.StatusSuccess, start)
	return ctx.JSON(http.StatusOK, map[string]string{
		"status":          "selected",
		"selectedSoundId": soundID,
	})
}

// UploadSound handles POST /sounds/upload. The file is committed to the blob
// directory before the catalog or settings change, so a failed write leaves
// all state as it was.
func (c *Controller) UploadSound(ctx echo.Context) error {
	start := time.Now()

	fileHeader, err := ctx.FormFile(UploadField)
	if err != nil {
		c.observe(metrics.OpUpload, metrics.StatusRejected, start)
		missing := errors.New(err).
			Component("api").
			Category(errors.CategoryMissingInput).
			Context("field", UploadField).
			Build()
		return c.HandleError(ctx, missing, MsgNoFileUploaded, http.StatusBadRequest)
	}

	filename, size, err := c.storeUpload(fileHeader)
	if err != nil {
		c.observe(metrics.OpUpload, metrics.StatusError, start)
		c.recorder.RecordError(metrics.OpUpload, string(errors.CategoryFileIO))
		return c.HandleError(ctx, err, MsgUploadFailed, http.StatusInternalServerError)
	}

	sound := store.Sound{
		ID:       c.ids.NewID(),
		Name:     fileHeader.Filename,
		Filename: filename,
		Source:   store.SourceUploaded,
	}
	if seconds, ok := c.probeDuration(filename); ok {
		sound.DurationSeconds = &seconds
	}

	if err := c.Sounds.Add(sound); err != nil {
		if rmErr := c.Blobs.Remove(filename); rmErr != nil {
			GetLogger().Warn("Failed to remove orphaned upload",
				logger.String("filename", filename),
				logger.Error(rmErr))
		}
		c.observe(metrics.OpUpload, metrics.StatusError, start)
		return c.HandleError(ctx, err, MsgUploadFailed, http.StatusInternalServerError)
	}
	c.Settings.UpdateFromUpload(sound.ID)

	if c.farm != nil {
		c.farm.RecordUploadSize(size)
	}
	c.observe(metrics.OpUpload, metrics.StatusSuccess, start)

	GetLogger().Info("Sound uploaded",
		logger.String("sound_id", sound.ID),
		logger.String("filename", filename),
		logger.Int64("size", size))

	return ctx.JSON(http.StatusOK, map[string]any{
		"status":          "uploaded",
		"sound":           sound,
		"selectedSoundId": sound.ID,
	})
}

// storeUpload streams the multipart file into the blob directory and
// returns the generated file name and its size.
func (c *Controller) storeUpload(fileHeader *multipart.FileHeader) (string, int64, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", 0, errors.New(fmt.Errorf("failed to open uploaded file: %w", err)).
			Component("api").
			Category(errors.CategoryFileIO).
			Build()
	}
	defer src.Close()

	filename := c.uniqueFilename(fileHeader.Filename)
	size, err := c.Blobs.SaveAtomic(filename, src)
	if err != nil {
		return "", 0, err
	}
	return filename, size, nil
}

// uniqueFilename builds "<unix-millis>-<name>" and bumps the timestamp while
// a file with that name already exists.
func (c *Controller) uniqueFilename(original string) string {
	safe := SafeUploadName(original)
	millis := c.now().UnixMilli()
	for {
		name := fmt.Sprintf("%d-%s", millis, safe)
		if _, err := c.Blobs.Stat(name); err != nil {
			return name
		}
		millis++
	}
}

// SafeUploadName reduces a client file name to its base name and replaces
// each whitespace run with a single "-".
func SafeUploadName(original string) string {
	base := path.Base(strings.ReplaceAll(original, `\`, "/"))
	if base == "." || base == "/" || base == ".." {
		base = "upload"
	}
	return whitespaceRun.ReplaceAllString(base, "-")
}

func (c *Controller) probeDuration(filename string) (float64, bool) {
	if !myaudio.IsWAVName(filename) {
		return 0, false
	}
	f, err := c.Blobs.Open(filename)
	if err != nil {
		return 0, false
	}
	defer f.Close()
	return myaudio.ProbeDurationSeconds(filename, f)
}

// ServeUpload handles GET /uploads/:filename.
func (c *Controller) ServeUpload(ctx echo.Context) error {
	return c.Blobs.ServeFile(ctx, ctx.Param("filename"))
}
