package gallery

import (
	"bytes"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/disintegration/imaging"
	"github.com/reusedev/prompt-hub/internal/modules/cache"
	"github.com/reusedev/prompt-hub/internal/modules/logs"
	"github.com/reusedev/prompt-hub/tools"
)

// Archiver saves completed results under {dataDir}/gallery with a thumbnail
// alongside. Archiving is best effort; a failure here never touches the task.
type Archiver struct {
	dir string
}

func NewArchiver(dataDir string) *Archiver {
	return &Archiver{dir: filepath.Join(dataDir, "gallery")}
}

// Archive downloads the result image, stores the original and a thumbnail,
// and remembers the local path for the URL.
func (a *Archiver) Archive(taskID, url string) {
	if url == "" {
		return
	}
	if path, _ := cache.GalleryCacheManager().GetValue(url); path != "" {
		return
	}
	var imgBytes []byte
	err := retry.Do(
		func() error {
			var err error
			imgBytes, _, err = tools.GetOnlineImage(url)
			return err
		},
		retry.Attempts(3),
		retry.Delay(2*time.Second),
	)
	if err != nil {
		logs.Logger.Warn().Err(err).Str("task_id", taskID).Str("url", url).Msg("archive download failed")
		return
	}

	original := filepath.Join(a.dir, taskID+".png")
	if err := tools.SaveFile(bytes.NewReader(imgBytes), original); err != nil {
		logs.Logger.Warn().Err(err).Str("task_id", taskID).Msg("archive save failed")
		return
	}

	thumb, err := tools.Thumbnail(bytes.NewReader(imgBytes), 0.25, imaging.PNG)
	if err != nil {
		logs.Logger.Warn().Err(err).Str("task_id", taskID).Msg("thumbnail failed")
	} else {
		thumbPath := filepath.Join(a.dir, taskID+"_thumb.png")
		if err := tools.SaveFile(thumb, thumbPath); err != nil {
			logs.Logger.Warn().Err(err).Str("task_id", taskID).Msg("thumbnail save failed")
		}
	}

	cache.GalleryCacheManager().SetWithExpiration(url, original, 24*time.Hour)
	logs.Logger.Info().Str("task_id", taskID).Str("path", original).Msg("result archived")
}
