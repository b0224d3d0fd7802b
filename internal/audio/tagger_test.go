package audio

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bogem/id3v2"
	"github.com/handiism/gorlock/internal/config"
	ioutils "github.com/handiism/gorlock/internal/io"
	"github.com/handiism/gorlock/internal/model"
)

func writeFakeMP3(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("not really mpeg audio"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func completedJob(path string) model.Job {
	job := model.NewJob("1", "https://www.youtube.com/watch?v=abc123")
	job.State = model.StateCompleted
	job.Title = "A Song"
	job.Uploader = "The Band"
	job.Thumbnail = "https://i.ytimg.com/vi/abc123/hqdefault.webp"
	job.OutputPath = path
	return job.Clone()
}

func readTag(t *testing.T, path string) *id3v2.Tag {
	t.Helper()
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("id3v2.Open() error = %v", err)
	}
	t.Cleanup(func() { tag.Close() })
	return tag
}

func TestTagger_SaveTags(t *testing.T) {
	path := writeFakeMP3(t, "song.mp3")
	tagger := NewTagger(nil)

	if err := tagger.SaveTags(completedJob(path), []byte{0xff, 0xd8, 0xff}); err != nil {
		t.Fatalf("SaveTags() error = %v", err)
	}

	tag := readTag(t, path)
	if tag.Title() != "A Song" {
		t.Errorf("Title() = %q, want %q", tag.Title(), "A Song")
	}
	if tag.Artist() != "The Band" {
		t.Errorf("Artist() = %q, want %q", tag.Artist(), "The Band")
	}
	if n := len(tag.GetFrames(tag.CommonID("Attached picture"))); n != 1 {
		t.Errorf("got %d pictures, want 1", n)
	}
	comments := tag.GetFrames(tag.CommonID("Comments"))
	if len(comments) != 1 {
		t.Fatalf("got %d comments, want 1", len(comments))
	}
	if cf, ok := comments[0].(id3v2.CommentFrame); !ok || cf.Text != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("comment = %+v, want the source URL", comments[0])
	}
}

func TestTagger_MissingFile(t *testing.T) {
	tagger := NewTagger(nil)
	job := completedJob(filepath.Join(t.TempDir(), "missing.mp3"))

	if err := tagger.SaveTags(job, nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("SaveTags() error = %v, want ErrNotExist", err)
	}
}

type fakeDownloader struct {
	data  []byte
	err   error
	calls int
}

func (d *fakeDownloader) DownloadBytes(context.Context, string) ([]byte, error) {
	d.calls++
	return d.data, d.err
}

func testThumbnail(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 36))
	for y := range 36 {
		for x := range 64 {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: 80, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestPostProcessor(settings *config.Settings, dl *fakeDownloader) *PostProcessor {
	pp := NewPostProcessor(settings, dl, ioutils.NewImageService())
	pp.sleep = func(context.Context, time.Duration) {}
	return pp
}

func TestPostProcessor_TagsMP3WithCover(t *testing.T) {
	path := writeFakeMP3(t, "song.mp3")
	dl := &fakeDownloader{data: testThumbnail(t)}
	settings := config.DefaultSettings()
	settings.CoverArtMaxSize = 32

	if err := newTestPostProcessor(settings, dl).Process(context.Background(), completedJob(path)); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	tag := readTag(t, path)
	pics := tag.GetFrames(tag.CommonID("Attached picture"))
	if len(pics) != 1 {
		t.Fatalf("got %d pictures, want 1", len(pics))
	}
	pic := pics[0].(id3v2.PictureFrame)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(pic.Picture))
	if err != nil {
		t.Fatalf("cover is not an image: %v", err)
	}
	if format != "jpeg" || cfg.Width != 32 || cfg.Height != 18 {
		t.Errorf("cover = %s %dx%d, want jpeg 32x18", format, cfg.Width, cfg.Height)
	}
}

func TestPostProcessor_RetriesThenTagsWithoutCover(t *testing.T) {
	path := writeFakeMP3(t, "song.mp3")
	dl := &fakeDownloader{err: errors.New("connection reset")}
	settings := config.DefaultSettings()
	settings.DownloadMaxRetries = 3

	if err := newTestPostProcessor(settings, dl).Process(context.Background(), completedJob(path)); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if dl.calls != 3 {
		t.Errorf("thumbnail downloaded %d times, want 3", dl.calls)
	}
	tag := readTag(t, path)
	if tag.Title() != "A Song" {
		t.Errorf("Title() = %q, want tags written without a cover", tag.Title())
	}
	if n := len(tag.GetFrames(tag.CommonID("Attached picture"))); n != 0 {
		t.Errorf("got %d pictures, want 0", n)
	}
}

func TestPostProcessor_SkipsOtherFiles(t *testing.T) {
	path := writeFakeMP3(t, "video.mp4")
	dl := &fakeDownloader{data: testThumbnail(t)}

	if err := newTestPostProcessor(config.DefaultSettings(), dl).Process(context.Background(), completedJob(path)); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "not really mpeg audio" {
		t.Error("non-mp3 output was modified")
	}
	if dl.calls != 0 {
		t.Errorf("thumbnail downloaded %d times for a non-mp3 file", dl.calls)
	}
}
