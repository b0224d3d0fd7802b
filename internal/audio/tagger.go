package audio

import (
	"errors"
	"os"

	"github.com/bogem/id3v2"
	"github.com/handiism/gorlock/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
//
// Each tag field can be configured independently to determine whether
// it should be modified, cleared, or left unchanged.
type TagEditAction int

const (
	// TagEmpty clears the tag value (sets to empty string).
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value from the job.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags: true,
//	    Title:      TagModify,      // job title
//	    Artist:     TagModify,      // uploader
//	    Album:      TagDoNotModify, // keep whatever yt-dlp wrote
//	    Comments:   TagModify,      // source URL
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no string tags are modified.
	ModifyTags bool

	// Title controls the TIT2 (Title) frame.
	Title TagEditAction

	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// Album controls the TALB (Album title) frame, set to the uploader.
	Album TagEditAction

	// Comments controls the COMM (Comments) frame, set to the source URL.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags: true,
		Title:      TagModify,
		Artist:     TagModify,
		Album:      TagDoNotModify,
		Comments:   TagModify,
	}
}

// Tagger writes ID3 tags to MP3 files.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//
//	// After a job completes
//	err := tagger.SaveTags(job, artworkBytes)
//	if err != nil {
//	    log.Printf("Failed to tag %s: %v", job.OutputPath, err)
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes ID3 tags to the job's output file.
//
// This method:
//  1. Opens the MP3 file at job.OutputPath, parsing existing tags
//  2. Updates string tags based on TagConfig settings
//  3. Embeds cover art if artwork bytes are provided
//  4. Saves the modified tags to the file
//
// artwork must be JPEG data, or nil to leave the picture alone.
func (t *Tagger) SaveTags(job model.Job, artwork []byte) error {
	if job.OutputPath == "" {
		return errors.New("job has no output file")
	}
	if _, err := os.Stat(job.OutputPath); err != nil {
		return err
	}

	tag, err := id3v2.Open(job.OutputPath, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if t.config.ModifyTags {
		t.updateStringTags(tag, job)
	}

	if artwork != nil {
		t.updateArtwork(tag, artwork)
	}

	return tag.Save()
}

// updateStringTags updates text-based ID3 frames based on configuration.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, job model.Job) {
	// Title (TIT2)
	switch t.config.Title {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(job.DisplayTitle())
	}

	// Artist (TPE1)
	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		if job.Uploader != "" {
			tag.SetArtist(job.Uploader)
		}
	}

	// Album (TALB)
	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		if job.Uploader != "" {
			tag.SetAlbum(job.Uploader)
		}
	}

	// Comments (COMM)
	commID := tag.CommonID("Comments")
	switch t.config.Comments {
	case TagEmpty:
		tag.DeleteFrames(commID)
	case TagModify:
		tag.DeleteFrames(commID)
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: "Source",
			Text:        job.URL,
		})
	}
}

// updateArtwork embeds cover art as an attached picture frame.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	// Remove any existing cover pictures
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	}
	tag.AddAttachedPicture(pic)
}
