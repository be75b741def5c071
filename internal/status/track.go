package status

import (
	"github.com/desertthunder/mprisd/internal/models"
)

type (
	optString = models.Optional[string]
	optInt    = models.Optional[int]
)

// Track holds one tracked cell per track fact.
type Track struct {
	ID          *Tracked[optString]
	Title       *Tracked[optString]
	Artist      *Tracked[optString]
	Album       *Tracked[optString]
	AlbumArtist *Tracked[optString]
	ArtworkURL  *Tracked[optString]
	DiscNumber  *Tracked[optInt]
	Duration    *Tracked[optInt]
	URL         *Tracked[optString]
}

func newTrack() *Track {
	return &Track{
		ID:          NewTracked(optString{}),
		Title:       NewTracked(optString{}),
		Artist:      NewTracked(optString{}),
		Album:       NewTracked(optString{}),
		AlbumArtist: NewTracked(optString{}),
		ArtworkURL:  NewTracked(optString{}),
		DiscNumber:  NewTracked(optInt{}),
		Duration:    NewTracked(optInt{}),
		URL:         NewTracked(optString{}),
	}
}

// Info returns a copy of the current track facts.
func (t *Track) Info() models.TrackInfo {
	return models.TrackInfo{
		ID:          t.ID.Get(),
		Title:       t.Title.Get(),
		Artist:      t.Artist.Get(),
		Album:       t.Album.Get(),
		AlbumArtist: t.AlbumArtist.Get(),
		ArtworkURL:  t.ArtworkURL.Get(),
		DiscNumber:  t.DiscNumber.Get(),
		Duration:    t.Duration.Get(),
		URL:         t.URL.Get(),
	}
}

func (t *Track) apply(info models.TrackInfo) {
	t.ID.Set(info.ID)
	t.Title.Set(info.Title)
	t.Artist.Set(info.Artist)
	t.Album.Set(info.Album)
	t.AlbumArtist.Set(info.AlbumArtist)
	t.ArtworkURL.Set(info.ArtworkURL)
	t.DiscNumber.Set(info.DiscNumber)
	t.Duration.Set(info.Duration)
	t.URL.Set(info.URL)
}

func (t *Track) HasChanged() bool {
	return t.ID.HasChanged() ||
		t.Title.HasChanged() ||
		t.Artist.HasChanged() ||
		t.Album.HasChanged() ||
		t.AlbumArtist.HasChanged() ||
		t.ArtworkURL.HasChanged() ||
		t.DiscNumber.HasChanged() ||
		t.Duration.HasChanged() ||
		t.URL.HasChanged()
}

func (t *Track) Reset() {
	t.ID.Reset()
	t.Title.Reset()
	t.Artist.Reset()
	t.Album.Reset()
	t.AlbumArtist.Reset()
	t.ArtworkURL.Reset()
	t.DiscNumber.Reset()
	t.Duration.Reset()
	t.URL.Reset()
}
