package model

// Kind distinguishes the two post flavors the remote service exposes.
// The distinction only matters for picking a lookup endpoint; once a
// catalog exists both behave identically.
type Kind int

const (
	KindUnknown Kind = iota
	KindAlbum
	KindGallery
)

func (k Kind) String() string {
	switch k {
	case KindAlbum:
		return "album"
	case KindGallery:
		return "gallery"
	default:
		return "unknown"
	}
}

// Reference is a resolved album reference: the identifier plus the kind
// hint extracted from the input's URL shape, if any.
type Reference struct {
	ID   string
	Kind Kind
}

// RemoteFile describes one media file in an album. Position is 0-based,
// unique and dense within a catalog.
type RemoteFile struct {
	Position int
	URL      string
	Ext      string
	Size     int64
}

// Catalog is an album's ordered file list, positions forming [0, N).
type Catalog struct {
	Ref   Reference
	Files []RemoteFile
}
